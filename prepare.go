package rumbleup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const injectFileInputScript = `(function() {
	if (document.getElementById('rumbleupFileInput')) { return; }
	var fileInput = document.createElement('input');
	fileInput.type = 'file';
	fileInput.id = 'rumbleupFileInput';
	fileInput.style.display = 'none';
	document.body.appendChild(fileInput);
})()`

// prepareUpload hands the local video to the page. The file is set on an
// injected hidden input and, when the site's own #Filedata is a file
// input, on that too.
func (u *Uploader) prepareUpload(ctx context.Context, b Browser, videoPath string) error {
	logger := log.Ctx(ctx)
	logger.Info().Msg("uploading the video")

	absFilePath, err := filepath.Abs(videoPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absFilePath); err != nil {
		return err
	}

	if err := b.Evaluate(ctx, injectFileInputScript, nil); err != nil {
		return fmt.Errorf("failed to inject file input: %w", err)
	}
	if err := b.SetUploadFiles(ctx, selInjectedInput, []string{absFilePath}); err != nil {
		return err
	}

	node, err := b.Node(ctx, selUploadTarget)
	if err != nil {
		logger.Warn().Err(err).Str("selector", selUploadTarget).Msg("upload target not found")
		return nil
	}
	if !strings.EqualFold(node.NodeName, "input") || node.AttributeValue("type") != "file" {
		logger.Warn().Str("selector", selUploadTarget).Str("tag", node.NodeName).
			Msg("upload target is not a file input, unable to set the file path directly")
		return nil
	}
	if err := b.SetUploadFiles(ctx, selUploadTarget, []string{absFilePath}); err != nil {
		logger.Warn().Err(err).Str("selector", selUploadTarget).Msg("failed to set file on upload target")
	}
	return nil
}
