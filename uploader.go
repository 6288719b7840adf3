package rumbleup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

const (
	RumbleHomepageURL = "https://rumble.com/"
	RumbleUploadURL   = "https://rumble.com/upload.php"

	selLoginUsername     = "#login-username"
	selLoginPassword     = "#login-password"
	selLoginSubmit       = "#loginForm > button.login-button.login-form-button.round-button.bg-green"
	selUploadTarget      = "#Filedata"
	selInjectedInput     = "#rumbleupFileInput"
	selTitle             = "#title"
	selDescription       = "#description"
	selPrimaryCategory   = `input[placeholder="Primary category"]`
	selSecondaryCategory = `input[placeholder="Secondary category"]`
	selProgress          = "#form > div > div.upload-video-placeholder.upload-video-placholder--active > div.video-upload-info > div.upload-percent > h2"
	selSubmit            = "#submitForm"
	selRightsCheckbox    = "#crights"
	selTermsCheckbox     = "#cterms"
	selFinalSubmit       = "#submitForm2"
	selPublishedLink     = ".round-button"
)

var ErrNoPublishedURL = errors.New("published url not found")

// Uploader publishes one video per Upload call.
type Uploader struct {
	opts Options

	// StartBrowser opens the browser for a run. Defaults to StartSession.
	StartBrowser func(ctx context.Context, opts SessionOptions) (Browser, error)
	// OpenFile shows the link log when OpenLogWhenDone is set.
	OpenFile func(path string) error
}

// New creates an uploader for opts.
func New(opts Options) *Uploader {
	opts.setDefaults()
	return &Uploader{
		opts: opts,
		StartBrowser: func(ctx context.Context, opts SessionOptions) (Browser, error) {
			return StartSession(ctx, opts)
		},
		OpenFile: OpenFileWithDefaultApp,
	}
}

// Upload publishes videoPath and returns its public URL. Whatever happens
// after the browser starts, the video is deleted when DeleteWhenDone is set
// and the browser is closed exactly once.
func (u *Uploader) Upload(ctx context.Context, videoPath string) (videoURL string, err error) {
	runID := uuid.NewString()
	logger := log.Ctx(ctx).With().Str("run", runID).Str("video", filepath.Base(videoPath)).Logger()
	ctx = logger.WithContext(ctx)

	b, err := u.StartBrowser(ctx, u.opts.Session)
	if err != nil {
		return "", fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		u.cleanup(ctx, b, runID, videoPath, err)
	}()

	return u.upload(ctx, b, videoPath)
}

func (u *Uploader) upload(ctx context.Context, b Browser, videoPath string) (string, error) {
	if err := u.login(ctx, b); err != nil {
		return "", fmt.Errorf("failed to login: %w", err)
	}

	if err := u.prepareUpload(ctx, b, videoPath); err != nil {
		return "", fmt.Errorf("failed to submit file: %w", err)
	}

	if err := u.fillDetails(ctx, b); err != nil {
		return "", fmt.Errorf("failed to fill details: %w", err)
	}

	poller := &Poller{
		Browser:      b,
		Indicator:    selProgress,
		Submit:       selSubmit,
		MaxAttempts:  u.opts.MaxPollAttempts,
		Interval:     u.opts.PollInterval,
		InitialDelay: u.opts.InitialPollDelay,
		Output:       u.opts.Output,
	}
	if state := poller.Run(ctx); state != Complete {
		log.Ctx(ctx).Warn().Stringer("state", state).Msg("continuing without upload confirmation")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	u.acceptTerms(ctx, b)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	videoURL, err := u.getVideoURL(ctx, b)
	if err != nil {
		return "", fmt.Errorf("failed to get videoURL: %w", err)
	}

	if err := u.record(ctx, videoURL); err != nil {
		return videoURL, err
	}
	return videoURL, nil
}

// acceptTerms ticks the rights and terms checkboxes and submits the final form.
func (u *Uploader) acceptTerms(ctx context.Context, b Browser) {
	logger := log.Ctx(ctx)
	logger.Info().Msg("accepting terms")

	resolver := &CheckboxResolver{
		Browser: b,
		Strategies: []ClickStrategy{
			ScrollClick(),
			ScriptClick(),
			RetryClick(u.opts.CheckboxRetries, u.opts.CheckboxDelay),
		},
	}
	resolver.Resolve(ctx, selRightsCheckbox, selTermsCheckbox)

	// Submitted twice: by id from script, then by selector.
	if err := b.Evaluate(ctx, `document.getElementById('submitForm2').click()`, nil); err != nil {
		logger.Warn().Err(err).Msg("failed to submit by id")
	}
	if err := b.Click(ctx, selFinalSubmit); err != nil {
		logger.Warn().Err(err).Str("selector", selFinalSubmit).Msg("failed to submit by selector")
	}
}

func (u *Uploader) getVideoURL(ctx context.Context, b Browser) (string, error) {
	log.Ctx(ctx).Info().Msg("getting video url")

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(u.opts.Output),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSpinnerType(9),
		progressbar.OptionSetDescription("Generating video url"),
	)
	defer bar.Close()

	var href string
	err := waitUntil(ctx, u.opts.Wait, func(ctx context.Context) (bool, error) {
		bar.Add(1)
		value, ok, err := b.Attribute(ctx, selPublishedLink, "href")
		if err != nil {
			return false, err
		}
		href = value
		return ok && href != "", nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoPublishedURL, err)
	}

	pageURL, err := b.Location(ctx)
	if err != nil {
		return "", err
	}
	return ResolveHref(pageURL, href)
}

func (u *Uploader) record(ctx context.Context, videoURL string) error {
	logger := log.Ctx(ctx).With().Str("url", videoURL).Logger()

	book := &LogBook{Path: u.opts.LogPath}
	added, err := book.Record(videoURL, u.opts.Now())
	if err != nil {
		return err
	}
	if added {
		logger.Info().Str("log", book.Path).Msg("link recorded")
	} else {
		logger.Info().Str("log", book.Path).Msg("link already in log")
	}

	if u.opts.OpenLogWhenDone {
		if err := u.OpenFile(book.Path); err != nil {
			logger.Warn().Err(err).Msg("failed to open log")
		}
	}
	return nil
}

// cleanup runs each step on its own so one failure never skips the rest.
func (u *Uploader) cleanup(ctx context.Context, b Browser, runID, videoPath string, runErr error) {
	logger := log.Ctx(ctx)
	ctx = context.WithoutCancel(ctx)

	if runErr != nil {
		logger.Error().Err(runErr).Msg("upload failed")
		if u.opts.ScreenshotDir != "" {
			u.capture(ctx, b, "error_"+runID)
		}
	}

	if u.opts.DeleteWhenDone {
		if err := os.Remove(videoPath); errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("path", videoPath).Msg("video already removed")
		} else if err != nil {
			logger.Warn().Err(err).Str("path", videoPath).Msg("failed to delete video")
		} else {
			logger.Info().Str("path", videoPath).Msg("video deleted")
		}
	}

	b.Close()
}

// capture saves a full-page screenshot to ScreenshotDir.
func (u *Uploader) capture(ctx context.Context, b Browser, name string) {
	logger := log.Ctx(ctx)
	logger.Info().Msg("taking screenshot")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	buf, err := b.Screenshot(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to take screenshot")
		return
	}
	if err := os.MkdirAll(u.opts.ScreenshotDir, 0o755); err != nil {
		logger.Warn().Err(err).Msg("failed to create screenshot folder")
		return
	}
	path := filepath.Join(u.opts.ScreenshotDir, name+".jpg")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		logger.Warn().Err(err).Msg("failed to save screenshot")
		return
	}
	logger.Info().Str("path", path).Msg("screenshot saved")
}
