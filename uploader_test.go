package rumbleup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 14, 30, 5, 0, time.Local)

type uploadFixture struct {
	browser  *fakeBrowser
	uploader *Uploader
	video    string
	logPath  string
	opened   []string
}

func newUploadFixture(t *testing.T, deleteWhenDone bool) *uploadFixture {
	t.Helper()
	dir := t.TempDir()

	video := filepath.Join(dir, "videos", "stream.mp4")
	require.NoError(t, os.MkdirAll(filepath.Dir(video), 0o755))
	require.NoError(t, os.WriteFile(video, []byte("not really a video"), 0o644))

	f := &uploadFixture{
		browser: newFakeBrowser(),
		video:   video,
		logPath: filepath.Join(dir, "docs", LogFileName),
	}
	f.browser.texts = []string{"35%", "100%"}
	f.browser.toggleOn["Click "+selRightsCheckbox] = true
	f.browser.toggleOn["Click "+selTermsCheckbox] = true
	f.browser.href = "/v5abc-my-stream.html"

	f.uploader = New(Options{
		Email:          "me@example.com",
		Password:       "hunter2",
		VideoTitle:     "My Stream",
		DeleteWhenDone: deleteWhenDone,
		LogPath:        f.logPath,
		Wait:           WaitConfig{MaxAttempts: 2},
		Output:         io.Discard,
		Now:            func() time.Time { return testNow },
	})
	f.uploader.StartBrowser = func(ctx context.Context, opts SessionOptions) (Browser, error) {
		return f.browser, nil
	}
	f.uploader.OpenFile = func(path string) error {
		f.opened = append(f.opened, path)
		return nil
	}
	return f
}

func TestUpload_HappyPath(t *testing.T) {
	f := newUploadFixture(t, false)

	videoURL, err := f.uploader.Upload(context.Background(), f.video)
	require.NoError(t, err)

	assert.Equal(t, "https://rumble.com/v5abc-my-stream.html", videoURL)
	assert.Equal(t, 1, f.browser.closed)
	assert.FileExists(t, f.video)

	b := f.browser
	assert.Equal(t, "me@example.com", b.typed[selLoginUsername])
	assert.Equal(t, "hunter2", b.typed[selLoginPassword])
	assert.Equal(t, "My Stream - 2026-10-19 14:30:05", b.typed[selTitle])
	assert.Equal(t, "My Stream stream archive", b.typed[selDescription])
	assert.Equal(t, "Entertainment\r", b.typed[selPrimaryCategory])
	assert.Equal(t, "Entertainment Life\r", b.typed[selSecondaryCategory])
	assert.Equal(t, []string{f.video}, b.uploads[selInjectedInput])
	assert.Equal(t, []string{f.video}, b.uploads[selUploadTarget])
	assert.True(t, b.checked[selRightsCheckbox])
	assert.True(t, b.checked[selTermsCheckbox])
	assert.Equal(t, 1, b.count("Click "+selSubmit))
	assert.Equal(t, 1, b.count("Click "+selFinalSubmit))

	content, err := os.ReadFile(f.logPath)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19, https://rumble.com/v5abc-my-stream.html\n", string(content))
	assert.Empty(t, f.opened)
}

func TestUpload_OpensLogWhenAsked(t *testing.T) {
	f := newUploadFixture(t, false)
	f.uploader.opts.OpenLogWhenDone = true

	_, err := f.uploader.Upload(context.Background(), f.video)
	require.NoError(t, err)

	assert.Equal(t, []string{f.logPath}, f.opened)
}

func TestUpload_PollerGivingUpDoesNotAbort(t *testing.T) {
	f := newUploadFixture(t, false)
	f.browser.texts = []string{"80%"}
	f.uploader.opts.MaxPollAttempts = 3

	videoURL, err := f.uploader.Upload(context.Background(), f.video)
	require.NoError(t, err)

	assert.NotEmpty(t, videoURL)
	assert.Zero(t, f.browser.count("Click "+selSubmit))
	assert.Equal(t, 3, f.browser.count("Text "+selProgress))
}

func TestUpload_CleanupOnFailure(t *testing.T) {
	steps := []struct {
		name string
		call string
	}{
		{"navigate", "Navigate " + RumbleUploadURL},
		{"login submit", "Click " + selLoginSubmit},
		{"inject input", "SetUploadFiles " + selInjectedInput},
		{"title", "SendKeys " + selTitle},
		{"category", "Click " + selPrimaryCategory},
		{"published link", "Attribute " + selPublishedLink},
	}

	for _, step := range steps {
		for _, deleteWhenDone := range []bool{false, true} {
			name := step.name
			if deleteWhenDone {
				name += "/delete"
			}
			t.Run(name, func(t *testing.T) {
				f := newUploadFixture(t, deleteWhenDone)
				f.browser.fail[step.call] = errors.New("boom")

				_, err := f.uploader.Upload(context.Background(), f.video)
				require.Error(t, err)

				assert.Equal(t, 1, f.browser.closed)
				if deleteWhenDone {
					assert.NoFileExists(t, f.video)
				} else {
					assert.FileExists(t, f.video)
				}
				assert.NoFileExists(t, f.logPath)
			})
		}
	}
}

func TestUpload_CleanupWhenLogUnwritable(t *testing.T) {
	for _, deleteWhenDone := range []bool{false, true} {
		t.Run(fmt.Sprintf("delete=%v", deleteWhenDone), func(t *testing.T) {
			f := newUploadFixture(t, deleteWhenDone)
			blocker := filepath.Join(t.TempDir(), "not-a-dir")
			require.NoError(t, os.WriteFile(blocker, nil, 0o644))
			f.uploader.opts.LogPath = filepath.Join(blocker, LogFileName)

			videoURL, err := f.uploader.Upload(context.Background(), f.video)
			require.Error(t, err)

			assert.Equal(t, "https://rumble.com/v5abc-my-stream.html", videoURL)
			assert.Equal(t, 1, f.browser.closed)
			if deleteWhenDone {
				assert.NoFileExists(t, f.video)
			} else {
				assert.FileExists(t, f.video)
			}
			assert.Empty(t, f.opened)
		})
	}
}

func TestUpload_PublishedLinkMissing(t *testing.T) {
	f := newUploadFixture(t, false)
	f.browser.href = ""

	_, err := f.uploader.Upload(context.Background(), f.video)

	assert.ErrorIs(t, err, ErrNoPublishedURL)
	assert.Equal(t, 1, f.browser.closed)
}

func TestUpload_DeleteToleratesMissingVideo(t *testing.T) {
	f := newUploadFixture(t, true)
	f.browser.fail["SendKeys "+selTitle] = errors.New("boom")
	require.NoError(t, os.Remove(f.video))

	_, err := f.uploader.Upload(context.Background(), f.video)

	require.Error(t, err)
	assert.Equal(t, 1, f.browser.closed)
}

func TestUpload_StartBrowserFailure(t *testing.T) {
	f := newUploadFixture(t, true)
	f.uploader.StartBrowser = func(ctx context.Context, opts SessionOptions) (Browser, error) {
		return nil, errors.New("chrome not found")
	}

	_, err := f.uploader.Upload(context.Background(), f.video)

	assert.ErrorContains(t, err, "chrome not found")
	assert.FileExists(t, f.video)
}

func TestUpload_ScreenshotOnFailure(t *testing.T) {
	f := newUploadFixture(t, false)
	f.uploader.opts.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	f.browser.fail["SendKeys "+selDescription] = errors.New("boom")

	_, err := f.uploader.Upload(context.Background(), f.video)
	require.Error(t, err)

	shots, err := filepath.Glob(filepath.Join(f.uploader.opts.ScreenshotDir, "error_*.jpg"))
	require.NoError(t, err)
	assert.Len(t, shots, 1)
}

func TestUpload_CookieLogin(t *testing.T) {
	f := newUploadFixture(t, false)
	f.uploader.opts.Cookies = Cookies{{Name: "u_s", Value: "token", Domain: ".rumble.com"}}.Builtin()
	f.uploader.opts.Email = ""
	f.uploader.opts.Password = ""

	_, err := f.uploader.Upload(context.Background(), f.video)
	require.NoError(t, err)

	assert.Equal(t, 1, f.browser.count("SetCookies "+RumbleHomepageURL))
	assert.Empty(t, f.browser.typed[selLoginUsername])
}

func TestUpload_CookieLoginFallsBackWithoutCredentials(t *testing.T) {
	f := newUploadFixture(t, false)
	f.uploader.opts.Cookies = Cookies{{Name: "u_s", Value: "expired"}}.Builtin()
	f.uploader.opts.Email = ""
	f.browser.loginShown = true

	_, err := f.uploader.Upload(context.Background(), f.video)

	assert.ErrorIs(t, err, errNoCredentials)
	assert.Equal(t, 1, f.browser.closed)
}

func TestUpload_NonFileUploadTargetIsOnlyAWarning(t *testing.T) {
	f := newUploadFixture(t, false)
	f.browser.nodes[selUploadTarget].NodeName = "DIV"

	_, err := f.uploader.Upload(context.Background(), f.video)
	require.NoError(t, err)

	assert.NotContains(t, f.browser.uploads, selUploadTarget)
}
