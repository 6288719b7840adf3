package rumbleup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chromedp/cdproto/cdp"
)

// Browser is the set of page interactions the upload steps need.
// Session implements it on top of chromedp; tests use a fake.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	SendKeys(ctx context.Context, sel, text string) error
	Click(ctx context.Context, sel string) error
	// ScriptClick calls element.click() from page script, skipping the
	// visibility and hit-test checks a mouse click goes through.
	ScriptClick(ctx context.Context, sel string) error
	ScrollIntoView(ctx context.Context, sel string) error
	Text(ctx context.Context, sel string) (string, error)
	Attribute(ctx context.Context, sel, name string) (string, bool, error)
	Checked(ctx context.Context, sel string) (bool, error)
	Node(ctx context.Context, sel string) (*cdp.Node, error)
	Evaluate(ctx context.Context, script string, res interface{}) error
	SetUploadFiles(ctx context.Context, sel string, files []string) error
	Location(ctx context.Context) (string, error)
	SetCookies(ctx context.Context, host string, cookies ...*http.Cookie) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close()
}

var errNotReady = errors.New("not ready")

// WaitConfig bounds a readiness wait.
type WaitConfig struct {
	Timeout     time.Duration
	Interval    time.Duration
	MaxInterval time.Duration
	MaxAttempts int
}

// DefaultWait is used for page readiness checks.
var DefaultWait = WaitConfig{
	Timeout:     30 * time.Second,
	Interval:    250 * time.Millisecond,
	MaxInterval: 2 * time.Second,
}

// waitUntil polls cond with exponential backoff until it reports true,
// the wait budget runs out or ctx is done.
func waitUntil(ctx context.Context, cfg WaitConfig, cond func(ctx context.Context) (bool, error)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.Interval
	b.MaxInterval = cfg.MaxInterval
	b.MaxElapsedTime = cfg.Timeout

	var policy backoff.BackOff = b
	if cfg.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(cfg.MaxAttempts))
	}

	return backoff.Retry(func() error {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errNotReady
		}
		return nil
	}, backoff.WithContext(policy, ctx))
}

// exists reports whether sel matches an element right now, without waiting.
func exists(ctx context.Context, b Browser, sel string) (bool, error) {
	var found bool
	if err := b.Evaluate(ctx, fmt.Sprintf(`document.querySelector(%q) !== null`, sel), &found); err != nil {
		return false, err
	}
	return found, nil
}

// sleep pauses for d, returning early with ctx's error if it is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
