package rumbleup

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

var DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

const (
	DefaultActionTimeout   = 15 * time.Second
	DefaultNavigateTimeout = 60 * time.Second

	BypassHeadlessScript = `(function(w, n, wn) {
		// Pass the Webdriver Test.
		Object.defineProperty(n, 'webdriver', {
		  get: () => false,
		});

		// Pass the Plugins Length Test.
		Object.defineProperty(n, 'plugins', {
		  get: () => [1, 2, 3, 4, 5],
		});

		// Pass the Languages Test.
		Object.defineProperty(n, 'languages', {
		  get: () => ['en-US', 'en'],
		});

		// Pass the Chrome Test.
		w.chrome = {
		  runtime: {},
		};

		// Pass the Permissions Test.
		const originalQuery = wn.permissions.query;
		return wn.permissions.query = (parameters) => (
		  parameters.name === 'notifications' ?
			Promise.resolve({ state: Notification.permission }) :
			originalQuery(parameters)
		);

	  })(window, navigator, window.navigator);`
)

// SessionOptions configures the Chrome instance behind a Session.
type SessionOptions struct {
	Headless        bool
	ExecPath        string
	UserAgent       string
	ActionTimeout   time.Duration
	NavigateTimeout time.Duration
}

// Session owns one Chrome process and the single tab the upload runs in.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        SessionOptions
	closeOnce   sync.Once
}

// StartSession launches Chrome. The caller must Close the returned session.
func StartSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	log.Info().Bool("headless", opts.Headless).Msg("starting browser")

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = DefaultNavigateTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("user-agent", opts.UserAgent),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("mute-audio", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)
	s := &Session{
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		opts:        opts,
	}

	// The first Run launches Chrome under the context it is given, so it
	// must not carry a timeout or the browser dies with it.
	stop := context.AfterFunc(ctx, s.Close)
	defer stop()
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(BypassHeadlessScript).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close shuts the browser down. Only the first call has any effect.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		log.Info().Msg("closing browser")
		s.cancel()
		s.allocCancel()
	})
}

// run executes actions in the tab, bounded by timeout and by the caller's ctx.
// Cancelling the caller's ctx aborts the actions but leaves the tab open.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, s.opts.NavigateTimeout, chromedp.Navigate(url))
}

func (s *Session) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

func (s *Session) SendKeys(ctx context.Context, sel, text string) error {
	return s.run(ctx, s.opts.ActionTimeout, chromedp.SendKeys(sel, text, chromedp.ByQuery))
}

func (s *Session) Click(ctx context.Context, sel string) error {
	return s.run(ctx, s.opts.ActionTimeout, chromedp.Click(sel, chromedp.ByQuery))
}

func (s *Session) ScriptClick(ctx context.Context, sel string) error {
	var clicked bool
	script := fmt.Sprintf(`(function() {
		const el = document.querySelector(%q);
		if (!el) { return false; }
		el.click();
		return true;
	})()`, sel)
	if err := s.run(ctx, s.opts.ActionTimeout, chromedp.Evaluate(script, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no element matches %s", sel)
	}
	return nil
}

func (s *Session) ScrollIntoView(ctx context.Context, sel string) error {
	return s.run(ctx, s.opts.ActionTimeout, chromedp.ScrollIntoView(sel, chromedp.ByQuery))
}

func (s *Session) Text(ctx context.Context, sel string) (string, error) {
	var res string
	err := s.run(ctx, s.opts.ActionTimeout, chromedp.Text(sel, &res, chromedp.ByQuery))
	return res, err
}

func (s *Session) Attribute(ctx context.Context, sel, name string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.run(ctx, s.opts.ActionTimeout, chromedp.AttributeValue(sel, name, &value, &ok, chromedp.ByQuery))
	return value, ok, err
}

func (s *Session) Checked(ctx context.Context, sel string) (bool, error) {
	var checked bool
	err := s.run(ctx, s.opts.ActionTimeout, chromedp.JavascriptAttribute(sel, "checked", &checked, chromedp.ByQuery))
	return checked, err
}

func (s *Session) Node(ctx context.Context, sel string) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, s.opts.ActionTimeout, chromedp.Nodes(sel, &nodes, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no element matches %s", sel)
	}
	return nodes[0], nil
}

func (s *Session) Evaluate(ctx context.Context, script string, res interface{}) error {
	return s.run(ctx, s.opts.ActionTimeout, chromedp.Evaluate(script, res))
}

func (s *Session) SetUploadFiles(ctx context.Context, sel string, files []string) error {
	return s.run(ctx, s.opts.ActionTimeout, chromedp.SetUploadFiles(sel, files, chromedp.ByQuery))
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, s.opts.ActionTimeout, chromedp.Location(&url))
	return url, err
}

// SetCookies opens host so the cookies land on its domain, installs them
// and reloads host with the new session.
func (s *Session) SetCookies(ctx context.Context, host string, cookies ...*http.Cookie) error {
	log.Info().Int("count", len(cookies)).Msg("set cookies")

	return s.run(ctx, s.opts.NavigateTimeout, chromedp.Tasks{
		chromedp.Navigate(host),
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, cookie := range cookies {
				params := network.SetCookie(cookie.Name, cookie.Value).
					WithDomain(cookie.Domain).
					WithHTTPOnly(cookie.HttpOnly).
					WithSecure(cookie.Secure).
					WithPath(cookie.Path)
				// zero Expires is a session cookie
				if !cookie.Expires.IsZero() {
					exp := cdp.TimeSinceEpoch(cookie.Expires)
					params = params.WithExpires(&exp)
				}
				if mode, ok := sameSite(cookie.SameSite); ok {
					params = params.WithSameSite(mode)
				}
				if err := params.Do(ctx); err != nil {
					return fmt.Errorf("failed to set cookie %s: %w", cookie.Name, err)
				}
			}
			return nil
		}),
		chromedp.Navigate(host),
	})
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, s.opts.ActionTimeout, chromedp.FullScreenshot(&buf, 90))
	return buf, err
}

func sameSite(mode http.SameSite) (network.CookieSameSite, bool) {
	switch mode {
	case http.SameSiteLaxMode:
		return network.CookieSameSiteLax, true
	case http.SameSiteStrictMode:
		return network.CookieSameSiteStrict, true
	case http.SameSiteNoneMode:
		return network.CookieSameSiteNone, true
	}
	return "", false
}
