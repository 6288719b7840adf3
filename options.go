package rumbleup

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	DefaultPrimaryCategory   = "Entertainment"
	DefaultSecondaryCategory = "Entertainment Life"
	DefaultMaxPollAttempts   = 100
	DefaultPollInterval      = 10 * time.Second
	DefaultInitialPollDelay  = 10 * time.Second
)

// Options is everything an Uploader needs for one run.
type Options struct {
	Email    string
	Password string
	Cookies  []*http.Cookie

	VideoTitle        string
	PrimaryCategory   string
	SecondaryCategory string

	DeleteWhenDone  bool
	OpenLogWhenDone bool
	LogPath         string
	ScreenshotDir   string

	MaxPollAttempts  int
	PollInterval     time.Duration
	InitialPollDelay time.Duration
	CheckboxRetries  int
	CheckboxDelay    time.Duration
	Wait             WaitConfig

	Session SessionOptions

	// Output receives progress bars. Defaults to os.Stdout.
	Output io.Writer
	Now    func() time.Time
}

func (o *Options) setDefaults() {
	if o.PrimaryCategory == "" {
		o.PrimaryCategory = DefaultPrimaryCategory
	}
	if o.SecondaryCategory == "" {
		o.SecondaryCategory = DefaultSecondaryCategory
	}
	if o.MaxPollAttempts <= 0 {
		o.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if o.CheckboxRetries <= 0 {
		o.CheckboxRetries = 3
	}
	if o.Wait == (WaitConfig{}) {
		o.Wait = DefaultWait
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// OptionsFromSettings resolves the run configuration. Credentials may be
// omitted when a cookies file is configured.
func OptionsFromSettings(s *Settings) (Options, error) {
	opts := Options{
		PrimaryCategory:   s.Lookup(KeyPrimaryCategory, DefaultPrimaryCategory),
		SecondaryCategory: s.Lookup(KeySecondaryCategory, DefaultSecondaryCategory),
		PollInterval:      DefaultPollInterval,
		InitialPollDelay:  DefaultInitialPollDelay,
		CheckboxDelay:     time.Second,
		Session: SessionOptions{
			Headless:  ParseFlag(s.Lookup(KeyHeadless, "false")),
			ExecPath:  s.Lookup(KeyChromePath, ""),
			UserAgent: s.Lookup(KeyUserAgent, DefaultUserAgent),
		},
	}

	var err error
	if cookiesFile, cerr := s.Path(KeyCookiesFile); cerr == nil {
		cookies, err := ParseCookiesFromJSONFile(cookiesFile)
		if err != nil {
			return opts, fmt.Errorf("failed to load cookies: %w", err)
		}
		opts.Cookies = cookies.Builtin()
		opts.Email = s.Lookup(KeyEmail, "")
		opts.Password = s.Lookup(KeyPassword, "")
	} else {
		if opts.Email, err = s.Get(KeyEmail); err != nil {
			return opts, err
		}
		if opts.Password, err = s.Get(KeyPassword); err != nil {
			return opts, err
		}
	}

	if opts.VideoTitle, err = s.Get(KeyVideoTitle); err != nil {
		return opts, err
	}
	if opts.DeleteWhenDone, err = s.Flag(KeyDeleteWhenDone); err != nil {
		return opts, err
	}
	if opts.OpenLogWhenDone, err = s.Flag(KeyOpenLogWhenDone); err != nil {
		return opts, err
	}

	if raw, err := s.Get(KeyMaxPollAttempts); err == nil {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("invalid %s %q", KeyMaxPollAttempts, raw)
		}
		opts.MaxPollAttempts = n
	}
	if raw, err := s.Get(KeyPollInterval); err == nil {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid %s %q: %w", KeyPollInterval, raw, err)
		}
		opts.PollInterval = d
	}
	if dir, err := s.Path(KeyScreenshotDir); err == nil {
		opts.ScreenshotDir = dir
	}
	if path, err := s.Path(KeyLogFile); err == nil {
		opts.LogPath = path
	} else if opts.LogPath, err = DefaultLogPath(); err != nil {
		return opts, err
	}

	return opts, nil
}
