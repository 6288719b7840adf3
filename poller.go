package rumbleup

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// PollState is where an upload-completion poll ended up.
type PollState int

const (
	Waiting PollState = iota
	Complete
	GaveUp
)

func (s PollState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Complete:
		return "complete"
	case GaveUp:
		return "gave up"
	default:
		return "unknown"
	}
}

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

func parsePercentage(s string) (int, error) {
	match := percentRe.FindStringSubmatch(s)
	if len(match) == 0 {
		return 0, errors.New("not found")
	}
	return strconv.Atoi(match[1])
}

// Poller watches the upload progress indicator until it reads 100% and
// then submits the upload form.
type Poller struct {
	Browser      Browser
	Indicator    string
	Submit       string
	MaxAttempts  int
	Interval     time.Duration
	InitialDelay time.Duration
	Output       io.Writer
}

// Run polls at most MaxAttempts times. Read errors count as attempts and
// are only logged; Run never fails the upload itself.
func (p *Poller) Run(ctx context.Context) PollState {
	logger := log.Ctx(ctx)
	logger.Info().Msg("wait uploading complete")

	out := p.Output
	if out == nil {
		out = io.Discard
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("Uploading..."),
	)
	defer bar.Close()

	if err := sleep(ctx, p.InitialDelay); err != nil {
		return GaveUp
	}

	state := Waiting
	for remaining := p.MaxAttempts; remaining > 0; remaining-- {
		text, err := p.Browser.Text(ctx, p.Indicator)
		switch {
		case err != nil:
			logger.Warn().Err(err).Int("remaining", remaining-1).Msg("progress indicator not readable")
		case strings.Contains(text, "100%"):
			bar.Set(100)
			bar.Finish()
			state = Complete
		default:
			if progress, err := parsePercentage(text); err == nil {
				bar.Set(progress)
			}
			logger.Debug().Str("progress", strings.TrimSpace(text)).Int("remaining", remaining-1).Msg("upload in progress")
		}
		if state == Complete {
			break
		}
		if err := sleep(ctx, p.Interval); err != nil {
			return GaveUp
		}
	}

	if state != Complete {
		logger.Warn().Int("attempts", p.MaxAttempts).Msg("upload did not reach 100%")
		return GaveUp
	}

	logger.Info().Msg("upload finished")
	if err := p.Browser.Click(ctx, p.Submit); err != nil {
		logger.Warn().Err(err).Str("selector", p.Submit).Msg("failed to submit upload form")
	}
	return Complete
}
