package rumbleup

import (
	"context"
	"time"

	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog/log"
)

const titleTimeLayout = "2006-01-02 15:04:05"

// Title is the configured title stamped with the local time.
func Title(videoTitle string, now time.Time) string {
	return videoTitle + " - " + now.Format(titleTimeLayout)
}

func Description(videoTitle string) string {
	return videoTitle + " stream archive"
}

func (u *Uploader) fillDetails(ctx context.Context, b Browser) error {
	log.Ctx(ctx).Info().Msg("filling video details")

	if err := b.SendKeys(ctx, selTitle, Title(u.opts.VideoTitle, u.opts.Now())); err != nil {
		return err
	}
	if err := b.SendKeys(ctx, selDescription, Description(u.opts.VideoTitle)); err != nil {
		return err
	}
	return u.setCategory(ctx, b, u.opts.PrimaryCategory, u.opts.SecondaryCategory)
}

// setCategory types into the category typeaheads and lets the page's
// autocomplete pick the match on Enter.
func (u *Uploader) setCategory(ctx context.Context, b Browser, primary, secondary string) error {
	if err := b.Evaluate(ctx, `window.scrollTo(0, document.body.scrollHeight)`, nil); err != nil {
		return err
	}

	for _, c := range []struct{ sel, value string }{
		{selPrimaryCategory, primary},
		{selSecondaryCategory, secondary},
	} {
		if err := b.WaitVisible(ctx, c.sel, u.opts.Wait.Timeout); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("selector", c.sel).Msg("category input not visible")
		}
		if err := b.Click(ctx, c.sel); err != nil {
			return err
		}
		if err := b.SendKeys(ctx, c.sel, c.value+kb.Enter); err != nil {
			return err
		}
	}
	return nil
}
