package rumbleup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ClickStrategy is one way of getting a click onto an element.
type ClickStrategy struct {
	Name  string
	Click func(ctx context.Context, b Browser, sel string) error
}

// ScrollClick scrolls the element into view before a normal click.
func ScrollClick() ClickStrategy {
	return ClickStrategy{
		Name: "scroll",
		Click: func(ctx context.Context, b Browser, sel string) error {
			if err := b.ScrollIntoView(ctx, sel); err != nil {
				return err
			}
			return b.Click(ctx, sel)
		},
	}
}

// ScriptClick clicks from page script.
func ScriptClick() ClickStrategy {
	return ClickStrategy{
		Name: "script",
		Click: func(ctx context.Context, b Browser, sel string) error {
			return b.ScriptClick(ctx, sel)
		},
	}
}

// RetryClick clicks normally, up to retries times with delay in between.
// retries below one is treated as one.
func RetryClick(retries int, delay time.Duration) ClickStrategy {
	if retries < 1 {
		retries = 1
	}
	return ClickStrategy{
		Name: "retry",
		Click: func(ctx context.Context, b Browser, sel string) error {
			var err error
			for attempt := 1; attempt <= retries; attempt++ {
				if err = b.Click(ctx, sel); err == nil {
					return nil
				}
				log.Ctx(ctx).Debug().Err(err).Str("selector", sel).Int("attempt", attempt).Msg("click rejected")
				if attempt < retries {
					if serr := sleep(ctx, delay); serr != nil {
						return serr
					}
				}
			}
			return fmt.Errorf("click %s failed after %d attempts: %w", sel, retries, err)
		},
	}
}

// CheckResult reports how a checkbox ended up checked, if it did. Strategy
// with Checked false means the last click landed but its state was unreadable.
type CheckResult struct {
	Selector string
	Strategy string
	Checked  bool
}

// CheckboxResolver ticks checkboxes that sometimes ignore clicks.
type CheckboxResolver struct {
	Browser    Browser
	Strategies []ClickStrategy
}

// Check leaves sel checked. Strategies are tried in order and the first
// one after which the box reads back as checked wins. A box that is
// already checked is left alone so it is never toggled off.
func (r *CheckboxResolver) Check(ctx context.Context, sel string) CheckResult {
	logger := log.Ctx(ctx).With().Str("selector", sel).Logger()
	result := CheckResult{Selector: sel}

	if checked, err := r.Browser.Checked(ctx, sel); err == nil && checked {
		result.Checked = true
		result.Strategy = "already"
		return result
	} else if err != nil {
		logger.Warn().Err(err).Msg("failed to read checkbox state")
	}

	for _, strategy := range r.Strategies {
		if ctx.Err() != nil {
			break
		}
		if err := strategy.Click(ctx, r.Browser, sel); err != nil {
			logger.Warn().Err(err).Str("strategy", strategy.Name).Msg("checkbox click failed")
			continue
		}
		// No strategy runs after a click whose outcome cannot be read.
		result.Strategy = strategy.Name
		checked, err := r.Browser.Checked(ctx, sel)
		if err != nil {
			logger.Warn().Err(err).Str("strategy", strategy.Name).Msg("checkbox state unknown after click")
			return result
		}
		if checked {
			result.Checked = true
			logger.Info().Str("strategy", strategy.Name).Msg("checkbox checked")
			return result
		}
	}

	logger.Warn().Msg("checkbox still unchecked")
	result.Strategy = ""
	return result
}

// Resolve runs Check for every selector in order.
func (r *CheckboxResolver) Resolve(ctx context.Context, selectors ...string) []CheckResult {
	results := make([]CheckResult, 0, len(selectors))
	for _, sel := range selectors {
		results = append(results, r.Check(ctx, sel))
	}
	return results
}
