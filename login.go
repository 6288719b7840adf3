package rumbleup

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var errNoCredentials = errors.New("login form shown but no email/password configured")

// login opens the upload page signed in. With cookies configured they are
// installed first and the credential form is only used if it still shows.
func (u *Uploader) login(ctx context.Context, b Browser) error {
	logger := log.Ctx(ctx)

	if len(u.opts.Cookies) > 0 {
		if err := b.SetCookies(ctx, RumbleHomepageURL, u.opts.Cookies...); err != nil {
			return fmt.Errorf("failed to set cookies: %w", err)
		}
	}

	logger.Info().Msg("opening upload page")
	if err := b.Navigate(ctx, RumbleUploadURL); err != nil {
		return err
	}

	if len(u.opts.Cookies) > 0 {
		shown, err := exists(ctx, b, selLoginUsername)
		if err != nil {
			return err
		}
		if !shown {
			logger.Info().Msg("signed in with cookies")
			return nil
		}
		logger.Warn().Msg("cookies did not sign in, falling back to credentials")
		if u.opts.Email == "" || u.opts.Password == "" {
			return errNoCredentials
		}
	}

	logger.Info().Msg("signing in")
	if err := b.WaitVisible(ctx, selLoginUsername, u.opts.Wait.Timeout); err != nil {
		logger.Warn().Err(err).Msg("login form not visible")
	}
	if err := b.SendKeys(ctx, selLoginUsername, u.opts.Email); err != nil {
		return err
	}
	if err := b.SendKeys(ctx, selLoginPassword, u.opts.Password); err != nil {
		return err
	}
	if err := b.Click(ctx, selLoginSubmit); err != nil {
		return err
	}

	// Success is not verified here; a failed login shows up as missing
	// upload form elements in the next steps.
	err := waitUntil(ctx, u.opts.Wait, func(ctx context.Context) (bool, error) {
		shown, err := exists(ctx, b, selLoginUsername)
		return !shown, err
	})
	if err != nil {
		logger.Warn().Err(err).Msg("login form still shown")
	}
	return ctx.Err()
}
