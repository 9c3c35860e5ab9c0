package lockgate

import (
	"context"
	"fmt"
	"time"
)

// twoFactorRequired reports whether an accepted primary credential must
// route through the second factor: the account opted in and carries a
// deliverable address.
func twoFactorRequired(rec *UserRecord) bool {
	return rec.TwoFactorEnabled && rec.Email != "" && isEmailAddress(rec.Email)
}

// twoFactorChallenge issues and checks the emailed second factor. Tokens are
// derived from the record's salt with a fixed validity window; there is no
// server-held challenge state between issue and verify, the two calls are
// correlated only by identifier plus token.
type twoFactorChallenge struct {
	codec  TokenCodec
	mailer Mailer
	window time.Duration
}

// issue generates a token for the record and hands it to the mailer. Both a
// generation error and a delivery error abort the login; a failed issuance
// must never fall through to a logged-in state.
func (c *twoFactorChallenge) issue(ctx context.Context, rec *UserRecord) error {
	token, err := c.codec.Generate(rec.Salt, c.window)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	if err := c.mailer.SendTwoFactorCode(ctx, rec.Name, rec.Email, token); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return nil
}

// check re-derives the acceptable token family from the record's salt and
// tests membership. Skew tolerance is owned by the codec.
func (c *twoFactorChallenge) check(token string, rec *UserRecord) bool {
	return c.codec.Verify(token, rec.Salt, c.window)
}
