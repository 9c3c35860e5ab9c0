package lockgate

import (
	"errors"
	"fmt"
	"time"
)

// Builder assembles an [Engine] from its collaborators. Start from
// [NewBuilder], chain the With methods, then call [Builder.Build] once.
type Builder struct {
	config Config

	store    UserStore
	hasher   PasswordHasher
	codec    TokenCodec
	mailer   Mailer
	sessions SessionStore
	sink     AuditSink
}

// NewBuilder returns a Builder seeded with the default configuration: lock at
// five failed attempts, warn at three, twenty-minute lock, five-minute token
// window, audit and metrics off.
func NewBuilder() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration. Zero sub-structs are not
// back-filled; pass a fully populated Config or start from the defaults.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithLockout overrides only the lockout knobs.
func (b *Builder) WithLockout(lockThreshold, warnThreshold int, lockDuration time.Duration) *Builder {
	b.config.Lockout = LockoutConfig{
		LockThreshold: lockThreshold,
		WarnThreshold: warnThreshold,
		LockDuration:  lockDuration,
	}
	return b
}

// WithTwoFactorWindow overrides the token validity window.
func (b *Builder) WithTwoFactorWindow(window time.Duration) *Builder {
	b.config.TwoFactor.ValidityWindow = window
	return b
}

// WithSignupFallback toggles the signup hint on not-found rejections.
func (b *Builder) WithSignupFallback(enabled bool) *Builder {
	b.config.Signup.FallbackEnabled = enabled
	return b
}

// WithUserStore sets the persistence collaborator. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.store = store
	return b
}

// WithHasher sets the password hasher. Required.
func (b *Builder) WithHasher(hasher PasswordHasher) *Builder {
	b.hasher = hasher
	return b
}

// WithTokenCodec sets the two-factor token codec. Required together with
// WithMailer when any account has two-factor enabled.
func (b *Builder) WithTokenCodec(codec TokenCodec) *Builder {
	b.codec = codec
	return b
}

// WithMailer sets the two-factor delivery collaborator.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithSessionStore sets the session teardown collaborator. Optional; without
// it, logout and failed two-factor verifications skip session destruction.
func (b *Builder) WithSessionStore(sessions SessionStore) *Builder {
	b.sessions = sessions
	return b
}

// WithAuditSink enables the async audit dispatcher and routes events to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Engine. The codec and
// mailer come as a pair: providing one without the other is a construction
// error rather than a latent request-time failure.
func (b *Builder) Build() (*Engine, error) {
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if b.store == nil {
		return nil, errors.New("a UserStore is required")
	}
	if b.hasher == nil {
		return nil, errors.New("a PasswordHasher is required")
	}
	if (b.codec == nil) != (b.mailer == nil) {
		return nil, errors.New("TokenCodec and Mailer must be provided together")
	}

	engine := &Engine{
		config:   b.config,
		store:    b.store,
		sessions: b.sessions,
		policy:   NewLockoutPolicy(b.config.Lockout),
		verifier: &credentialVerifier{hasher: b.hasher},
		audit:    newAuditDispatcher(b.config.Audit, b.sink),
		metrics:  NewMetrics(b.config.Metrics),
		clock:    time.Now,
	}

	if b.codec != nil {
		engine.challenge = &twoFactorChallenge{
			codec:  b.codec,
			mailer: b.mailer,
			window: b.config.TwoFactor.ValidityWindow,
		}
	}

	return engine, nil
}
