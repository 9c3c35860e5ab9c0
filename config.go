package lockgate

import (
	"errors"
	"time"
)

// Config holds every pipeline knob. Instances are validated once during
// [Builder.Build] and treated as immutable afterwards.
type Config struct {
	Lockout   LockoutConfig
	TwoFactor TwoFactorConfig
	Signup    SignupConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

// LockoutConfig drives the failed-attempt state machine.
type LockoutConfig struct {
	// LockThreshold is the attempt count at which the account locks.
	LockThreshold int
	// WarnThreshold is the attempt count at which mismatch outcomes start
	// carrying a warning. Must be below LockThreshold.
	WarnThreshold int
	// LockDuration is how long a triggered lock lasts. Expiry is lazy: the
	// next attempt after the deadline is evaluated as if the account were
	// active.
	LockDuration time.Duration
}

// TwoFactorConfig drives the emailed second factor.
type TwoFactorConfig struct {
	// ValidityWindow is the maximum age of an acceptable token.
	ValidityWindow time.Duration
}

// SignupConfig controls the signup fallback hint on not-found logins.
type SignupConfig struct {
	// FallbackEnabled marks not-found rejections with SignupFallback so the
	// presentation layer can reroute to its signup flow.
	FallbackEnabled bool
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is full.
	// Dropped counts are observable via [Engine.AuditDropped].
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Lockout: LockoutConfig{
			LockThreshold: 5,
			WarnThreshold: 3,
			LockDuration:  20 * time.Minute,
		},
		TwoFactor: TwoFactorConfig{
			ValidityWindow: 300 * time.Second,
		},
		Signup: SignupConfig{
			FallbackEnabled: false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for internal consistency. It is called
// once from [Builder.Build]; a validated config needs no further checks on
// the request path.
func (c *Config) Validate() error {
	if c.Lockout.LockThreshold <= 0 {
		return errors.New("Lockout LockThreshold must be > 0")
	}
	if c.Lockout.WarnThreshold <= 0 {
		return errors.New("Lockout WarnThreshold must be > 0")
	}
	if c.Lockout.WarnThreshold >= c.Lockout.LockThreshold {
		return errors.New("Lockout WarnThreshold must be below LockThreshold")
	}
	if c.Lockout.LockDuration <= 0 {
		return errors.New("Lockout LockDuration must be > 0")
	}

	if c.TwoFactor.ValidityWindow <= 0 {
		return errors.New("TwoFactor ValidityWindow must be > 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
