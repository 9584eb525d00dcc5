package adminauth

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// Config holds the deployment level knobs for the credential store and the
// session token minter. Values come from the environment so the admin shell
// can run the same build against any tenant stack.
type Config struct {
	// Pepper is deployment secret material mixed into every password hash.
	Pepper string `env:"AUTH_PEPPER"`
	// SigningKey signs locally minted session tokens.
	SigningKey string `env:"AUTH_SIGNING_KEY"`

	Issuer   string   `env:"AUTH_ISSUER" envDefault:"go-admin-auth"`
	Audience []string `env:"AUTH_AUDIENCE" envSeparator:","`

	// TokenExpiration is the session token lifetime in hours.
	TokenExpiration int `env:"AUTH_TOKEN_EXPIRATION" envDefault:"72"`

	MaxLoginAttempts int           `env:"AUTH_MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LockoutPeriod    time.Duration `env:"AUTH_LOCKOUT_PERIOD" envDefault:"15m"`
	ResetTokenTTL    time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
}

// LoadConfig parses the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse auth configuration")
	}
	return cfg, nil
}

// Normalize fills zero values with the documented policy defaults so a
// hand-built Config behaves like an env-parsed one.
func (c *Config) Normalize() {
	if c.TokenExpiration == 0 {
		c.TokenExpiration = 72
	}
	if c.MaxLoginAttempts == 0 {
		c.MaxLoginAttempts = 5
	}
	if c.LockoutPeriod == 0 {
		c.LockoutPeriod = 15 * time.Minute
	}
	if c.ResetTokenTTL == 0 {
		c.ResetTokenTTL = time.Hour
	}
	if c.Issuer == "" {
		c.Issuer = "go-admin-auth"
	}
}
