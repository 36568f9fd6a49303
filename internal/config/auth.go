package config

import "time"

type Auth struct {
	// JWTSecret is the HMAC key used to verify bearer tokens and to sign
	// quote tokens.
	JWTSecret string `env:"AUTH_JWT_SECRET,required"`

	// QuoteTTL bounds the validity of issued price quote tokens.
	QuoteTTL time.Duration `env:"AUTH_QUOTE_TTL" envDefault:"15m"`
}
