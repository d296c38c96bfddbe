package main

import "time"

// appConfig holds the service-level settings that do not belong to any
// single package.
type appConfig struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	OTPTTL                   time.Duration `env:"OTP_TTL" envDefault:"10m"`
	RequireEmailVerification bool          `env:"AUTH_REQUIRE_EMAIL_VERIFICATION" envDefault:"true"`
	SweepInterval            time.Duration `env:"AUTH_SWEEP_INTERVAL" envDefault:"1h"`

	GoogleOAuthEnabled bool `env:"GOOGLE_OAUTH_ENABLED" envDefault:"false"`
}

func (c appConfig) isProduction() bool {
	return c.AppEnv == "production"
}
