// Package config loads environment-based configuration into tagged
// structs.
//
// Each component declares its own Config struct with `env` tags and loads
// it through the generic Load/MustLoad helpers. A .env file, when present,
// is read once per process; each config type is parsed once and cached so
// repeated loads across packages are cheap and consistent.
//
//	var cfg tokens.Config
//	config.MustLoad(&cfg)
package config
