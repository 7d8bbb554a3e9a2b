// Package config loads coldvault's environment-driven settings via
// spf13/viper, binding env vars with defaults into a typed struct.
package config
