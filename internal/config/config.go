// Package config provides configuration loading for the tlsdiag CLI and
// library defaults. Files are YAML; every key can be overridden through the
// environment with the TLSDIAG_ prefix.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the full configuration surface.
type Config struct {
	// Protocol is the TLS protocol name to create contexts for.
	Protocol string `mapstructure:"protocol" validate:"omitempty,tls_protocol"`
	// LogLevel gates diagnostic output: debug, info or warn.
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn"`
	// Timeout bounds connection attempts.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	// CAFile is a PEM file of trust anchors. Empty means system roots.
	CAFile string `mapstructure:"ca_file" validate:"omitempty,file"`
	// CertFile and KeyFile configure an optional client identity; setting
	// one requires the other.
	CertFile string `mapstructure:"cert_file" validate:"required_with=KeyFile,omitempty,file"`
	KeyFile  string `mapstructure:"key_file" validate:"required_with=CertFile,omitempty,file"`
	// ServerName overrides the SNI hint; defaults to the dialed host.
	ServerName string `mapstructure:"server_name"`
	// ClientAuth sets the server-side client-certificate requirement.
	ClientAuth string `mapstructure:"client_auth" validate:"omitempty,oneof=none want need"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() *Config {
	return &Config{
		Protocol:   "TLS",
		LogLevel:   "info",
		Timeout:    10 * time.Second,
		ClientAuth: "none",
	}
}

// Load reads configuration from the given file path (optional, "" skips the
// file) and the TLSDIAG_ environment, validates it, and returns it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TLSDIAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("protocol", defaults.Protocol)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("client_auth", defaults.ClientAuth)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a configuration against its struct tags plus the custom
// TLS validators.
func Validate(cfg *Config) error {
	if err := newValidator().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("tls_protocol", validateTLSProtocol)
	return validate
}

func validateTLSProtocol(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "TLS", "TLSv1.2", "TLSv1.3":
		return true
	default:
		return false
	}
}
