// Package config provides the configuration schema, loader, and hot-reload
// watcher for the Gambit coaching server.
package config

import (
	"log/slog"
	"time"

	"github.com/MrWong99/gambit/internal/intent"
)

// LogLevel controls log verbosity for the Gambit server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l to the corresponding [slog.Level]. Unknown and empty
// levels map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Defaults applied by [Config.ApplyDefaults].
const (
	DefaultListenAddr  = ":8080"
	DefaultReplyDelay  = time.Second
	DefaultServiceName = "gambit"
)

// maxReplyDelay bounds dialogue.reply_delay.
const maxReplyDelay = time.Minute

// Config is the root configuration structure for Gambit.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Dialogue   DialogueConfig   `yaml:"dialogue"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Profile    ProfileConfig    `yaml:"profile"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP API listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Hot-reloadable.
	LogLevel LogLevel `yaml:"log_level"`

	// AllowedOrigins lists the browser origins (e.g. "https://coach.example.com")
	// allowed to call the API and open the transcript stream. "*" allows any.
	// Empty allows same-origin requests only.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DialogueConfig tunes the coaching conversation.
type DialogueConfig struct {
	// ReplyDelay is how long the coach waits before answering. Nil means
	// [DefaultReplyDelay]; zero answers immediately. Hot-reloadable.
	ReplyDelay *time.Duration `yaml:"reply_delay"`

	// Greeting replaces the built-in opening message of new sessions.
	Greeting string `yaml:"greeting"`
}

// EffectiveReplyDelay returns ReplyDelay or the default when unset.
func (d DialogueConfig) EffectiveReplyDelay() time.Duration {
	if d.ReplyDelay == nil {
		return DefaultReplyDelay
	}
	return *d.ReplyDelay
}

// ClassifierConfig extends the built-in intent rules.
type ClassifierConfig struct {
	// FuzzyThreshold enables typo-tolerant keyword matching when > 0.
	// Jaro-Winkler similarity in (0, 1]; 0.9 is a reasonable starting point.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// Rules are appended after the built-in rules, in order.
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig is one extra classifier rule.
type RuleConfig struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

// IntentRules converts the configured rules into classifier rules.
// Call after [Validate]; unknown intents are skipped.
func (c ClassifierConfig) IntentRules() []intent.Rule {
	rules := make([]intent.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		in, err := intent.Parse(r.Intent)
		if err != nil {
			continue
		}
		rules = append(rules, intent.Rule{Intent: in, Keywords: r.Keywords})
	}
	return rules
}

// Build returns a classifier over the built-in rules extended by c.
func (c ClassifierConfig) Build() (*intent.Classifier, error) {
	return intent.New(intent.DefaultRules(),
		intent.WithExtraRules(c.IntentRules()...),
		intent.WithFuzzyThreshold(c.FuzzyThreshold),
	)
}

// ProfileConfig locates the coaching profile.
type ProfileConfig struct {
	// Path is a YAML profile file. Empty uses the built-in demo profile.
	// Hot-reloadable.
	Path string `yaml:"path"`
}

// TelemetryConfig configures OpenTelemetry resource attributes.
type TelemetryConfig struct {
	// ServiceName is reported as service.name. Default: "gambit".
	ServiceName string `yaml:"service_name"`
}

// Default returns a configuration with all defaults applied, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Dialogue.ReplyDelay == nil {
		d := DefaultReplyDelay
		c.Dialogue.ReplyDelay = &d
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
}
