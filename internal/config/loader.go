package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/gambit/internal/intent"
)

// Environment variables that override file values.
const (
	EnvConfigPath = "GAMBIT_CONFIG"
	EnvListenAddr = "GAMBIT_LISTEN_ADDR"
	EnvLogLevel   = "GAMBIT_LOG_LEVEL"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and
// validates the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadBytes is LoadFromReader over an in-memory file.
func loadBytes(data []byte) (*Config, error) {
	return LoadFromReader(bytes.NewReader(data))
}

// ApplyEnv overrides cfg with the GAMBIT_* environment variables found by
// lookup (normally [os.LookupEnv]) and re-validates it.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		cfg.Server.ListenAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Server.LogLevel = LogLevel(v)
	}
	return Validate(cfg)
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.ListenAddr); err != nil {
			errs = append(errs, fmt.Errorf("server.listen_addr %q is invalid: %w", cfg.Server.ListenAddr, err))
		}
	}

	for i, o := range cfg.Server.AllowedOrigins {
		if o == "*" {
			continue
		}
		u, err := url.Parse(o)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || (u.Path != "" && u.Path != "/") {
			errs = append(errs, fmt.Errorf("server.allowed_origins[%d] %q must be \"*\" or scheme://host[:port]", i, o))
		}
	}

	// Dialogue
	if d := cfg.Dialogue.ReplyDelay; d != nil && (*d < 0 || *d > maxReplyDelay) {
		errs = append(errs, fmt.Errorf("dialogue.reply_delay %s is out of range [0s, %s]", *d, maxReplyDelay))
	}

	// Classifier
	if t := cfg.Classifier.FuzzyThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("classifier.fuzzy_threshold %.2f is out of range [0, 1]", t))
	} else if t > 0 && t < 0.8 {
		slog.Warn("classifier.fuzzy_threshold below 0.8 matches unrelated words", "fuzzy_threshold", t)
	}
	for i, r := range cfg.Classifier.Rules {
		prefix := fmt.Sprintf("classifier.rules[%d]", i)
		in, err := intent.Parse(r.Intent)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.intent %q is invalid; valid values: %v", prefix, r.Intent, intent.All()))
			continue
		}
		if in == intent.Generic {
			errs = append(errs, fmt.Errorf("%s.intent %q is the fallback and cannot have keywords", prefix, in))
		}
		if len(r.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("%s.keywords: at least one keyword is required", prefix))
		}
		for j, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Errorf("%s.keywords[%d] is empty", prefix, j))
			}
		}
	}

	// Profile
	if p := cfg.Profile.Path; p != "" {
		if _, err := os.Stat(p); err != nil {
			slog.Warn("profile.path is not readable yet; the built-in profile stays active until it is", "path", p, "err", err)
		}
	}

	return errors.Join(errs...)
}
