package config

import (
	"slices"
	"time"
)

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; changes to the
// remaining fields are listed in RestartRequired.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	ReplyDelayChanged bool
	NewReplyDelay     time.Duration

	ProfilePathChanged bool
	NewProfilePath     string

	// ClassifierChanged and GreetingChanged apply to sessions created after
	// the reload.
	ClassifierChanged bool
	GreetingChanged   bool

	// RestartRequired names changed fields that only take effect on restart.
	RestartRequired []string
}

// Changed reports whether d holds any change at all.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.ReplyDelayChanged || d.ProfilePathChanged ||
		d.ClassifierChanged || d.GreetingChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if od, nd := old.Dialogue.EffectiveReplyDelay(), new.Dialogue.EffectiveReplyDelay(); od != nd {
		d.ReplyDelayChanged = true
		d.NewReplyDelay = nd
	}

	if old.Profile.Path != new.Profile.Path {
		d.ProfilePathChanged = true
		d.NewProfilePath = new.Profile.Path
	}

	d.ClassifierChanged = !classifierEqual(old.Classifier, new.Classifier)
	d.GreetingChanged = old.Dialogue.Greeting != new.Dialogue.Greeting

	if old.Server.ListenAddr != new.Server.ListenAddr {
		d.RestartRequired = append(d.RestartRequired, "server.listen_addr")
	}
	if !slices.Equal(old.Server.AllowedOrigins, new.Server.AllowedOrigins) {
		d.RestartRequired = append(d.RestartRequired, "server.allowed_origins")
	}
	if old.Telemetry.ServiceName != new.Telemetry.ServiceName {
		d.RestartRequired = append(d.RestartRequired, "telemetry.service_name")
	}

	return d
}

func classifierEqual(a, b ClassifierConfig) bool {
	return a.FuzzyThreshold == b.FuzzyThreshold &&
		slices.EqualFunc(a.Rules, b.Rules, func(x, y RuleConfig) bool {
			return x.Intent == y.Intent && slices.Equal(x.Keywords, y.Keywords)
		})
}
