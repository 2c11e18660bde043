package driven

import "github.com/custodia-labs/repochat/internal/core/domain"

// SettingsProvider supplies validated application settings.
type SettingsProvider interface {
	// Settings returns the loaded settings.
	Settings() domain.Settings

	// Path returns the file the settings were read from.
	Path() string
}

// BuildMetrics records index build outcomes.
type BuildMetrics interface {
	// ObserveBuild records one repository build.
	ObserveBuild(report domain.BuildReport)
}

// ChatMetrics records chat traffic.
type ChatMetrics interface {
	// ObserveMessage records one handled message by profile and outcome.
	ObserveMessage(profile domain.ChatProfile, kind domain.ReplyKind)

	// ObserveRetrieval records the number of fused chunks for a query.
	ObserveRetrieval(chunks int)
}
