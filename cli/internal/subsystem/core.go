package subsystem

import (
	cachev1 "openportal.dev/openportal/configuration/cache/v1"
	httpv1 "openportal.dev/openportal/configuration/http/v1"
	loggingv1 "openportal.dev/openportal/configuration/logging/v1"
	preloadv1 "openportal.dev/openportal/configuration/preload/v1"
	resolversv1 "openportal.dev/openportal/configuration/resolvers/v1"
	genericv1 "openportal.dev/openportal/configuration/v1"
	originv1 "openportal.dev/openportal/repository/spec/v1"
)

// The core subsystems of the portal, registered once at startup.
func init() {
	Register(NewSubsystem(
		"configuration",
		"Configuration sections understood by the portal configuration file.",
		genericv1.Scheme,
		httpv1.Scheme,
		cachev1.Scheme,
		resolversv1.Scheme,
		preloadv1.Scheme,
		loggingv1.Scheme,
	))
	Register(NewSubsystem(
		"origin",
		"Origin specifications a resolver rule can route pages to.",
		originv1.Scheme,
	))
}
