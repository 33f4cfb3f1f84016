package config

const (
	defaultLogDir  = "~/.local/share/marquee/logs"
	defaultAPIBind = "127.0.0.1:7489"

	defaultPlexLibrary        = "Movies"
	defaultPlexRequestTimeout = 10

	defaultNtfyRequestTimeout = 10

	defaultMinSimilarity  = 0.5
	defaultMaxResults     = 10
	defaultMinTitleLength = 2
	defaultMaxTitleLength = 100
	defaultMaxShown       = 10

	defaultRateLimitWindowSeconds = 60
	defaultRateLimitMaxRequests   = 5

	defaultSelectionMaxOptions     = 5
	defaultSelectionTimeoutSeconds = 60
	defaultSelectionSweepSeconds   = 30

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Plex: Plex{
			Library:        defaultPlexLibrary,
			RequestTimeout: defaultPlexRequestTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			Requests:       true,
			Errors:         true,
		},
		Matching: Matching{
			MinSimilarity:  defaultMinSimilarity,
			MaxResults:     defaultMaxResults,
			MinTitleLength: defaultMinTitleLength,
			MaxTitleLength: defaultMaxTitleLength,
			MaxShown:       defaultMaxShown,
		},
		RateLimit: RateLimit{
			WindowSeconds: defaultRateLimitWindowSeconds,
			MaxRequests:   defaultRateLimitMaxRequests,
		},
		Selection: Selection{
			MaxOptions:           defaultSelectionMaxOptions,
			TimeoutSeconds:       defaultSelectionTimeoutSeconds,
			SweepIntervalSeconds: defaultSelectionSweepSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
