package version

// Set at build time with -ldflags "-X danmaku/internal/version.VERSION=..."
var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
