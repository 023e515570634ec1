package config

const (
	defaultCacheDir           = "~/.local/share/setlist"
	defaultLogDir             = "~/.local/share/setlist/logs"
	defaultFetchBinary        = "yt-dlp"
	defaultCommentTimeout     = 120
	defaultDescriptionTimeout = 60
	defaultMinRequestInterval = 2
	defaultMaxComments        = 100
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

var defaultKeywords = []string{"setlist", "set list", "timestamp", "セトリ", "セットリスト"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Fetch: Fetch{
			Binary:             defaultFetchBinary,
			CommentTimeout:     defaultCommentTimeout,
			DescriptionTimeout: defaultDescriptionTimeout,
			MinRequestInterval: defaultMinRequestInterval,
			MaxComments:        defaultMaxComments,
		},
		Curation: Curation{
			Keywords: append([]string(nil), defaultKeywords...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
