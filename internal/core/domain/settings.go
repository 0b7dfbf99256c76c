package domain

// StdoutPath is the output path sentinel meaning "write the feed to
// standard output and do not touch the filesystem".
const StdoutPath = "-"

// Default settings applied when neither flags nor the config file
// provide a value.
const (
	DefaultSearchMode = "Books"
	DefaultLocale     = "us"
	DefaultOutputPath = StdoutPath
)

// Settings is the explicit configuration value object passed into the
// store, the search client, the poller and the feed builder. It is
// assembled once by the CLI from the config file and flags; components
// never consult global option state.
type Settings struct {
	// StorePath is the SQLite database file. Empty selects the
	// default under the invoking user's home directory.
	StorePath string

	// SearchMode is the upstream search category (e.g. "Books").
	SearchMode string

	// Locale selects the upstream endpoint/storefront.
	Locale string

	// AffiliateTag, when non-empty, is appended to every product link
	// as a referrer query parameter.
	AffiliateTag string

	// OutputPath is the feed destination: a file path, or StdoutPath.
	OutputPath string

	// Endpoint overrides the upstream search API base URL.
	// Empty selects the built-in default.
	Endpoint string

	// Verbose enables diagnostic logging to stderr.
	Verbose bool
}

// DefaultSettings returns a Settings populated with built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		SearchMode: DefaultSearchMode,
		Locale:     DefaultLocale,
		OutputPath: DefaultOutputPath,
	}
}
