package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keywatch/keywatch/internal/adapters/driven/config/file"
	"github.com/keywatch/keywatch/internal/adapters/driven/search/catalog"
	"github.com/keywatch/keywatch/internal/adapters/driven/storage/sqlite"
	"github.com/keywatch/keywatch/internal/core/domain"
	"github.com/keywatch/keywatch/internal/core/ports/driven"
	"github.com/keywatch/keywatch/internal/core/services"
	"github.com/keywatch/keywatch/internal/feed"
	"github.com/keywatch/keywatch/internal/logger"
)

var (
	pollStore      string
	pollMode       string
	pollLocale     string
	pollTag        string
	pollOutput     string
	pollToken      string
	pollSecret     string
	pollTokenFile  string
	pollSecretFile string
)

var pollCmd = &cobra.Command{
	Use:   "poll <keyword>...",
	Short: "Poll searches and emit a feed of newly seen items",
	Long: `Fetches the current search results for every keyword, merges them into
the local item database, and emits an RSS feed containing only the
items observed for the first time during this run.

Re-running with unchanged upstream results produces no feed: every item
is remembered by its first observation. The same item found under two
different keywords is tracked and reported once per keyword.

With --output -, the feed is written to standard output. With a file
path, the feed is written to <path>.tmp and renamed into place, so a
previously published feed is never damaged by a failed run. When no new
items were observed, no document is produced at all.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().StringVar(&pollStore, "store", "",
		"item database path (default ~/.keywatch/keywatch.db)")
	pollCmd.Flags().StringVar(&pollMode, "mode", domain.DefaultSearchMode,
		"search mode/category")
	pollCmd.Flags().StringVar(&pollLocale, "locale", domain.DefaultLocale,
		"storefront locale")
	pollCmd.Flags().StringVar(&pollTag, "tag", "",
		"affiliate tag appended to product links")
	pollCmd.Flags().StringVarP(&pollOutput, "output", "o", domain.DefaultOutputPath,
		"feed destination path, or - for stdout")
	pollCmd.Flags().StringVar(&pollToken, "token", "", "API token")
	pollCmd.Flags().StringVar(&pollSecret, "secret", "", "API secret")
	pollCmd.Flags().StringVar(&pollTokenFile, "token-file", "",
		"file containing the API token (first line)")
	pollCmd.Flags().StringVar(&pollSecretFile, "secret-file", "",
		"file containing the API secret (first line)")
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	cfg, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	settings := pollSettings(cmd, cfg)
	logger.SetVerbose(settings.Verbose)
	logger.Debug("config: %s", cfg.Path())

	loadEnvFile()
	token, err := resolveCredential(pollToken, pollTokenFile, EnvToken, "auth.token", cfg)
	if err != nil {
		// No search attempt without credentials; show usage instead.
		_ = cmd.Usage()
		return fmt.Errorf("token: %w", err)
	}
	secret, err := resolveCredential(pollSecret, pollSecretFile, EnvSecret, "auth.secret", cfg)
	if err != nil {
		_ = cmd.Usage()
		return fmt.Errorf("secret: %w", err)
	}

	store, err := sqlite.NewStore(settings.StorePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	client := catalog.NewClient(settings, token, secret)
	poller := services.NewPoller(store, client, settings.SearchMode)

	started := time.Now().UTC()
	items, err := poller.Poll(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}

	meta := feed.Meta{
		Keywords:     args,
		PageLink:     client.SearchPageURL(args[0], settings.SearchMode),
		AffiliateTag: settings.AffiliateTag,
		GeneratedAt:  started,
	}
	return publish(cmd, settings, meta, items)
}

// pollSettings assembles the configuration value object: built-in
// defaults, overridden by the config file, overridden by flags.
func pollSettings(cmd *cobra.Command, cfg driven.ConfigStore) domain.Settings {
	s := domain.DefaultSettings()

	if v := cfg.GetString("store.path"); v != "" {
		s.StorePath = v
	}
	if v := cfg.GetString("search.mode"); v != "" {
		s.SearchMode = v
	}
	if v := cfg.GetString("search.locale"); v != "" {
		s.Locale = v
	}
	if v := cfg.GetString("search.endpoint"); v != "" {
		s.Endpoint = v
	}
	if v := cfg.GetString("feed.tag"); v != "" {
		s.AffiliateTag = v
	}
	if v := cfg.GetString("feed.output"); v != "" {
		s.OutputPath = v
	}
	if cfg.GetBool("verbose") {
		s.Verbose = true
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		s.StorePath = pollStore
	}
	if flags.Changed("mode") {
		s.SearchMode = pollMode
	}
	if flags.Changed("locale") {
		s.Locale = pollLocale
	}
	if flags.Changed("tag") {
		s.AffiliateTag = pollTag
	}
	if flags.Changed("output") {
		s.OutputPath = pollOutput
	}
	if rootVerbose {
		s.Verbose = true
	}

	return s
}

// publish renders and writes the feed. Zero new items is a deliberate
// no-op: nothing is written anywhere and any prior feed stays as it
// was.
func publish(cmd *cobra.Command, settings domain.Settings, meta feed.Meta, items []domain.Item) error {
	if len(items) == 0 {
		logger.Info("no new items; nothing published")
		return nil
	}

	f := feed.Build(meta, items)

	if settings.OutputPath == domain.StdoutPath {
		return feed.WriteTo(f, cmd.OutOrStdout())
	}

	if err := feed.WriteFile(f, settings.OutputPath); err != nil {
		return fmt.Errorf("publishing feed: %w", err)
	}
	logger.Info("published %d item(s) to %s", len(f.Items), settings.OutputPath)
	return nil
}
