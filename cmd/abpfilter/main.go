package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/katari-dev/abpfilter/internal/config"
	"github.com/katari-dev/abpfilter/internal/fetcher"
	"github.com/katari-dev/abpfilter/internal/filter"
	"github.com/katari-dev/abpfilter/internal/store"
)

var (
	cfgFile string
	cfg     config.Config
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "abpfilter",
	Short: "Ingest and query an Adblock Plus style request filtering store",
	Long: `abpfilter ingests Adblock Plus filter lists into a domain-indexed
store and answers lookups against it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Load a filter list (local file or --url) into the store",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIngest,
}

var queryCmd = &cobra.Command{
	Use:   "query <host>",
	Short: "Look up the filters that apply to host",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	RunE:  runInit,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print store row counts and cache size",
	RunE:  runStats,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./configs/filter_rules.toml)")

	ingestCmd.Flags().String("url", "", "fetch the filter list from this URL instead of a local file")
	ingestCmd.Flags().Int16("category", 1, "category id to stamp on every ingested rule")
	ingestCmd.Flags().Bool("overwrite", false, "drop and recreate the store before ingesting")

	queryCmd.Flags().Bool("whitelist", false, "query the whitelist (exception) partition instead of blacklist")
	queryCmd.Flags().BoolP("verbose", "v", false, "print each matched filter's source text")

	rootCmd.AddCommand(ingestCmd, queryCmd, initCmd, statsCmd)
}

func openConfiguredStore(overwrite bool) (*store.Store, error) {
	opts := store.CacheOptions{
		Synchronous:    cfg.Store.Synchronous,
		JournalMode:    cfg.Store.JournalMode,
		SharedCache:    cfg.Store.SharedCache,
		PageCacheKB:    cfg.Store.PageCacheKB,
		AutomaticIndex: cfg.Store.AutomaticIndex,
	}
	ttl := cfg.Store.CacheTTL
	if cfg.Cache.TTL > 0 {
		ttl = cfg.Cache.TTL
	}
	return store.Open(cfg.Store.Path, overwrite, false, opts, ttl)
}

func runIngest(cmd *cobra.Command, args []string) error {
	remoteURL, _ := cmd.Flags().GetString("url")
	categoryID, _ := cmd.Flags().GetInt16("category")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	var data []byte
	switch {
	case remoteURL != "":
		if _, err := url.Parse(remoteURL); err != nil {
			return fmt.Errorf("invalid --url: %w", err)
		}
		f := fetcher.New(cfg.HTTP)
		fetched, err := f.Fetch(context.Background(), remoteURL)
		if err != nil {
			return err
		}
		data = fetched
	case len(args) == 1:
		read, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		data = read
	default:
		return fmt.Errorf("ingest requires a file argument or --url")
	}

	s, err := openConfiguredStore(overwrite)
	if err != nil {
		return err
	}
	defer s.Close()

	loaded, failed, err := s.Ingest(strings.NewReader(string(data)), categoryID)
	if err != nil {
		return err
	}
	if err := s.FinalizeForRead(); err != nil {
		return err
	}

	fmt.Printf("loaded=%d failed=%d\n", loaded, failed)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	wantWhitelist, _ := cmd.Flags().GetBool("whitelist")
	verbose, _ := cmd.Flags().GetBool("verbose")
	host := args[0]

	s, err := openConfiguredStore(false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.FinalizeForRead(); err != nil {
		return err
	}

	filters, err := s.GetFiltersForDomain(host, wantWhitelist)
	if err != nil {
		return err
	}

	fmt.Printf("%d filter(s) for %s (whitelist=%t)\n", len(filters), host, wantWhitelist)
	if verbose {
		for _, uf := range filters {
			fmt.Println(" ", filter.DebugDump(uf))
		}
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := "./configs/filter_rules.toml"
	if cfgFile != "" {
		configPath = cfgFile
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	defaultConfig := `# abpfilter configuration

[store]
path = "./abpfilter.db"
synchronous = "OFF"
journal_mode = "OFF"
shared_cache = true
page_cache_kb = 64000
automatic_index = false
cache_ttl = "10m"

[cache]
ttl = "10m"

[http]
timeout = "30s"
retries = 3

strict_selectors = false

# Named remote filter lists. No abpfilter command reads this table:
# ` + "`abpfilter ingest --url`" + ` takes its URL from the command line.

[[lists]]
name = "easylist"
url = "https://easylist.to/easylist/easylist.txt"
enabled = true

[[lists]]
name = "easyprivacy"
url = "https://easylist.to/easylist/easyprivacy.txt"
enabled = true
`

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return err
	}

	fmt.Printf("Created config file: %s\n", configPath)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openConfiguredStore(false)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("blacklist_rows=%d whitelist_rows=%d cache_entries=%d\n",
		st.BlacklistRows, st.WhitelistRows, s.CacheLen())
	return nil
}
