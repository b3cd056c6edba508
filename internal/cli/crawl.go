package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xab-mack/optistats/internal/cache"
	"github.com/xab-mack/optistats/internal/config"
	"github.com/xab-mack/optistats/internal/crawler"
)

func newCrawlCmd(opts *Options) *cobra.Command {
	var (
		start, end int
		outDir     string
	)
	cmd := &cobra.Command{
		Use:   "crawl <addresses.json>",
		Short: "Download verified contract sources for a list of addresses",
		Long: "Fetches the verified source of addresses[start:end] from the explorer API and writes\n" +
			"<address>.sol files. The API key is read from " + config.APIKeyEnv + " or a .env file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			wd, _ := os.Getwd()
			key := config.APIKey(wd)
			if key == "" {
				return fmt.Errorf("%s is not set", config.APIKeyEnv)
			}
			addrs, err := crawler.LoadAddresses(args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Crawler.OutputDir
			}
			store, err := cache.New(outDir)
			if err != nil {
				return err
			}
			stats, err := crawler.New(cfg.Crawler, key, store).Crawl(cmd.Context(), addrs, start, end)
			fmt.Fprintf(cmd.OutOrStdout(), "requested %d, fetched %d, cached %d, empty %d, failed %d\n", //nolint:errcheck
				stats.Requested, stats.Fetched, stats.Cached, stats.Empty, stats.Failed)
			return err
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "First index to crawl")
	cmd.Flags().IntVar(&end, "end", -1, "Index to stop before (-1 for the end of the list)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for .sol files (default from config)")
	return cmd
}
