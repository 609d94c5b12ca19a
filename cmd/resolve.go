package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/celestialorigin/celestial-legacy/internal/feed"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <handle>",
	Short: "Look up the channel id behind a YouTube handle",
	Long: `Fetch a handle page (https://www.youtube.com/@name, or just @name) and print
the channel id and feed URL to put in the config.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fetcher := feed.NewFetcher(nil, cfg.FetchTimeoutDuration())
		id, err := fetcher.ResolveChannelID(cmd.Context(), handleURL(args[0]))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printField(out, "Channel", id)
		printField(out, "Feed", feed.YouTubeFeedURL(id))
		return nil
	},
}

// handleURL accepts a full handle URL, "@name" or "name".
func handleURL(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg
	}
	return "https://www.youtube.com/@" + strings.TrimPrefix(arg, "@")
}
