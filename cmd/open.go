package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celestialorigin/celestial-legacy/internal/browser"
	"github.com/celestialorigin/celestial-legacy/internal/config"
	"github.com/celestialorigin/celestial-legacy/internal/record"
	"github.com/celestialorigin/celestial-legacy/internal/store"
)

var openCmd = &cobra.Command{
	Use:   "open <record-id>",
	Short: "Open a stored record's URL in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		r, ok := findRecord(cfg, args[0])
		if !ok {
			return fmt.Errorf("no record with id %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", r.URL)
		return browser.Open(r.URL)
	},
}

func findRecord(cfg *config.Config, id string) (record.Record, bool) {
	for _, st := range cfg.Stores {
		records, _ := store.Load(cfg.StorePath(st))
		for _, r := range records {
			if r.ID == id {
				return r, true
			}
		}
	}
	return record.Record{}, false
}
