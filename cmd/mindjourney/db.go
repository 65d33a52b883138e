package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/mindjourney"
	"github.com/eringen/mindjourney/docstore"
)

func openLocalStore() (*docstore.Store, error) {
	cfg, err := mindjourney.LoadConfig()
	if err != nil {
		return nil, err
	}
	return docstore.Open(cfg.DatabasePath)
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back local store migrations",
		Long:      "Applies every pending migration (up, the default) or rolls back the most recent one (down) on the SQLite store at DATABASE_PATH.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLocalStore()
			if err != nil {
				return err
			}
			defer store.Close()

			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			if direction == "down" {
				err = store.MigrateDown()
			} else {
				err = store.MigrateUp()
			}
			if err != nil {
				return err
			}

			version, dirty, err := store.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s: version %d (dirty=%t)\n", direction, version, dirty)
			return nil
		},
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample posts and comments into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mindjourney.LoadConfig()
			if err != nil {
				return err
			}
			store, err := docstore.NewStore(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Seed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", cfg.DatabasePath)
			return nil
		},
	}
}
