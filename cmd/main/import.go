package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dictionary.csv>",
		Short: "Import a CSV dictionary into the database",
		Long: `Reads a CSV dictionary and saves it to the database. Words already stored
have their definitions replaced; other stored words are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readCSVFile(args[0], a.cfg.Lowercase)
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if err = store.Save(cmd.Context(), d); err != nil {
				return fmt.Errorf("failed to save dictionary: %w", err)
			}

			words, defs, err := store.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to count dictionary: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s words. Database now holds %s words and %s definitions.\n",
				humanize.Comma(int64(d.Len())), humanize.Comma(int64(words)), humanize.Comma(int64(defs)))
			return nil
		},
	}
}
