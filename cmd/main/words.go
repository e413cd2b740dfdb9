package main

import (
	"fmt"
	"strings"

	"github.com/CTAG07/Glossa/pkg/dictionary"
	"github.com/spf13/cobra"
)

func newWordsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "words [word...]",
		Short: "List dictionary words or show their definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.loadDictionary(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if a.format == formatJSON {
					return printJSON(out, d.Names())
				}
				for _, name := range d.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			entries := make([]dictionary.Entry, 0, len(args))
			var missing []string
			for _, name := range args {
				e, ok := d.Get(name)
				if !ok {
					missing = append(missing, name)
					continue
				}
				entries = append(entries, e)
			}

			if a.format == formatJSON {
				if err = printJSON(out, entries); err != nil {
					return err
				}
			} else {
				for _, e := range entries {
					if e.Type != "" {
						fmt.Fprintf(out, "%s (%s)\n", e.Name, e.Type)
					} else {
						fmt.Fprintln(out, e.Name)
					}
					for i, def := range e.Definitions {
						fmt.Fprintf(out, "  %d. %s\n", i+1, def)
					}
				}
			}

			if len(missing) > 0 {
				return fmt.Errorf("not in dictionary: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
