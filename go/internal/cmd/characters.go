package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dreamteams/go/internal/catalog"
	"github.com/spf13/cobra"
)

// CharactersOptions holds flags for the characters command.
type CharactersOptions struct {
	*RootOptions
	Search string
	Pages  int
	JSON   bool
}

// NewCharactersCommand creates the characters command.
func NewCharactersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CharactersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "characters",
		Short: "List catalog characters",
		Long: `List characters from the Marvel catalog, optionally filtered by a name prefix.

Example:
  dreamteams characters --search Spider
  dreamteams characters --pages 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.RootOptions)
			if err != nil {
				return err
			}
			if err := cfg.ValidateCatalog(); err != nil {
				return err
			}
			setupLogging(cfg.Log)

			app := newCatalog(cfg, clockwork.NewRealClock())
			defer app.Close()

			if err := app.Search(cmd.Context(), opts.Search); err != nil {
				return err
			}
			for page := 1; page < opts.Pages && !app.Snapshot().Cursor.Exhausted; page++ {
				if err := app.LoadMore(cmd.Context()); err != nil {
					return err
				}
			}

			return writeCharacters(cmd.OutOrStdout(), app.Snapshot(), opts.JSON)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "name prefix to search for")
	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "number of pages to fetch")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the snapshot as JSON")

	return cmd
}

func writeCharacters(w io.Writer, snap catalog.Snapshot, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tIMAGE")
	for _, c := range snap.Characters {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.ImageURL)
	}
	fmt.Fprintf(tw, "\n%d of %d shown\n", len(snap.Characters), snap.Cursor.Total)
	return tw.Flush()
}
