package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanyardhq/lanyard/internal/catalog"
	"github.com/lanyardhq/lanyard/internal/store"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan note directories and sync the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			svc := newCatalog(e)
			result, err := svc.Sync()
			if err != nil {
				return err
			}

			fmt.Printf("scanned %d notes: %d added, %d updated, %d removed",
				result.Found, result.Added, result.Updated, result.Removed)
			if result.Errors > 0 {
				fmt.Printf(", %d errors", result.Errors)
			}
			fmt.Println()
			return nil
		},
	}
}

// newCatalog wires a catalog service for CLI use (no event stream).
func newCatalog(e *env) *catalog.Service {
	return catalog.NewService(
		store.NewNoteStore(e.db),
		store.NewLinkStore(e.db),
		store.NewSnippetStore(e.db),
		e.cfg.NoteDirs,
		e.cfg.IndexPath,
		nil,
		e.logger,
	)
}
