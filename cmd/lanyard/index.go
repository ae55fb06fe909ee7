package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lanyardhq/lanyard/internal/index"
	"github.com/lanyardhq/lanyard/internal/store"
)

func newIndexCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Generate the index document from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			svc := newCatalog(e)
			if _, err := svc.Sync(); err != nil {
				return err
			}

			notes, err := store.NewNoteStore(e.db).ListAll()
			if err != nil {
				return err
			}

			doc := index.Build(notes, e.cfg.CategoryOrder)

			if !write {
				fmt.Print(doc)
				return nil
			}

			// Write next to the notes: prefer the existing index file,
			// otherwise place it in the first note directory.
			out := svc.Locate(e.cfg.IndexPath)
			if out == "" {
				out = filepath.Join(e.cfg.NoteDirs[0], filepath.FromSlash(e.cfg.IndexPath))
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write index: %w", err)
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the index document instead of printing it")
	return cmd
}
