package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lanyardhq/lanyard/internal/index"
	"github.com/lanyardhq/lanyard/internal/linkcheck"
	"github.com/lanyardhq/lanyard/internal/store"
)

func newCheckCmd() *cobra.Command {
	var external bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the index and check note links",
		Long: `Rescans the notebook, validates the index document (every note listed
exactly once under exactly one category, no dangling entries), and checks
that internal links resolve. With --external, http(s) links are verified
against the live web too.`,
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

			problems := 0
			noteStore := store.NewNoteStore(e.db)

			// Index validation
			if abs := svc.Locate(e.cfg.IndexPath); abs != "" {
				src, err := os.ReadFile(abs)
				if err != nil {
					return err
				}
				notes, err := noteStore.ListAll()
				if err != nil {
					return err
				}
				report, err := index.Validate(src, notes)
				if err != nil {
					return err
				}
				for _, v := range report.Violations {
					fmt.Printf("index: %s: %s %s\n", v.Kind, v.RelPath, v.Detail)
				}
				problems += len(report.Violations)
			} else {
				fmt.Printf("index: document %s not found, skipping validation\n", e.cfg.IndexPath)
			}

			// Link check
			checker := linkcheck.New(
				store.NewLinkStore(e.db), svc.Locate,
				e.cfg.CheckWorkers, time.Duration(e.cfg.CheckTimeoutSec)*time.Second, e.logger,
			)
			report, err := checker.Run(cmd.Context(), external)
			if err != nil {
				return err
			}
			for _, r := range report.Results {
				if r.OK {
					continue
				}
				fmt.Printf("link: %s:%d: %s (%s)\n", r.NotePath, r.Line, r.Target, r.Error)
			}
			problems += report.Broken

			fmt.Printf("checked %d links (%d skipped)\n", report.Checked, report.Skipped)
			if problems > 0 {
				return fmt.Errorf("%d problems found", problems)
			}
			fmt.Println("notebook is consistent")
			return nil
		},
	}

	cmd.Flags().BoolVar(&external, "external", false, "also check external http(s) links")
	return cmd
}
