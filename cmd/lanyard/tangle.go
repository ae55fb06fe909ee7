package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanyardhq/lanyard/internal/store"
	"github.com/lanyardhq/lanyard/internal/tangle"
)

func newTangleCmd() *cobra.Command {
	var outDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "tangle",
		Short: "Extract embedded snippets into a demo project tree",
		Long: `Writes every code block carrying a tangle directive (e.g. a fence like
"ts tangle:src/main.ts") out under the output directory, so the examples
embedded in session notes become a runnable project.`,
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

			if outDir == "" {
				outDir = e.cfg.TangleOutDir
			}

			tangler := tangle.New(store.NewSnippetStore(e.db), e.logger)
			result, err := tangler.Run(outDir, dryRun)
			if err != nil {
				return err
			}

			for _, f := range result.Files {
				action := "wrote"
				if dryRun {
					action = "would write"
				}
				fmt.Printf("%s %s (%d snippets, %d bytes)\n", action, f.Path, f.Snippets, f.Bytes)
			}
			if result.Skipped > 0 {
				fmt.Printf("skipped %d snippets with unsafe paths\n", result.Skipped)
			}
			if len(result.Files) == 0 {
				fmt.Println("no tangleable snippets found")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the plan without writing files")
	return cmd
}
