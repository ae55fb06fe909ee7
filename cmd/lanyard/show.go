package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/lanyardhq/lanyard/internal/store"
)

func newShowCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show <note>",
		Short: "Render a session note in the terminal",
		Long: `Renders a note with terminal styling. The argument is a note path
relative to the notebook root (as listed by search results), or a note ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			svc := newCatalog(e)
			noteStore := store.NewNoteStore(e.db)

			relPath := args[0]
			if n, err := noteStore.GetByID(args[0]); err == nil && n != nil {
				relPath = n.RelPath
			}

			abs := svc.Locate(relPath)
			if abs == "" {
				return fmt.Errorf("note not found: %s", args[0])
			}

			data, err := os.ReadFile(abs)
			if err != nil {
				return err
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("init renderer: %w", err)
			}

			out, err := renderer.Render(string(data))
			if err != nil {
				return fmt.Errorf("render note: %w", err)
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 100, "wrap width")
	return cmd
}
