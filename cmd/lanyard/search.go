package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/search"
	"github.com/lanyardhq/lanyard/internal/store"
)

func newSearchCmd() *cobra.Command {
	var category, tag string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the note catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			searcher := search.NewSearcher(
				store.NewSearchStore(e.db),
				e.cfg.DefaultMinScore, e.cfg.DefaultMaxResults, e.cfg.RecencyBoost,
			)

			resp, err := searcher.Search(&models.SearchRequest{
				Query:      strings.Join(args, " "),
				Category:   category,
				Tag:        tag,
				MaxResults: limit,
			})
			if err != nil {
				return err
			}

			if len(resp.Results) == 0 {
				fmt.Println("no matches")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tTITLE\tPATH\tPREVIEW")
			for _, r := range resp.Results {
				fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\n", r.Score, r.Title, r.RelPath, clip(r.Preview, 60))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	cmd.Flags().StringVar(&tag, "tag", "", "restrict to one tag")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default from config)")
	return cmd
}

func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
