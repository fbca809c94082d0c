package app

import (
	"fmt"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSurpriseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "surprise",
		Short: "Pick a random book from the whole library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(browseOptions{})
			if err != nil {
				return err
			}
			defer p.Close()

			p.SurpriseMe()
			pick := catalog.Random(p.Results().Get(), newRand())
			if pick == nil {
				warn("The library is empty.")
				return nil
			}
			header("How about this one?")
			printBookInfo(*pick)
			return nil
		},
	}
}

func newMoodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moods",
		Short: "List mood tags with how many books carry each",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			counts := catalog.MoodCounts(books.Books())
			w := cmd.OutOrStdout()
			for i, m := range catalog.Moods {
				fmt.Fprintf(w, "  %d  %-14s %s\n", i+1, color.CyanString(m), pluralBooks(counts[m]))
			}
		},
	}
}

func pluralBooks(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}
