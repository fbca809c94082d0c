package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/shelf"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const relatedLimit = 3

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <id>",
		Short: "Show details, reflection prompts and related books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := findBook(args[0])
			if err != nil {
				return err
			}
			printBookInfo(*b)
			return nil
		},
	}
}

func printBookInfo(b catalog.Book) {
	header("Book: %s", b.ID)
	printField("title", b.Title)
	printField("author", b.Author)
	printField("format", string(b.Format))
	if n, ok := b.PageCount(); ok {
		printField("pages", fmt.Sprintf("%d", n))
	}
	if len(b.Tags) > 0 {
		printField("moods", strings.Join(b.Tags, ", "))
	}
	if !b.CreatedAt.IsZero() {
		printField("added", b.CreatedAt.Format("2006-01-02"))
	}
	if b.DriveURL != "" {
		printField("link", b.DriveURL)
	}
	fmt.Println()
	fmt.Println("  " + b.Summary)

	if id := sessions.Current().Get(); !id.IsZero() {
		s := shelves.Shelf().Get()
		var on []string
		if shelf.IsFavourite(b.ID, s) {
			on = append(on, color.MagentaString("favourite"))
		}
		if shelf.IsReading(b.ID, s) {
			on = append(on, color.GreenString("reading"))
		}
		if shelf.IsFinished(b.ID, s) {
			on = append(on, color.GreenString("finished"))
		}
		if len(on) > 0 {
			fmt.Println()
			printField("your shelf", strings.Join(on, ", "))
		}
	}

	if len(b.Prompts) > 0 {
		fmt.Println()
		header("When you finish:")
		for _, p := range b.Prompts {
			fmt.Printf("  %-16s %s %s\n", color.CyanString(p.ID), p.Label,
				color.New(color.Faint).Sprintf("(%s)", wordBounds(p)))
		}
	}

	if related := catalog.Related(books.Books(), b, relatedLimit, newRand()); len(related) > 0 {
		fmt.Println()
		header("You might also like:")
		for _, r := range related {
			fmt.Printf("  %-18s  %s\n", color.WhiteString(r.ID), r.Title)
		}
	}
}

func wordBounds(p catalog.Prompt) string {
	if p.MaxWords == 0 {
		return fmt.Sprintf("%d+ words", p.MinWords)
	}
	return fmt.Sprintf("%d-%d words", p.MinWords, p.MaxWords)
}
