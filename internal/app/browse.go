package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/filter"
	"github.com/blackwell-systems/readshelf/internal/shelf"
	"github.com/blackwell-systems/readshelf/internal/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type browseOptions struct {
	search  string
	moods   []string
	formats []string
	sort    string
	jsonOut bool
}

func newBrowseCmd() *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ls"},
		Short:   "Browse the library (interactive TUI or text output)",
		Example: `  readshelf browse
  readshelf browse --mood funny --mood "short reads" --sort under-100
  readshelf browse --search dragon --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.search, "search", "", "Fuzzy search over title, author, summary and moods")
	cmd.Flags().StringArrayVar(&opts.moods, "mood", nil, "Only show books with this mood (repeatable)")
	cmd.Flags().StringArrayVar(&opts.formats, "format", nil, "Only show this format: book, comic, audiobook (repeatable)")
	cmd.Flags().StringVar(&opts.sort, "sort", string(filter.SortNew), "Sort order: new, popular, a-z, under-100")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	return cmd
}

// newPipeline builds a filter pipeline over the active catalog and applies
// the command-line selection to it.
func newPipeline(opts browseOptions) (*filter.Pipeline, error) {
	p := filter.NewPipeline(books.Value(), matcher, logger)

	if opts.search != "" {
		p.SetSearch(opts.search)
	}
	for _, m := range opts.moods {
		if err := p.ToggleMood(m); err != nil {
			p.Close()
			return nil, fmt.Errorf("%w (choose from: %s)", err, strings.Join(catalog.Moods, ", "))
		}
	}
	for _, f := range opts.formats {
		format, err := catalog.ParseFormat(f)
		if err == nil {
			err = p.ToggleFormat(format)
		}
		if err != nil {
			p.Close()
			return nil, err
		}
	}
	if opts.sort != "" {
		s, err := filter.ParseSort(opts.sort)
		if err == nil {
			err = p.SetSort(s)
		}
		if err != nil {
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

func runBrowse(cmd *cobra.Command, opts browseOptions) error {
	p, err := newPipeline(opts)
	if err != nil {
		return err
	}
	defer p.Close()

	if tui.ShouldUseTUI(cmd) {
		browser := tui.BrowserOptions{Pipeline: p, Rand: newRand()}
		if id := sessions.Current().Get(); !id.IsZero() {
			browser.Shelves = shelves
			browser.StudentID = id.StudentID
		}

		result, err := tui.RunBrowser(browser)
		if err != nil {
			return err
		}
		if result.Action != tui.ActionNone && result.Book != nil {
			return handleBrowserAction(result)
		}
		return nil
	}

	results := p.Results().Get()
	if opts.jsonOut {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No books found.")
		return nil
	}
	printBookList(cmd.OutOrStdout(), results, shelves.Shelf().Get())
	return nil
}

// handleBrowserAction executes the action requested from the book browser
func handleBrowserAction(result *tui.BrowserResult) error {
	switch result.Action {
	case tui.ActionShowDetails:
		printBookInfo(*result.Book)
		return nil
	case tui.ActionOpen:
		return openBook(*result.Book)
	}
	return fmt.Errorf("unknown browser action %q", result.Action)
}

func printBookList(w io.Writer, list []catalog.Book, s shelf.Shelf) {
	for _, b := range list {
		tagStr := ""
		if len(b.Tags) > 0 {
			tagStr = " " + color.CyanString("["+strings.Join(b.Tags, ",")+"]")
		}
		mark := ""
		if shelf.IsFavourite(b.ID, s) {
			mark += color.MagentaString(" ♥")
		}
		if shelf.IsReading(b.ID, s) {
			mark += color.GreenString(" ▶")
		}
		fmt.Fprintf(w, "  %-18s  %s%s%s\n",
			color.WhiteString(b.ID),
			b.Title,
			tagStr,
			mark,
		)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
