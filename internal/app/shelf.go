package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/shelf"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// shelfMutation runs fn for the signed-in reader after checking that id is
// in the catalog.
func shelfMutation(id string, fn func(b *catalog.Book, studentID string)) error {
	reader, err := currentIdentity()
	if err != nil {
		return err
	}
	b, err := findBook(id)
	if err != nil {
		return err
	}
	fn(b, reader.StudentID)
	return nil
}

func newFavCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage your favourites",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id>",
			Short: "Add a book to your favourites",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return shelfMutation(args[0], func(b *catalog.Book, sid string) {
					shelves.AddToFavourites(b.ID, sid)
					ok("Added %q to your favourites", b.Title)
				})
			},
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"remove"},
			Short:   "Remove a book from your favourites",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return shelfMutation(args[0], func(b *catalog.Book, sid string) {
					if !shelf.IsFavourite(b.ID, shelves.Shelf().Get()) {
						warn("%q is not in your favourites", b.Title)
						return
					}
					shelves.RemoveFromFavourites(b.ID, sid)
					ok("Removed %q from your favourites", b.Title)
				})
			},
		},
	)
	return cmd
}

func newReadingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reading",
		Short: "Manage your reading list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id>",
			Short: "Add a book to your reading list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return shelfMutation(args[0], func(b *catalog.Book, sid string) {
					shelves.AddToReading(b.ID, sid)
					ok("Added %q to your reading list", b.Title)
				})
			},
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"remove"},
			Short:   "Remove a book from your reading list",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return shelfMutation(args[0], func(b *catalog.Book, sid string) {
					if !shelf.IsReading(b.ID, shelves.Shelf().Get()) {
						warn("%q is not on your reading list", b.Title)
						return
					}
					shelves.RemoveFromReading(b.ID, sid)
					ok("Removed %q from your reading list", b.Title)
				})
			},
		},
		&cobra.Command{
			Use:   "open <id>",
			Short: "Open a book's reading link",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := findBook(args[0])
				if err != nil {
					return err
				}
				return openBook(*b)
			},
		},
	)
	return cmd
}

func newFinishCmd() *cobra.Command {
	var answers []string

	cmd := &cobra.Command{
		Use:   "finish <id>",
		Short: "Record that you finished a book, with your reflections",
		Long: `Records a finished book. Every reflection prompt of the book must be
answered once with --answer <prompt>=<text>, within the prompt's word
limits. See 'readshelf info <id>' for the prompts.`,
		Example: `  readshelf finish joke-book --answer loved-line="The one about the cow ..."`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := currentIdentity()
			if err != nil {
				return err
			}
			b, err := findBook(args[0])
			if err != nil {
				return err
			}

			responses, err := parseAnswers(answers)
			if err != nil {
				return err
			}

			c, err := shelves.RecordCompletion(b.ID, reader.StudentID, responses)
			if errors.Is(err, shelf.ErrReflection) {
				for _, p := range b.Prompts {
					warn("%s: %s (%s)", p.ID, p.Label, wordBounds(p))
				}
				return err
			}
			if err != nil {
				return friendlyValidation(err)
			}

			if shelf.IsReading(b.ID, shelves.Shelf().Get()) {
				shelves.RemoveFromReading(b.ID, reader.StudentID)
			}
			words := 0
			for _, r := range c.Responses {
				words += r.WordCount
			}
			ok("Finished %q! %d words of reflection saved.", b.Title, words)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&answers, "answer", nil, "Reflection as <prompt>=<text> (repeatable)")
	return cmd
}

// parseAnswers splits each "<prompt>=<text>" flag value.
func parseAnswers(answers []string) ([]shelf.Response, error) {
	out := make([]shelf.Response, 0, len(answers))
	for _, a := range answers {
		id, text, found := strings.Cut(a, "=")
		if !found {
			return nil, fmt.Errorf("invalid --answer %q (want <prompt>=<text>)", a)
		}
		out = append(out, shelf.Response{
			PromptID: strings.TrimSpace(id),
			Text:     strings.TrimSpace(text),
		})
	}
	return out, nil
}

func newShelfCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "Show your favourites, reading list and finished books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := currentIdentity()
			if err != nil {
				return err
			}
			s := shelves.Shelf().Get()
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			printShelf(cmd.OutOrStdout(), displayName(reader), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the shelf as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "seen",
		Short: "Mark all finished books as seen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := currentIdentity()
			if err != nil {
				return err
			}
			n := len(shelf.Unseen(shelves.Shelf().Get()))
			shelves.MarkSeen(reader.StudentID)
			ok("Marked %d finished book(s) as seen", n)
			return nil
		},
	})
	return cmd
}

func printShelf(w io.Writer, name string, s shelf.Shelf) {
	all := books.Books()
	title := func(id string) string {
		if b := catalog.ByID(all, id); b != nil {
			return b.Title
		}
		return color.New(color.Faint).Sprint("(no longer in the library)")
	}

	fmt.Fprintln(w, color.CyanString("%s's shelf", name))

	fmt.Fprintln(w, color.YellowString("Favourites"))
	if len(s.Favourites) == 0 {
		fmt.Fprintln(w, "  (none yet)")
	}
	for _, it := range s.Favourites {
		fmt.Fprintf(w, "  %-18s  %s\n", it.BookID, title(it.BookID))
	}

	fmt.Fprintln(w, color.YellowString("Reading"))
	if len(s.Reading) == 0 {
		fmt.Fprintln(w, "  (none yet)")
	}
	for _, it := range s.Reading {
		opened := ""
		if it.LastOpened != nil {
			opened = color.New(color.Faint).Sprintf("  opened %s", it.LastOpened.Local().Format("2006-01-02"))
		}
		fmt.Fprintf(w, "  %-18s  %s%s\n", it.BookID, title(it.BookID), opened)
	}

	fmt.Fprintln(w, color.YellowString("Finished"))
	if len(s.Finished) == 0 {
		fmt.Fprintln(w, "  (none yet)")
	}
	for _, c := range s.Finished {
		mark := ""
		if !c.Seen {
			mark = color.GreenString("  new")
		}
		fmt.Fprintf(w, "  %-18s  %s  %s%s\n", c.BookID, title(c.BookID),
			c.FinishedAt.Local().Format("2006-01-02"), mark)
	}
}
