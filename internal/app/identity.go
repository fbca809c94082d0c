package app

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/readshelf/internal/session"
	"github.com/blackwell-systems/readshelf/internal/validation"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var class string

	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Start a reader identity on this device",
		Long: `Creates a new reader identity and makes it current.

No password is involved. Two readers with the same name and class get
separate shelves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cur := sessions.Current().Get(); !cur.IsZero() {
				warn("Switching from %s", displayName(cur))
			}

			id, err := sessions.Create(args[0], class)
			if err != nil {
				return friendlyValidation(err)
			}
			shelves.Init(id.StudentID)

			if !cfg.UsesStorage() {
				warn("Storage backend %q does not persist; this login ends with the command.", cfg.Storage.Backend)
			}
			ok("Hello, %s!", displayName(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "Your class or group (optional)")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current reader",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := currentIdentity()
			if err != nil {
				return err
			}
			header("Reader: %s", id.Name)
			if id.Class != "" {
				printField("class", id.Class)
			}
			printField("since", id.CreatedAt.Local().Format("2006-01-02"))

			s := shelves.Shelf().Get()
			printField("favourites", fmt.Sprintf("%d", len(s.Favourites)))
			printField("reading", fmt.Sprintf("%d", len(s.Reading)))
			printField("finished", fmt.Sprintf("%d", len(s.Finished)))
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	var (
		class string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change the current reader's name or class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("class") && !cmd.Flags().Changed("name") {
				return fmt.Errorf("nothing to change (use --name or --class)")
			}
			if _, err := currentIdentity(); err != nil {
				return err
			}

			id, err := sessions.Update(func(i session.Identity) session.Identity {
				if cmd.Flags().Changed("name") {
					i.Name = name
				}
				if cmd.Flags().Changed("class") {
					i.Class = class
				}
				return i
			})
			if err != nil {
				return friendlyValidation(err)
			}
			ok("Profile updated: %s", displayName(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&class, "class", "", "New class or group (empty to clear)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; your shelf stays on this device",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			id := sessions.Current().Get()
			if id.IsZero() {
				warn("Nobody is logged in.")
				return
			}
			sessions.Clear()
			ok("Goodbye, %s!", id.Name)
		},
	}
}

func displayName(id session.Identity) string {
	if id.Class == "" {
		return id.Name
	}
	return fmt.Sprintf("%s (%s)", id.Name, id.Class)
}

// friendlyValidation drops the internal wrapping from validation errors so
// the reader only sees which field was wrong.
func friendlyValidation(err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr
	}
	return err
}
