package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/util"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with the library catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export [path]",
		Short: "Write the active catalog as YAML",
		Long: `Writes the active catalog as YAML to path, or to stdout when no path is
given. Point catalog.path in the config at the file to use an edited copy.
An existing file is kept as <path>.bak.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := books.Books()
			if len(args) == 0 {
				data, err := catalog.Marshal(list)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			path := args[0]
			if _, err := os.Stat(path); err == nil {
				if err := util.CopyFile(path, path+".bak"); err != nil {
					return fmt.Errorf("backing up %s: %w", path, err)
				}
				warn("Existing file saved as %s.bak", path)
			}
			if err := catalog.Save(path, list); err != nil {
				return fmt.Errorf("writing catalog: %w", err)
			}
			ok("Wrote %d books to %s", len(list), path)
			return nil
		},
	})
	return cmd
}
