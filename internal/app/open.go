package app

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/shelf"
)

// launch opens a URL or file in the desktop's default handler. Tests
// replace it.
var launch = openFile

// openBook opens the book's reading link. A signed-in reader gets the book
// on their reading list with LastOpened refreshed.
func openBook(b catalog.Book) error {
	if b.DriveURL == "" {
		return fmt.Errorf("book %q has no reading link", b.ID)
	}

	if id := sessions.Current().Get(); !id.IsZero() {
		if shelf.IsReading(b.ID, shelves.Shelf().Get()) {
			shelves.MarkOpened(b.ID, id.StudentID)
		} else {
			shelves.AddToReading(b.ID, id.StudentID)
			ok("Added %q to your reading list", b.Title)
		}
	}

	if err := launch(b.DriveURL, ""); err != nil {
		return err
	}
	ok("Opening %s", b.Title)
	return nil
}

func openFile(path, app string) error {
	var cmdName string
	var args []string

	if app != "" {
		cmdName = app
		args = []string{path}
	} else {
		switch runtime.GOOS {
		case "darwin":
			cmdName = "open"
			args = []string{path}
		case "windows":
			cmdName = "cmd"
			args = []string{"/c", "start", "", path}
		default: // linux, freebsd, etc.
			cmdName = "xdg-open"
			args = []string{path}
		}
	}

	c := exec.Command(cmdName, args...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("opening %s with %q: %w", path, cmdName, err)
	}
	return nil
}
