package app

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/config"
	"github.com/blackwell-systems/readshelf/internal/kv"
	"github.com/blackwell-systems/readshelf/internal/search"
	"github.com/blackwell-systems/readshelf/internal/session"
	"github.com/blackwell-systems/readshelf/internal/shelf"
	"github.com/blackwell-systems/readshelf/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg      *config.Config
	logger   = zap.NewNop()
	store    kv.Store
	books    *catalog.Store
	matcher  *search.Matcher
	sessions *session.Manager
	shelves  *shelf.Manager

	appVersion = "dev"

	flagNoColor       bool
	flagNoInteractive bool
	flagConfig        string
)

// errNotSignedIn is returned by shelf commands when nobody is logged in.
var errNotSignedIn = errors.New("not logged in — run 'readshelf login <name>' first")

// SetVersion records the build version printed by 'readshelf version'.
func SetVersion(v string) {
	if v != "" {
		appVersion = v
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "readshelf",
		Short: "Browse a small reading library and keep a personal shelf",
		Long: `readshelf is a catalog browser for a small reading library.

Find books by fuzzy search, mood, format and sort order, then keep
favourites, a reading list and finished books with short reflections.
Everything is stored on this device; no account is needed.

Run 'readshelf' with no arguments to open the interactive browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			util.InitColor(flagNoColor)

			// Commands that never touch the library run without config.
			switch cmd.Name() {
			case "version", "completion", "help":
				return nil
			}

			c, err := config.Load(flagConfig)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return setup(c)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, browseOptions{})
		},
	}

	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/readshelf/config.yml)")

	root.AddCommand(
		newBrowseCmd(),
		newInfoCmd(),
		newSurpriseCmd(),
		newMoodsCmd(),
		newLoginCmd(),
		newWhoamiCmd(),
		newProfileCmd(),
		newLogoutCmd(),
		newFavCmd(),
		newReadingCmd(),
		newFinishCmd(),
		newShelfCmd(),
		newCatalogCmd(),
		newCompletionCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	err := newRootCmd().Execute()
	// PersistentPostRun is skipped when a command fails.
	teardown()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// setup builds the logger, storage, catalog and managers from c.
func setup(c *config.Config) error {
	l, err := newLogger(c.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	cfg, logger = c, l

	list, err := loadCatalog(c.Catalog.Path)
	if err != nil {
		return err
	}
	books = catalog.NewStore(list)
	matcher = search.NewMatcher(c.Search.Threshold)

	store = kv.Open(c.Storage.Backend, c.Storage.Path, logger)
	sessions = session.NewManager(store, session.WithLogger(logger))
	shelves = shelf.NewManager(store, books, shelf.WithLogger(logger))

	if id, ok := sessions.Load(); ok {
		shelves.Init(id.StudentID)
	}
	return nil
}

func teardown() {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("closing storage", zap.Error(err))
		}
		store = nil
	}
	_ = logger.Sync()
}

// newLogger returns a console logger for people or a JSON logger for
// machines, both writing to stderr.
func newLogger(c config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewDevelopmentConfig()
	if c.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// loadCatalog returns the built-in catalog, or the YAML file at path.
func loadCatalog(path string) ([]catalog.Book, error) {
	if path == "" {
		return catalog.Builtin()
	}
	list, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	if sum, err := util.SHA256File(path); err == nil {
		logger.Debug("custom catalog loaded",
			zap.String("path", path),
			zap.Int("books", len(list)),
			zap.String("sha256", sum))
	}
	return list, nil
}

// currentIdentity returns the signed-in reader or errNotSignedIn.
func currentIdentity() (session.Identity, error) {
	id := sessions.Current().Get()
	if id.IsZero() {
		return session.Identity{}, errNotSignedIn
	}
	return id, nil
}

// findBook looks up a catalog entry by ID.
func findBook(id string) (*catalog.Book, error) {
	b := catalog.ByID(books.Books(), id)
	if b == nil {
		return nil, fmt.Errorf("book %q not found (see 'readshelf browse')", id)
	}
	return b, nil
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}

func printField(label, value string) {
	fmt.Printf("  %-14s %s\n", color.CyanString(label+":"), value)
}
