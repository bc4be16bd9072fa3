package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/glamsite/glamsite/internal/adapter/postgres"
	"github.com/glamsite/glamsite/internal/config"
	"github.com/glamsite/glamsite/internal/domain/content"
	"github.com/glamsite/glamsite/internal/port/blob"
	"github.com/glamsite/glamsite/internal/service"
)

// transferConcurrency bounds parallel blob round trips during export/import.
const transferConcurrency = 4

// runAdmin dispatches admin subcommands.
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "hash-password":
		return runAdminHashPassword(args[1:])
	case "export":
		return runAdminExport(args[1:])
	case "import":
		return runAdminImport(args[1:])
	case "migrate":
		return runAdminMigrate(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: glamsite admin <command> [options]

Commands:
  hash-password   Print a bcrypt hash for auth.admin_password_hash
  export          Write every stored section document to a directory
  import          Replace section documents from a directory
  migrate         Show or roll back the postgres schema version
  help            Show this help message

Examples:
  glamsite admin hash-password
  glamsite admin export --dir ./content-backup
  glamsite admin import --dir ./content-backup --strict
  glamsite admin migrate --down 1
`)
}

func runAdminHashPassword(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	password := fs.String("password", "", "password to hash (prompted if not provided)") //nolint:gosec // CLI flag
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("Admin password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return errors.New("passwords do not match")
		}
	}
	if pass == "" {
		return errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), *cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fmt.Println(string(hash))
	return nil
}

func runAdminExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dir := fs.String("dir", "", "destination directory (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return errors.New("--dir is required")
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := exportContent(context.Background(), store, *dir, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d section(s) to %s\n", n, *dir)
	return nil
}

func runAdminImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dir := fs.String("dir", "", "source directory (required)")
	strict := fs.Bool("strict", false, "check documents against the section scaffold shapes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return errors.New("--dir is required")
	}

	store, cleanup, err := loadAdminStore()
	if err != nil {
		return err
	}
	defer cleanup()

	var opts []service.ContentOption
	if *strict {
		opts = append(opts, service.WithStrictShapes())
	}
	svc := service.NewContentService(store, operatorGate{}, opts...)

	n, err := importContent(context.Background(), svc, *dir, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Imported %d section(s) from %s\n", n, *dir)
	return nil
}

func runAdminMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	down := fs.Int("down", 0, "number of migrations to roll back")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *down < 0 {
		return errors.New("--down must be >= 0")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Blob.Driver != config.BlobDriverPostgres {
		return fmt.Errorf("migrate requires blob.driver %q, got %q", config.BlobDriverPostgres, cfg.Blob.Driver)
	}

	ctx := context.Background()
	if *down > 0 {
		if err := postgres.RollbackMigrations(ctx, cfg.Postgres.DSN, *down); err != nil {
			return err
		}
	} else if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return err
	}

	version, err := postgres.MigrationVersion(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Schema version: %d\n", version)
	return nil
}

func loadAdminStore() (blob.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return openBlobStore(context.Background(), cfg)
}

// operatorGate authorizes every write made from the admin CLI.
type operatorGate struct{}

func (operatorGate) IsAuthorized(context.Context, string) bool { return true }

// exportContent writes each stored section to dir/{section}.json. Sections
// with nothing stored are skipped rather than exported as scaffolds.
func exportContent(ctx context.Context, store blob.Store, dir string, out io.Writer) (int, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}

	written := make([]bool, len(content.Sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferConcurrency)
	for i, s := range content.Sections {
		g.Go(func() error {
			data, found, err := store.Get(gctx, content.Key(s))
			if err != nil {
				return fmt.Errorf("export %s: %w", s, err)
			}
			if !found {
				return nil
			}
			path := filepath.Join(dir, string(s)+".json")
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("export %s: %w", s, err)
			}
			written[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	n := 0
	for i, ok := range written {
		if ok {
			n++
		} else {
			fmt.Fprintf(out, "skipped %s: nothing stored\n", content.Sections[i])
		}
	}
	return n, nil
}

// importContent writes dir/{section}.json for every section that has a file,
// through the content service so documents pass the same checks as the API.
// Every file is validated before the first write.
func importContent(ctx context.Context, svc *service.ContentService, dir string, out io.Writer) (int, error) {
	docs := make(map[content.Section][]byte)
	for _, s := range content.Sections {
		data, err := os.ReadFile(filepath.Join(dir, string(s)+".json"))
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "skipped %s: no file\n", s)
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", s, err)
		}
		if err := svc.Validate(string(s), data); err != nil {
			return 0, fmt.Errorf("import %s: %w", s, err)
		}
		docs[s] = data
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferConcurrency)
	for s, data := range docs {
		g.Go(func() error {
			if _, err := svc.Write(gctx, string(s), data, ""); err != nil {
				return fmt.Errorf("import %s: %w", s, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
