package main

import (
	"content-repo/auth"
	apperrors "content-repo/errors"
	"content-repo/infrastructure/grpc/client"
	"content-repo/infrastructure/storage"
	"content-repo/internal"
	"content-repo/services"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc/credentials"
)

// Exit codes to provide meaningful status to the calling shell.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const usage = `Usage: content-upload <command> [flags]

Commands:
  init     register a local file for upload
  send     transfer an upload, resuming from the last acknowledged offset
  import   import a finished upload into its repository
  delete   cancel an upload on the repository and forget it locally
  list     show every known upload
  resume   transfer every unfinished upload
  history  show the most recent imports
`

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "content-upload: %v\n", err)
	}
	os.Exit(code)
}

// app holds what every command needs once configuration is loaded.
type app struct {
	config  internal.Config
	log     *slog.Logger
	manager *services.UploadManager
	journal *storage.ImportJournal
	out     io.Writer
}

func run(args []string, out io.Writer) (int, error) {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(out, usage)
		return exitOK, nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(out, usage)
		return exitConfig, fmt.Errorf("unknown command %q", args[0])
	}

	// A missing .env file is fine, the environment alone is enough
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var creds credentials.PerRPCCredentials
	if config.AuthSecret != "" {
		creds = auth.NewTokenCredentials(config.AuthSecret, config.AuthSubject, config.AuthTokenDuration)
	}
	conn, err := client.NewConn(config.RepositoryAddr, creds)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to repository at %s: %w", config.RepositoryAddr, err)
	}
	defer func() { _ = conn.Close() }()

	db, err := badger.Open(badger.DefaultOptions(config.JournalDir()).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open import journal: %w", err)
	}
	defer func() { _ = db.Close() }()
	journal := storage.NewImportJournal(db, log)

	manager := services.NewUploadManagerFromConfig(config,
		client.NewUploadClient(conn, config.RequestTimeout, log), log,
		services.WithImportJournal(journal))
	if err := manager.Initialize(); err != nil {
		if !errors.Is(err, apperrors.ErrCorruptTracker) {
			return exitRuntime, err
		}
		log.Warn("Some upload trackers could not be loaded", "error", err)
	}

	a := &app{config: config, log: log, manager: manager, journal: journal, out: out}
	if err := cmd(ctx, a, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return exitConfig, err
		}
		return exitRuntime, err
	}
	return exitOK, nil
}
