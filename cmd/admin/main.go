package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"inkpress/internal/admin/client"
	"inkpress/internal/admin/config"
	"inkpress/internal/admin/ledger"
	"inkpress/internal/logger"
	"inkpress/internal/version"

	"go.uber.org/zap"
)

const usage = `Usage: inkpress-admin [flags] <command> [args]

Commands:
  deploy FILE   queue the changes in FILE and deploy them as one batch
  shell         start an interactive session
  history [N]   list the N most recent deployments (default 10)

Flags:
`

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Log, "admin")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(&cfg.Server, log)
	s := &session{
		api:    api,
		ledger: ledger.New(api, ledger.NewConsoleNotifier(os.Stdout, log), log),
		out:    os.Stdout,
		logger: log,
	}

	if err := run(ctx, s, flag.Args()); err != nil {
		log.Debug("Command failed", zap.Error(err))
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s *session, args []string) error {
	switch args[0] {
	case "deploy":
		if len(args) != 2 {
			return fmt.Errorf("usage: deploy FILE")
		}
		if err := s.load(ctx, args[1]); err != nil {
			return err
		}
		ok, err := s.ledger.DeployAll(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("nothing was deployed")
		}
		return nil

	case "shell":
		return s.shell(ctx, os.Stdin)

	case "history":
		limit := 10
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("history limit must be a positive integer")
			}
			limit = n
		}
		return s.history(ctx, limit)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
