package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"inkpress/internal/admin/changeset"
	"inkpress/internal/admin/client"
	"inkpress/internal/admin/ledger"
	"inkpress/internal/types"

	"go.uber.org/zap"
)

// session owns the ledger of one operator
type session struct {
	api    *client.Client
	ledger *ledger.Ledger
	out    io.Writer
	logger *zap.Logger
}

// load queues every entry of a changeset file. The current server state of
// each target is captured so the change can be undone.
func (s *session) load(ctx context.Context, path string) error {
	entries, err := changeset.Load(path)
	if err != nil {
		return err
	}

	for _, e := range entries {
		original, err := s.api.Snapshot(ctx, e.Payload)
		if err != nil {
			if !errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("capture current %s: %w", e.Category, err)
			}
			original = nil
		}

		change, err := s.ledger.Add(e.Category, e.Description, e.Payload, original)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "queued %s  %s\n", change.ID[:8], change.Summary())
	}
	return nil
}

func (s *session) list() {
	changes := s.ledger.Changes()
	if len(changes) == 0 {
		fmt.Fprintln(s.out, "no pending changes")
		return
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tDESCRIPTION\tUNDOABLE\tQUEUED")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			c.ID, c.Category, c.Description, c.HasOriginal(), c.CreatedAt.Format(time.Kitchen))
	}
	_ = w.Flush()
}

func (s *session) history(ctx context.Context, limit int) error {
	records, err := s.api.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, "no deployments")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEPLOYMENT\tTIME\tCHANGES")
	for _, r := range records {
		summaries := make([]string, 0, len(r.Changes))
		for _, c := range r.Changes {
			summaries = append(summaries, fmt.Sprintf("%s: %s", c.Category, c.Description))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.DeploymentID, r.Timestamp.Local().Format(time.DateTime), strings.Join(summaries, "; "))
	}
	return w.Flush()
}

const shellHelp = `commands:
  load FILE    queue the changes in FILE
  list         show pending changes
  remove ID    drop a pending change
  clear        drop every pending change
  deploy       apply and deploy all pending changes
  undo         restore the state captured before each change
  history [N]  list recent deployments
  quit`

// shell runs an interactive loop until quit or end of input
func (s *session) shell(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(s.out, shellHelp)

	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "load":
			if len(fields) != 2 {
				err = errors.New("usage: load FILE")
				break
			}
			err = s.load(ctx, fields[1])
		case "list", "ls":
			s.list()
		case "remove", "rm":
			if len(fields) != 2 {
				err = errors.New("usage: remove ID")
				break
			}
			s.ledger.Remove(s.resolveID(fields[1]))
		case "clear":
			s.ledger.Clear()
		case "deploy":
			_, err = s.ledger.DeployAll(ctx)
		case "undo":
			_, err = s.ledger.UndoAll(ctx)
		case "history":
			limit := 10
			if len(fields) > 1 {
				_, _ = fmt.Sscanf(fields[1], "%d", &limit)
			}
			err = s.history(ctx, limit)
		case "quit", "exit":
			return s.confirmQuit()
		case "help":
			fmt.Fprintln(s.out, shellHelp)
		default:
			err = fmt.Errorf("unknown command %q", fields[0])
		}

		// deploy and undo already reported through the notifier
		if err != nil && fields[0] != "deploy" && fields[0] != "undo" {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return s.confirmQuit()
}

// resolveID expands a unique id prefix as printed by load
func (s *session) resolveID(prefix string) string {
	var match string
	for _, c := range s.ledger.Changes() {
		if strings.HasPrefix(c.ID, prefix) {
			if match != "" {
				return prefix
			}
			match = c.ID
		}
	}
	if match == "" {
		return prefix
	}
	return match
}

func (s *session) confirmQuit() error {
	if n := s.ledger.Len(); n > 0 {
		s.logger.Warn("Session ended with pending changes", zap.Int("pending", n))
		fmt.Fprintf(s.out, "discarding %d pending change(s)\n", n)
	}
	return nil
}
