package ledger

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ConsoleNotifier prints outcomes for an operator and mirrors them to the log
type ConsoleNotifier struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleNotifier creates a notifier writing to out
func NewConsoleNotifier(out io.Writer, logger *zap.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, logger: logger}
}

// Info implements Notifier
func (n *ConsoleNotifier) Info(msg string) {
	fmt.Fprintln(n.out, msg)
	n.logger.Info(msg)
}

// Success implements Notifier
func (n *ConsoleNotifier) Success(msg string) {
	fmt.Fprintf(n.out, "✓ %s\n", msg)
	n.logger.Info(msg)
}

// Warning implements Notifier
func (n *ConsoleNotifier) Warning(msg string) {
	fmt.Fprintf(n.out, "! %s\n", msg)
	n.logger.Warn(msg)
}

// Error implements Notifier
func (n *ConsoleNotifier) Error(msg string, err error) {
	fmt.Fprintf(n.out, "✗ %s: %v\n", msg, err)
	n.logger.Error(msg, zap.Error(err))
}
