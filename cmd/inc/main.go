// Command inc runs a counter application on the headless toolkit.
//
// Commands are read from standard input, one per line:
//
//	+   click "inc!"
//	-   click "dec!"
//	a   toggle auto-increment
//	p   print the widget tree
//	q   close the window
//
// End of input closes the window. The final count is printed on exit.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-drift/vtree/internal/config"
	"github.com/go-drift/vtree/pkg/core"
	"github.com/go-drift/vtree/pkg/errors"
	"github.com/go-drift/vtree/pkg/logs"
	"github.com/go-drift/vtree/pkg/toolkit/headless"
)

func main() {
	code, err := run(os.Args[1:], os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string, in io.Reader, out io.Writer) (int, error) {
	fs := flag.NewFlagSet("inc", flag.ContinueOnError)
	dir := fs.String("dir", ".", "directory inside the project holding vtree.yaml")
	start := fs.Int("start", 0, "initial count")
	if err := fs.Parse(args); err != nil {
		return 2, err
	}

	root, err := config.FindProjectRoot(*dir)
	if err != nil {
		return 1, err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return 1, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return 1, err
	}
	defer closeLog()
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: cfg.Debug})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hl := headless.New()
	sched := core.NewScheduler(hl, core.WithLogger(logger), core.WithDebug(cfg.Debug))
	if _, err := core.Mount(sched, counterType, counterProps{Title: cfg.AppName, Start: *start, Out: out}); err != nil {
		sched.Close()
		return 1, err
	}

	go readCommands(in, out, sched, hl, logger)

	logger.Info("started", slog.String("app", cfg.AppID))
	return sched.Run(ctx)
}

func newLogger(cfg *config.Resolved) (*slog.Logger, func(), error) {
	level := new(slog.LevelVar)
	level.Set(cfg.LogLevel)
	opts := logs.Options{Writer: os.Stderr, Level: level}
	if cfg.LogFile == "" {
		return logs.New(opts), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	opts.JSON = f
	return logs.New(opts), func() { f.Close() }, nil
}

// readCommands turns input lines into widget events. It runs on its own
// goroutine and hands every command to the loop with Dispatch.
func readCommands(in io.Reader, out io.Writer, sched *core.Scheduler, hl *headless.Toolkit, logger *slog.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "":
			continue
		case "q":
			sched.Dispatch(func() { closeWindow(hl) })
			return
		case "+", "-", "a", "p":
			sched.Dispatch(func() {
				if !runCommand(cmd, out, hl) {
					logger.Warn("command had no effect", slog.String("cmd", cmd))
				}
			})
		default:
			logger.Warn("unknown command", slog.String("cmd", cmd))
		}
	}
	sched.Dispatch(func() { closeWindow(hl) })
}

func runCommand(cmd string, out io.Writer, hl *headless.Toolkit) bool {
	switch cmd {
	case "+":
		return click(hl, "inc")
	case "-":
		return click(hl, "dec")
	case "a":
		return click(hl, "auto", "stop")
	case "p":
		return hl.Dump(out) == nil
	}
	return false
}

func click(hl *headless.Toolkit, labels ...string) bool {
	for _, root := range hl.Roots() {
		if w := findButton(root, labels); w != nil {
			return w.Emit("clicked")
		}
	}
	return false
}

func findButton(w *headless.Widget, labels []string) *headless.Widget {
	if w.Kind() == headless.KindButton {
		if label, _ := w.Property("label"); label != nil {
			for _, l := range labels {
				if label == l+"!" || label == l {
					return w
				}
			}
		}
	}
	for _, child := range w.Children() {
		if found := findButton(child, labels); found != nil {
			return found
		}
	}
	return nil
}

func closeWindow(hl *headless.Toolkit) {
	for _, root := range hl.Roots() {
		if root.Kind() == headless.KindWindow {
			root.Emit("close-request")
		}
	}
}
