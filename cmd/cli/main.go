package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/specialistvlad/pagegridgo/internal/app"
	"github.com/specialistvlad/pagegridgo/internal/cli"
	"github.com/specialistvlad/pagegridgo/internal/discovery"
	"github.com/specialistvlad/pagegridgo/internal/pageconfig"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"golang.org/x/sync/errgroup"
)

// main is the entrypoint for the pagegridgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Command output goes to outW and logs to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string, modules ...registry.Module) (err error) {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on programmer errors such as a duplicate trigger
	// registration; report them as a clean startup error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	a := app.NewApp(logW, inv.Config, modules...)
	return execute(ctx, a, inv, outW)
}

func execute(ctx context.Context, a *app.App, inv *cli.Invocation, outW io.Writer) error {
	switch inv.Command {
	case cli.CommandDiscover:
		res, err := a.Discover(ctx)
		if err != nil {
			return err
		}
		g, err := a.ReferenceGraph(ctx)
		if err != nil {
			return err
		}
		s := summarize(res)
		s.Graph.Nodes = g.Len()
		if err := g.DetectCycles(); err != nil {
			s.Graph.Cycle = err.Error()
		}
		return writeJSON(outW, s)

	case cli.CommandGenerate:
		if inv.All {
			paths, err := a.GenerateAll(ctx)
			for _, p := range paths {
				fmt.Fprintln(outW, p)
			}
			return err
		}
		pc, err := a.Generate(ctx, inv.Primary)
		if err != nil {
			return err
		}
		data, err := pageconfig.Marshal(pc, pageconfig.Format(inv.Config.OutputFormat))
		if err != nil {
			return err
		}
		_, err = outW.Write(data)
		return err

	case cli.CommandValidate:
		var (
			report pageconfig.Report
			err    error
		)
		if inv.Definition != "" {
			report, err = a.ValidateDefinition(ctx, inv.Definition)
		} else {
			report, err = a.Validate(ctx, inv.Primary)
		}
		if err != nil {
			return err
		}
		if err := writeJSON(outW, report); err != nil {
			return err
		}
		if !report.Valid {
			return &cli.ExitError{Code: 1, Message: "validation failed: " + report.Summary}
		}
		return nil

	case cli.CommandExec:
		result, err := a.ExecAction(ctx, inv.Action, inv.Content)
		if err != nil {
			return err
		}
		return writeJSON(outW, result)

	case cli.CommandRender:
		el, report, err := a.Render(ctx, inv.Primary)
		if err != nil {
			return err
		}
		if report != nil && !report.OK() {
			fmt.Fprintf(outW, "# onLoad: %d of %d triggers failed\n", len(report.Failed()), len(report.Results))
		}
		return writeJSON(outW, el)

	case cli.CommandServe:
		if !inv.Config.Watch {
			return a.Serve(ctx)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return a.Serve(gctx) })
		g.Go(func() error { return a.Watch(gctx, nil) })
		return g.Wait()

	case cli.CommandWatch:
		return a.Watch(ctx, func(res *discovery.Result, err error) {
			if err != nil {
				fmt.Fprintf(outW, "regeneration failed: %v\n", err)
				return
			}
			fmt.Fprintf(outW, "regenerated: %d eventTypes\n", res.Stats.TotalEventTypes)
		})
	}
	return fmt.Errorf("unknown command %q", inv.Command)
}

// summary is the discover command's output.
type summary struct {
	Root       string          `json:"root"`
	Stats      discovery.Stats `json:"stats"`
	Containers []string        `json:"containers"`
	Leaves     []string        `json:"leaves"`
	Warnings   []string        `json:"warnings"`
	Graph      graphSummary    `json:"graph"`
}

type graphSummary struct {
	Nodes int    `json:"nodes"`
	Cycle string `json:"cycle,omitempty"`
}

func summarize(res *discovery.Result) summary {
	s := summary{Root: res.Root, Stats: res.Stats, Containers: []string{}, Leaves: []string{}, Warnings: res.Warnings}
	for name, def := range res.Definitions {
		if def.IsContainer() {
			s.Containers = append(s.Containers, name)
		} else {
			s.Leaves = append(s.Leaves, name)
		}
	}
	sort.Strings(s.Containers)
	sort.Strings(s.Leaves)
	if s.Warnings == nil {
		s.Warnings = []string{}
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
