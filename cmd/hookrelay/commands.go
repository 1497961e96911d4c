package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loykin/hookrelay"
	"github.com/spf13/cobra"
)

// createDispatchCommand creates the dispatch subcommand
func createDispatchCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Validate one session-end event and launch extraction",
		Long: `Read one hook event payload from stdin, run the validation chain
and, when every check passes, launch the detached extraction task.
The dispatch result is printed as JSON on stdout. Exit code is 0 for
started and skipped results, 1 for error.

Examples:
  hookrelay dispatch < event.json
  some-hook-host | hookrelay dispatch --config=/etc/hookrelay.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(globalFlags.ConfigPath, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runDispatchCommand(configPath string, in io.Reader, out io.Writer) error {
	res := dispatchOnce(configPath, in)
	printJSONTo(out, res)
	if res.Status == hookrelay.StatusError {
		return errors.New(res.Reason)
	}
	return nil
}

// dispatchOnce folds every failure mode into a Result so the caller
// always has one JSON object to emit.
func dispatchOnce(configPath string, in io.Reader) hookrelay.Result {
	cfg, err := hookrelay.LoadConfig(configPath)
	if err != nil {
		return hookrelay.Result{Status: hookrelay.StatusError, Reason: err.Error()}
	}

	p, err := hookrelay.ParsePayload(in)
	if err != nil {
		return hookrelay.Result{Status: hookrelay.StatusError, Reason: err.Error()}
	}

	log := dispatchLogger(cfg)
	d, closeJournal, err := newDispatcher(cfg, configPath, log)
	if err != nil {
		return hookrelay.Result{Status: hookrelay.StatusError, Reason: err.Error()}
	}
	defer closeJournal()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.Dispatch(ctx, p)
}

// dispatchLogger builds the dispatch command's logger. The hook host
// captures stderr, so logs go to a file when one is configured and are
// discarded otherwise.
func dispatchLogger(cfg *hookrelay.FileConfig) *slog.Logger {
	if cfg.Log.Dir == "" && cfg.Log.Path == "" {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.Log.New("hookrelay")
}

// newDispatcher assembles a dispatcher from file config. The returned
// close function releases the journal sink, if any.
func newDispatcher(cfg *hookrelay.FileConfig, configPath string, log *slog.Logger) (*hookrelay.Dispatcher, func(), error) {
	gw, err := cfg.Detector()
	if err != nil {
		return nil, nil, err
	}
	env, err := cfg.TaskEnv(configPath)
	if err != nil {
		return nil, nil, err
	}

	closeJournal := func() {}
	var sink hookrelay.JournalSink
	if cfg.Journal.DSN != "" {
		sink, err = hookrelay.NewJournalSink(cfg.Journal.DSN)
		if err != nil {
			// The journal is an optional audit trail; never block dispatching on it.
			log.Warn("journal disabled", "dsn", cfg.Journal.DSN, "error", err)
			sink = nil
		} else {
			s := sink
			closeJournal = func() { _ = s.Close() }
		}
	}

	d := hookrelay.New(hookrelay.Config{
		OutputRoot:  cfg.Dispatch.OutputRoot,
		MinDuration: cfg.Dispatch.MinDuration,
		Extractor:   cfg.Dispatch.Extractor,
		InstallHint: cfg.Dispatch.InstallHint,
		PipeScript:  cfg.Dispatch.PipeScript,
		EndpointVar: cfg.Dispatch.EndpointVar,
		Gateway:     gw,
		TaskEnv:     env,
		Journal:     sink,
		Logger:      log,
	})
	return d, closeJournal, nil
}

// createRunCommand creates the hidden run subcommand the launcher
// re-execs. It is not part of the user-facing CLI.
func createRunCommand(flags *RunFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "run",
		Hidden: true,
		Short:  "Execute a dispatched extraction task (internal)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := hookrelay.RunTask(hookrelay.TaskSpec{
				SessionFile: flags.SessionFile,
				SessionID:   flags.SessionID,
				ProjectKey:  flags.Project,
				OutputDir:   flags.OutputDir,
				LogPath:     flags.Log,
				Extractor:   flags.Extractor,
				PipeScript:  flags.PipeScript,
				EndpointVar: flags.EndpointVar,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&flags.SessionFile, "session-file", "", "session transcript path")
	cmd.Flags().StringVar(&flags.SessionID, "session-id", "", "session identifier")
	cmd.Flags().StringVar(&flags.Project, "project", "", "project key")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "per-project output directory")
	cmd.Flags().StringVar(&flags.Log, "log", "", "task log file path")
	cmd.Flags().StringVar(&flags.Extractor, "extractor", "", "extraction CLI binary")
	cmd.Flags().StringVar(&flags.PipeScript, "pipe-script", "", "optional memory pipe script")
	cmd.Flags().StringVar(&flags.EndpointVar, "endpoint-var", "", "env var gating the pipe step")

	for _, name := range []string{"session-file", "output-dir", "extractor"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return cmd
}

// createServeCommand creates the serve subcommand
func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Run the HTTP ingress daemon",
		Long: `Run an HTTP server accepting hook event payloads on POST {base}/dispatch.
All configuration is loaded from the config file.

Examples:
  hookrelay serve --config=hookrelay.toml
  hookrelay serve hookrelay.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := globalFlags.ConfigPath
			if len(args) > 0 {
				configPath = args[0]
			}
			return runServeCommand(configPath)
		},
	}
}

func runServeCommand(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config file required for serve command. Use --config=hookrelay.toml or provide as argument")
	}

	cfg, err := hookrelay.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if cfg.Server == nil {
		return fmt.Errorf("server must be configured to run serve command")
	}

	log := cfg.Log.New("hookrelay")

	// Setup metrics from config
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		if err := hookrelay.RegisterMetricsDefault(); err != nil {
			fmt.Printf("Warning: failed to register metrics: %v\n", err)
		}
		if cfg.Metrics.Listen != "" {
			go func() {
				if err := hookrelay.ServeMetrics(cfg.Metrics.Listen); err != nil {
					fmt.Printf("Metrics server error: %v\n", err)
				}
			}()
		}
	}

	d, closeJournal, err := newDispatcher(cfg, configPath, log)
	if err != nil {
		return err
	}
	defer closeJournal()

	server, err := hookrelay.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, d)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	fmt.Printf("Starting hookrelay server on %s%s\n", cfg.Server.Listen, cfg.Server.BasePath)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	return server.Close()
}
