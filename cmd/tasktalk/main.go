package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"tasktalk/internal/gateway"
	"tasktalk/internal/log"
	"tasktalk/internal/ui"
	"tasktalk/internal/webui"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		provider   string
		model      string
		baseURL    string
		maxRounds  int
		logJSON    bool
		debug      bool
	)

	gw := gateway.New("")

	root := &cobra.Command{
		Use:     "tasktalk",
		Short:   "Chat with an in-memory task list through a model's function calling",
		Version: version,
		Long: "tasktalk wires a language model's function calling to a task list kept\n" +
			"in memory for the session. Ask for tasks in plain language; the model\n" +
			"calls add_task, get_active_tasks, get_completed_tasks, and update_task\n" +
			"to do the work.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// The TUI owns the terminal, so its logs go to a file instead.
			out := io.Writer(os.Stderr)
			if cmd.Name() == "chat" || cmd == cmd.Root() {
				logPath := filepath.Join("bin", "tasktalk.log")
				_ = os.MkdirAll(filepath.Dir(logPath), 0o755)
				if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
					out = f
				} else {
					out = io.Discard
				}
			}

			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			opts := &slog.HandlerOptions{Level: level}
			var handler slog.Handler
			if logJSON {
				handler = slog.NewJSONHandler(out, opts)
			} else {
				handler = slog.NewTextHandler(out, opts)
			}
			logger := slog.New(handler)
			slog.SetDefault(logger)
			cmd.SetContext(log.WithLogger(cmd.Context(), logger))

			gw.ConfigPath = configPath
			gw.Provider = provider
			gw.Model = model
			gw.BaseURL = baseURL
			gw.MaxToolRounds = maxRounds
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run(gw)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to the config file (default ~/.tasktalk/config.json)")
	pf.StringVar(&provider, "provider", "", "model provider: gemini, openai, anthropic, or ollama")
	pf.StringVar(&model, "model", "", "model name (defaults per provider)")
	pf.StringVar(&baseURL, "base-url", "", "override the provider base URL")
	pf.IntVar(&maxRounds, "max-rounds", 0, "cap on function call rounds per message")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON instead of text")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newChatCmd(gw),
		newReplCmd(gw),
		newAskCmd(gw),
		newServeCmd(gw),
	)
	return root
}

func newChatCmd(gw *gateway.Gateway) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat TUI (the default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run(gw)
		},
	}
}

func newReplCmd(gw *gateway.Gateway) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Plain stdin chat loop, no TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return gw.Run(cmd.Context())
		},
	}
}

func newAskCmd(gw *gateway.Gateway) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a single message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gw.Execute(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func newServeCmd(gw *gateway.Gateway) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser chat UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return webui.NewServer(gw, port).Start(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config, 8080)")
	return cmd
}
