package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/pyama86/opsboard/handler"
	"github.com/pyama86/opsboard/presentation/tui"
)

var (
	configPath string
	debug      bool
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:           "opsboard",
	Short:         "opsboard is a terminal console for operational and project incidents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(os.Stderr)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd.Context())
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive incident console",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd.Context())
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	// デフォルトはホームディレクトリのopsboard.toml
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Error("Failed to get user home directory", slog.Any("error", err))
		os.Exit(1)
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", path.Join(home, "opsboard.toml"), "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", path.Join(home, ".opsboard", "opsboard.log"), "log file used while the console is open")

	rootCmd.AddCommand(consoleCmd)
}

func setupLogger(w io.Writer) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func runConsole(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := handler.Handle(ctx, configPath)
	if err != nil {
		return err
	}

	// 画面を崩さないようにログはファイルへ出す
	if err := os.MkdirAll(path.Dir(logFile), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	setupLogger(f)

	slog.Info("Console started", slog.String("api", app.Config.API.BaseURL))
	return tui.Run(ctx, app.Console)
}
