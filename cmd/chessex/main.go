// Package main provides the CLI entrypoint for chessex.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/config"
	"github.com/verte-zerg/chessex/internal/explorerui"
	"github.com/verte-zerg/chessex/internal/logging"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/msgcat"
	"github.com/verte-zerg/chessex/internal/statsclient"
	"github.com/verte-zerg/chessex/internal/statsdb"
)

const (
	defaultAPI       = "http://localhost:5554"
	defaultTimeoutMs = 5000
	defaultRating    = "2"
	defaultColor     = "white"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

var (
	apiURL       string
	apiTimeoutMs int
	logLevel     string
	logFile      string
	logFormat    string
	messagesDir  string

	explorerRating string
	explorerColor  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chessex",
		Short:         "Chess move explorer backed by game statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runExplorerCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&apiURL, "api", defaultAPI, "statistics API base URL")
	pf.IntVar(&apiTimeoutMs, "timeout-ms", defaultTimeoutMs, "statistics API request timeout in milliseconds")
	pf.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path (empty disables file logging)")
	pf.StringVar(&logFormat, "log-format", defaultLogFormat, "log format (console, json)")
	pf.StringVar(&messagesDir, "messages-dir", "", "directory with message catalog overrides")

	rootCmd.Flags().StringVar(&explorerRating, "rating", defaultRating, "rating bucket")
	rootCmd.Flags().StringVar(&explorerColor, "color", defaultColor, "perspective for win rates (white, black)")

	rootCmd.AddCommand(newBlitzCmd())
	rootCmd.AddCommand(newMovesCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newPlotCmd())
	rootCmd.AddCommand(newGridCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runExplorerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "rating", &explorerRating, fileCfg.Explorer.Rating)
	applyStringConfig(cmd, "color", &explorerColor, fileCfg.Explorer.Color)

	color, err := model.ParseColor(explorerColor)
	if err != nil {
		return fmt.Errorf("--color must be white or black")
	}
	if err := validateRating("rating", explorerRating); err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	msgs, err := msgcat.New(messagesDir)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	cfg := model.ExplorerConfig{Rating: explorerRating, Color: color}
	m := explorerui.NewModel(cfg, explorerui.Options{
		Source:   newClient(logger),
		Messages: msgs,
		Logger:   logger,
		Timeout:  apiTimeout(),
		Levels:   model.RatingLevels,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadConfig reads the config file and applies the shared settings.
func loadConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "api", &apiURL, fileCfg.API.BaseURL)
	applyIntConfig(cmd, "timeout-ms", &apiTimeoutMs, fileCfg.API.TimeoutMs)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "messages-dir", &messagesDir, fileCfg.Messages.Dir)
	if err := validateShared(); err != nil {
		return config.FileConfig{}, err
	}
	return fileCfg, nil
}

func setupLogger(console bool) (*zap.Logger, func(), error) {
	logger, closer, err := logging.Init(logging.Options{
		Level:   logLevel,
		Format:  logFormat,
		File:    logFile,
		Console: console,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logging: %w", err)
	}
	return logger, func() {
		if cerr := closer(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}, nil
}

func newClient(logger *zap.Logger) *statsclient.Client {
	return statsclient.New(apiURL, statsclient.WithTimeout(apiTimeout()), statsclient.WithLogger(logger))
}

func apiTimeout() time.Duration {
	return time.Duration(apiTimeoutMs) * time.Millisecond
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateShared() error {
	if strings.TrimSpace(apiURL) == "" {
		return fmt.Errorf("--api must not be empty")
	}
	if apiTimeoutMs <= 0 {
		return fmt.Errorf("--timeout-ms must be > 0")
	}
	if !logging.ValidFormat(logFormat) {
		return fmt.Errorf("--log-format must be console or json")
	}
	return nil
}

func validateRating(flag, rating string) error {
	if _, err := statsdb.ParseRating(rating); err != nil {
		return fmt.Errorf("--%s must be a non-negative integer", flag)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
