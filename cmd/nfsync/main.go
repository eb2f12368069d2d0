package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/utils"
	"github.com/nfsync/nfsync/internal/version"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "nfsync",
	Short:   "NFS folder sync daemon and CLI",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func main() {
	// optional .env for NFSYNC_* overrides
	_ = godotenv.Load()

	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch os.Getenv("NFSYNC_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	stderrHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	handlers := []slog.Handler{stderrHandler}

	logFile := config.DefaultLogFilePath
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err == nil {
		if file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
		}
	}

	slog.SetDefault(slog.New(utils.NewFanoutHandler(handlers...)))
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(filepath.Join(home, ".config/nfsync"))
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.SetEnvPrefix("NFSYNC")
	viper.AutomaticEnv()

	return nil
}

// configPath resolves the config file in flag > env > default order.
func configPath(cmd *cobra.Command) string {
	if cmd.Flag("config").Changed {
		return cmd.Flag("config").Value.String()
	}
	if envPath := os.Getenv("NFSYNC_CONFIG_PATH"); envPath != "" {
		return envPath
	}
	return config.DefaultConfigPath
}

func openStore(cmd *cobra.Command) (*config.Store, error) {
	return config.LoadStore(configPath(cmd))
}
