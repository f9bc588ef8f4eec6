package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvedit/internal/bridge"
	"github.com/JonMunkholm/csvedit/internal/config"
	"github.com/JonMunkholm/csvedit/internal/core"
	"github.com/JonMunkholm/csvedit/internal/csv"
	"github.com/JonMunkholm/csvedit/internal/logging"
	"github.com/JonMunkholm/csvedit/internal/web"
)

func newServeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the panel API",
		Long: `Start the panel API. Configuration comes from the environment (and a .env
file when present); editor preferences come from SETTINGS_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to open before the host attaches")
	return cmd
}

func runServe(ctx context.Context, file string) error {
	// Overload lets .env win over the inherited environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	b := bridge.New()
	warn := func(msg string) {
		slog.Warn(msg)
		if err := b.PostWarning(context.Background(), msg); err != nil {
			slog.Warn("post warning to host failed", "error", err)
		}
	}

	var settings atomic.Pointer[config.ExtensionConfig]
	ext, err := loadSettings(cfg.Settings, warn, func(updated config.ExtensionConfig) {
		settings.Store(&updated)
		slog.Info("settings reloaded")
	})
	if err != nil {
		return err
	}
	settings.Store(&ext)

	session := core.NewSession(b, core.SessionConfig{
		Read:             core.ReadOptionsFrom(ext),
		Write:            core.WriteOptionsFrom(ext),
		SeparateComments: cfg.Editor.SeparateComments,
	})
	log := logging.WithFields(ctx, "session_id", session.ID())

	if file != "" {
		content, err := csv.ReadFile(file)
		if err != nil {
			return err
		}
		if err := session.SetInitialContent(ctx, content); err != nil {
			log.Warn("initial file could not be parsed", "file", file, "error", err)
		}
	}

	server := web.NewServer(cfg, session, b, func() config.ExtensionConfig {
		return *settings.Load()
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}

// loadSettings reads the editor preferences. Without a settings file the
// defaults are used silently. With Watch set, onChange receives the new
// preferences after every change to the file.
func loadSettings(sc config.SettingsConfig, warn func(string), onChange func(config.ExtensionConfig)) (config.ExtensionConfig, error) {
	if sc.File == "" {
		slog.Info("no settings file configured, using default editor settings")
		return config.DefaultExtensionConfig(), nil
	}

	store, err := config.NewViperStore(sc.File, sc.Section)
	if err != nil {
		return config.ExtensionConfig{}, err
	}

	if sc.Watch {
		store.Watch(func() {
			onChange(config.LoadExtension(store, sc.Section, warn))
		})
	}
	return config.LoadExtension(store, sc.Section, warn), nil
}
