// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

// Command agentdeck is a terminal control panel for an orchestrator
// running autonomous coding agents. Run without arguments it opens the
// interactive panel; subcommands expose the same operations for
// scripting.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/api"
	"github.com/agentdeck/agentdeck/deckui"
	"github.com/agentdeck/agentdeck/lib/config"
	"github.com/agentdeck/agentdeck/lib/prefs"
	"github.com/agentdeck/agentdeck/livesync"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "agentdeck:", err)
		os.Exit(1)
	}
}

// app carries the dependencies commands need, built once in the root
// PersistentPreRunE.
type app struct {
	config *config.Config
	client *api.Client
	logger *slog.Logger

	// logClose closes the log file, when logging goes to one.
	logClose func() error
}

func newRootCommand() *cobra.Command {
	var (
		a          app
		configPath string
	)

	root := &cobra.Command{
		Use:           "agentdeck",
		Short:         "Terminal control panel for autonomous coding agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(configPath, cmd.Name() == "agentdeck")
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logClose != nil {
				return a.logClose()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPanel(&a)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $"+config.EnvVar+", else built-in defaults)")

	root.AddCommand(
		newProjectsCommand(&a),
		newAgentCommand(&a),
		newProjectCommand(&a),
		newDiagnoseCommand(&a),
		newVersionCommand(),
	)
	return root
}

// setup loads configuration and builds the shared API client. tui
// selects the logging fallback: interactive runs must not write slog
// output to stderr or it tears the rendered screen.
func (a *app) setup(configPath string, tui bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log, tui)
	if err != nil {
		return err
	}

	token, err := cfg.Token()
	if err != nil {
		closeLog()
		return err
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.Server.URL,
		Token:   token,
		Logger:  logger.With("component", "api"),
	})
	if err != nil {
		closeLog()
		return err
	}

	a.config = cfg
	a.client = client
	a.logger = logger
	a.logClose = closeLog
	return nil
}

// newLogger builds the process logger per LogConfig. The returned
// close function is a no-op unless a log file was opened.
func newLogger(cfg config.LogConfig, tui bool) (*slog.Logger, func() error, error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	var w io.Writer = os.Stderr
	closeLog := func() error { return nil }
	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeLog = f.Close
	case tui:
		w = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeLog, nil
}

// runPanel starts the interactive panel.
func runPanel(a *app) error {
	sync, err := livesync.New(livesync.Config{
		BaseURL: a.config.Server.URL,
		Logger:  a.logger.With("component", "livesync"),
	})
	if err != nil {
		return err
	}
	defer sync.Close()

	prefsPath, err := prefs.DefaultPath()
	if err != nil {
		return err
	}
	p, err := prefs.Load(prefsPath)
	if err != nil {
		a.logger.Warn("loading preferences", "error", err)
		p = prefs.Default()
	}

	model := deckui.New(deckui.Config{
		Client:    a.client,
		Sync:      sync,
		Prefs:     p,
		PrefsPath: prefsPath,
		Logger:    a.logger.With("component", "deckui"),
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
