// tradeterm - Terminal of Trade AI chat client for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/terminaloftrade/tradeterm/internal/config"
	"github.com/terminaloftrade/tradeterm/internal/controller"
	"github.com/terminaloftrade/tradeterm/internal/gateway"
	"github.com/terminaloftrade/tradeterm/internal/identity"
	"github.com/terminaloftrade/tradeterm/internal/registry"
	"github.com/terminaloftrade/tradeterm/internal/ui/chat"
	"github.com/terminaloftrade/tradeterm/internal/ui/styles"
	"github.com/terminaloftrade/tradeterm/internal/widget"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.tradeterm/config.toml)")
	apiURL := flag.String("api", "", "backend API base URL (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tradeterm %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tradeterm: %v\n", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}

	gw := gateway.NewClient().
		WithBaseURL(cfg.API.BaseURL).
		WithTimeout(time.Duration(cfg.API.TimeoutSecs) * time.Second)

	store, err := identityStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tradeterm: %v\n", err)
		os.Exit(1)
	}

	ctrl := controller.New(store, registry.New(), gw)
	ctrl.Restore()

	m := chat.New(styles.NewTheme(), cfg, ctrl, gw, widget.NewRegistry())

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tradeterm: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func identityStore(cfg *config.Config) (*identity.Store, error) {
	if cfg.DataDir != "" {
		return identity.NewStoreWithDir(cfg.DataDir), nil
	}
	return identity.NewStore()
}
