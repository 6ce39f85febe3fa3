// Package main is the entry point for the relaymeter TUI.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veylab/relaymeter/internal/app"
	"github.com/veylab/relaymeter/internal/config"
	"github.com/veylab/relaymeter/internal/services"
	"github.com/veylab/relaymeter/internal/ui/tabs/breakdown"
	"github.com/veylab/relaymeter/internal/ui/tabs/info"
	"github.com/veylab/relaymeter/internal/ui/tabs/usage"
	"github.com/veylab/relaymeter/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Starts the background services: provider watching and usage polling.
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Each tab receives the shared application state for consistent data access.
	state := model.GetState()
	tabs := []app.Tab{
		usage.New(state),
		breakdown.New(state),
		info.New(state, cfg),
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`relaymeter - AI relay usage and billing monitor

Usage:
  relaymeter [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Usage, Breakdown, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate providers and scroll
  Enter           Switch to the selected provider
  p               Toggle daily/monthly period
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  RELAYMETER_PROVIDERS_PATH    Providers JSON file path
  RELAYMETER_BASE_URL          Override the usage API base URL
  RELAYMETER_REFRESH_INTERVAL  Usage polling interval (default: 60s)
  RELAYMETER_PERIOD            Default period: daily or monthly

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/relaymeter/.env
  - ~/.relaymeter/.env

For more information, visit: https://github.com/veylab/relaymeter`)
}
