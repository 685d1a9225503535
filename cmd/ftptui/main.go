package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trungnl/ftptui/pkg/config"
	"github.com/trungnl/ftptui/pkg/tui"
)

func main() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
		os.Exit(1)
	}

	dataDir := filepath.Join(homeDir, ".ftptui")
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating data directory: %v\n", err)
		os.Exit(1)
	}

	// Stdout belongs to the TUI; all logging goes to a file.
	logFile, err := os.OpenFile(
		filepath.Join(dataDir, "debug.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0600,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	store, err := config.NewStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	browser := tui.NewBrowser(store)

	// An ftp://host[:port] argument overrides the saved server for this run.
	if len(os.Args) > 1 {
		host, port, err := parseServerArg(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid server argument %q: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		browser.SetServer(host, port)
	}

	// A failed auto-connect is not fatal; the UI opens disconnected with the
	// error on the status line.
	browser.Connect()

	p := tea.NewProgram(browser, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("program failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseServerArg(arg string) (string, int, error) {
	// A bare host[:port] is accepted too.
	if !strings.Contains(arg, "://") {
		arg = "ftp://" + arg
	}

	u, err := url.Parse(arg)
	if err != nil {
		return "", 0, err
	}
	if u.Scheme != "ftp" {
		return "", 0, fmt.Errorf("expected an ftp:// URL")
	}
	if u.Hostname() == "" {
		return "", 0, fmt.Errorf("missing host")
	}

	port := 21
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return "", 0, err
		}
	}
	return u.Hostname(), port, nil
}
