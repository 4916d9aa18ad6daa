package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tickerfeed/internal/config"
	"tickerfeed/internal/feed"
	"tickerfeed/internal/filter"
	"tickerfeed/internal/filterapi"
	"tickerfeed/internal/tui"
	"tickerfeed/internal/util"
)

func main() {
	cfgPath := "config/tickerfeed.yaml"
	if p := os.Getenv("TICKERFEED_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal is the UI, so logs go to a file only.
	logFile, err := util.OpenDatedLog(cfg.Client.LogPath, "feed-client")
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logFile)
	logger.Info("starting feed client", "base_url", cfg.Client.BaseURL, "config", cfgPath)

	sectors, err := filter.NewSectorTree(cfg.Filters.SectorGroups())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sector config: %v\n", err)
		os.Exit(1)
	}
	form := filter.NewForm(filter.NewChecklist(cfg.Filters.Accounts), sectors)

	ctrl := feed.New(feed.Options{
		Executor: filterapi.NewClient(cfg.Client.BaseURL, cfg.Client.Timeout, logger),
		Form:     form,
		Logger:   logger,
		PageSize: cfg.Client.PageSize,
		MaxPosts: cfg.Client.MaxPosts,
		Debounce: cfg.Client.Debounce,
		Timeout:  cfg.Client.Timeout,
		Location: time.Local,
	})

	p := tea.NewProgram(
		tui.New(ctrl, tui.Options{PrefetchMargin: cfg.Client.PrefetchMargin, Logger: logger}),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("feed client exited", "selected", len(ctrl.SelectedIDs()))
}
