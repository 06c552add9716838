package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aicell-lab/zooreview/internal/artifact"
	"github.com/aicell-lab/zooreview/internal/config"
	"github.com/aicell-lab/zooreview/internal/hypha"
	"github.com/aicell-lab/zooreview/internal/logging"
	"github.com/aicell-lab/zooreview/internal/review"
	"github.com/aicell-lab/zooreview/internal/runner"
	"github.com/aicell-lab/zooreview/internal/secrets"
	"github.com/aicell-lab/zooreview/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client := hypha.New(hypha.Options{
		URL:       cfg.Server.URL,
		Workspace: cfg.Server.Workspace,
		Token:     resolveToken(cfg),
		Timeout:   cfg.Zoo.CallTimeout,
		Logger:    logger,
	})
	defer client.Close()

	artifacts := artifact.NewClient(client)
	services := tui.Services{
		Review:    review.NewService(artifacts, cfg.Zoo.Collection, cfg.Zoo.PageSize, logger),
		Artifacts: artifacts,
		Launcher:  runner.NewLauncher(client, cfg.Zoo.RunnerURL, logger),
		Tokens:    tui.DiskTokens{},
	}

	p := tea.NewProgram(tui.New(ctx, cfg, client, services, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// resolveToken prefers the environment, then the encrypted secrets store.
// Starting without a token is fine: the catalog stays readable and review
// unlocks after signing in from the settings view.
func resolveToken(cfg config.Config) string {
	env := strings.TrimSpace(cfg.Server.TokenEnv)
	if env == "" {
		env = "WORKSPACE_TOKEN"
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if tok, err := secrets.FetchToken(cfg.Server.URL); err == nil {
		return tok
	}
	return ""
}
