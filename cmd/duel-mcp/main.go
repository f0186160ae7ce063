package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/duelcore/internal/config"
	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/match"
	duelmcp "github.com/peterkuimelis/duelcore/internal/mcp"
)

func main() {
	configFile := flag.String("config", "", "path to config YAML file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cat, err := game.LoadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	decks, err := game.LoadDecks(cfg.Decks, cat)
	if err != nil {
		return err
	}
	st, err := cfg.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// zap writes to stderr; stdout carries the protocol
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	eng := game.NewEngine(cat, game.WithRules(cfg.GameRules()), game.WithLogger(logger.Named("engine")))
	svc := match.NewService(eng, st, logger.Named("match"))

	s := server.NewMCPServer("duelcore", "1.0.0")
	duelmcp.RegisterTools(s, duelmcp.NewSession(svc, decks))
	return server.ServeStdio(s)
}
