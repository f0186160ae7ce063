package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/peterkuimelis/duelcore/internal/config"
	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/match"
	"github.com/peterkuimelis/duelcore/internal/web"
)

func main() {
	configFile := flag.String("config", "", "path to config YAML file")
	addr := flag.String("addr", "", "HTTP address to listen on (overrides config)")
	flag.Parse()

	if err := run(*configFile, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, addr string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

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

	eng := game.NewEngine(cat, game.WithRules(cfg.GameRules()), game.WithLogger(logger.Named("engine")))
	svc := match.NewService(eng, st, logger.Named("match"))
	srv := web.NewServer(svc, decks, logger.Named("web"))

	logger.Info("catalog loaded",
		zap.Int("cards", cat.Len()),
		zap.Int("decks", len(decks)),
		zap.String("store", cfg.Store.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
