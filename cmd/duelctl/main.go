package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/peterkuimelis/duelcore/internal/console"
	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/log"
	"github.com/peterkuimelis/duelcore/internal/match"
	"github.com/peterkuimelis/duelcore/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error
	switch cmd {
	case "lint":
		err = runLint(os.Args[2:])
	case "play":
		err = runPlay(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  duelctl lint [--cards FILE] [--decks FILE]")
	fmt.Println("  duelctl play [--cards FILE] [--decks FILE] [--deck1 NAME] [--deck2 NAME] [--seed N] [--transcript FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  lint    Check a card catalog and deck file, reporting every bad definition")
	fmt.Println("  play    Play a hot-seat match in this terminal")
}

func runLint(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	cardsFile := fs.String("cards", "data/cards.yaml", "path to card catalog")
	decksFile := fs.String("decks", "", "path to decks file (optional)")
	fs.Parse(args)

	cat, err := game.LoadCatalog(*cardsFile)
	if err != nil {
		var de *game.DefinitionError
		if !errors.As(err, &de) {
			return err
		}
		// errors.Join keeps one line per definition error
		fmt.Println(err)
		return fmt.Errorf("%s: catalog has invalid definitions", *cardsFile)
	}
	fmt.Printf("%s: %d cards OK\n", *cardsFile, cat.Len())

	if *decksFile == "" {
		return nil
	}
	decks, err := game.LoadDecks(*decksFile, cat)
	if err != nil {
		return err
	}
	for _, d := range decks {
		fmt.Printf("  deck %-16s %d cards\n", d.Name, len(d.Cards))
	}
	return nil
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cardsFile := fs.String("cards", "data/cards.yaml", "path to card catalog")
	decksFile := fs.String("decks", "data/decks.yaml", "path to decks file")
	deck1 := fs.String("deck1", "", "deck name for player 1 (default: first deck)")
	deck2 := fs.String("deck2", "", "deck name for player 2 (default: second deck)")
	seed := fs.Uint64("seed", 0, "shuffle seed (0 = random)")
	transcript := fs.String("transcript", "", "write the event log to this file")
	fs.Parse(args)

	cat, err := game.LoadCatalog(*cardsFile)
	if err != nil {
		return err
	}
	decks, err := game.LoadDecks(*decksFile, cat)
	if err != nil {
		return err
	}
	d1, err := pickDeck(decks, *deck1, 0)
	if err != nil {
		return err
	}
	d2, err := pickDeck(decks, *deck2, 1)
	if err != nil {
		return err
	}

	svc := match.NewService(game.NewEngine(cat), store.NewMemoryStore(), nil)
	ctx := context.Background()
	ms, err := svc.CreateMatch(ctx, match.CreateRequest{
		Players: [2]string{"P1", "P2"},
		Decks:   [2][]string{d1.Cards, d2.Cards},
		Seed:    *seed,
	})
	if err != nil {
		return err
	}

	if *transcript != "" {
		f, err := os.Create(*transcript)
		if err != nil {
			return err
		}
		defer f.Close()
		stop := record(svc.Feed(ms.ID), log.NewTextLogger(f))
		defer stop()
	}
	return console.New(svc, os.Stdin, os.Stdout).Play(ctx, ms.ID)
}

// record copies the feed's backlog and every later event into sink until the
// returned func is called.
func record(feed *log.Broadcaster, sink log.EventLogger) func() {
	backlog, ch, cancel := feed.Replay(4096)
	for _, e := range backlog {
		sink.Log(e)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range ch {
			sink.Log(e)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func pickDeck(decks []game.Deck, name string, fallback int) (game.Deck, error) {
	if name != "" {
		return game.DeckByName(decks, name)
	}
	if len(decks) == 0 {
		return game.Deck{}, fmt.Errorf("no decks defined")
	}
	return decks[fallback%len(decks)], nil
}
