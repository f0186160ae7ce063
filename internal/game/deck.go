package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry represents a card ID and its count in a deck.
type CardEntry struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// Deck is a named list of card IDs, expanded by count.
type Deck struct {
	Name  string
	Cards []string
}

// ParseDecks parses a YAML deck file and checks every card against the catalog.
func ParseDecks(data []byte, cat *Catalog) ([]Deck, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}

	decks := make([]Deck, 0, len(df.Decks))
	for _, entry := range df.Decks {
		deck := Deck{Name: entry.Name}
		for _, ce := range entry.Cards {
			if _, ok := cat.Card(ce.ID); !ok {
				return nil, fmt.Errorf("deck %q: unknown card %q", entry.Name, ce.ID)
			}
			if ce.Count < 1 || ce.Count > 3 {
				return nil, fmt.Errorf("deck %q: card %q count must be 1-3, got %d", entry.Name, ce.ID, ce.Count)
			}
			for i := 0; i < ce.Count; i++ {
				deck.Cards = append(deck.Cards, ce.ID)
			}
		}
		decks = append(decks, deck)
	}
	return decks, nil
}

// LoadDecks reads a YAML deck file.
func LoadDecks(path string, cat *Catalog) ([]Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDecks(data, cat)
}

// DeckByName returns the named deck from a list.
func DeckByName(decks []Deck, name string) (Deck, error) {
	for _, d := range decks {
		if d.Name == name {
			return d, nil
		}
	}
	return Deck{}, fmt.Errorf("deck %q not found (have %d decks)", name, len(decks))
}
