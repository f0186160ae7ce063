package game

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CardDef is a validated card definition.
type CardDef struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Kind        CardKind     `json:"kind"`
	Level       int          `json:"level,omitempty"`
	Race        string       `json:"race,omitempty"`
	ATK         int          `json:"atk,omitempty"`
	DEF         int          `json:"def,omitempty"`
	SpellSub    SpellSubtype `json:"spell_subtype,omitempty"`
	TrapSub     TrapSubtype  `json:"trap_subtype,omitempty"`

	Piercing        bool `json:"piercing,omitempty"`
	NoBattleDestroy bool `json:"no_battle_destroy,omitempty"`
	NoEffectDestroy bool `json:"no_effect_destroy,omitempty"`
	Untargetable    bool `json:"untargetable,omitempty"`

	Effects []Effect `json:"effects,omitempty"`
}

// TributesRequired returns the number of tributes needed to normal summon.
func (c *CardDef) TributesRequired() int {
	if c.Kind != KindCreature {
		return 0
	}
	switch {
	case c.Level >= 7:
		return 2
	case c.Level >= 5:
		return 1
	}
	return 0
}

// persistent reports whether the card stays on the field after it resolves.
func (c *CardDef) persistent() bool {
	switch c.Kind {
	case KindCreature:
		return true
	case KindSpell:
		return c.SpellSub == SpellContinuous || c.SpellSub == SpellField
	case KindTrap:
		return c.TrapSub == TrapContinuous
	}
	return false
}

// manualEffect reports whether the card has an effect its controller can activate.
func (c *CardDef) manualEffect() bool {
	for _, e := range c.Effects {
		if e.Trigger == TriggerManual {
			return true
		}
	}
	return false
}

func (c *CardDef) subtypeName() string {
	switch c.Kind {
	case KindSpell:
		return spellSubNames[c.SpellSub]
	case KindTrap:
		return trapSubNames[c.TrapSub]
	}
	return "creature"
}

var (
	spellSubNames = [...]string{SpellNormal: "normal", SpellQuickPlay: "quick_play", SpellContinuous: "continuous", SpellField: "field"}
	trapSubNames  = [...]string{TrapNormal: "normal", TrapContinuous: "continuous", TrapCounter: "counter"}
)

// RawCard is a card entry as written in a catalog file.
type RawCard struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Description     string      `yaml:"description"`
	Kind            string      `yaml:"kind"`
	Subtype         string      `yaml:"subtype"`
	Level           int         `yaml:"level"`
	Race            string      `yaml:"race"`
	Attack          int         `yaml:"attack"`
	Defense         int         `yaml:"defense"`
	Piercing        bool        `yaml:"piercing"`
	NoBattleDestroy bool        `yaml:"no_battle_destroy"`
	NoEffectDestroy bool        `yaml:"no_effect_destroy"`
	Untargetable    bool        `yaml:"untargetable"`
	Effects         []RawEffect `yaml:"effects"`
}

// CatalogFile is the top-level YAML structure of a card catalog.
type CatalogFile struct {
	Cards []RawCard `yaml:"cards"`
}

// Catalog is an immutable set of validated card definitions.
type Catalog struct {
	cards map[string]*CardDef
	order []string
}

// Card looks up a definition by ID.
func (c *Catalog) Card(id string) (*CardDef, bool) {
	def, ok := c.cards[id]
	return def, ok
}

// Cards returns all definitions in file order.
func (c *Catalog) Cards() []*CardDef {
	out := make([]*CardDef, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.cards[id])
	}
	return out
}

// InstanceName returns the display name of card instance id in ms.
func (c *Catalog) InstanceName(ms *MatchState, id int) string {
	return cardName(ms, c, id)
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

// NewCatalog builds a catalog from already typed definitions, checking each
// effect the same way file-loaded cards are checked.
func NewCatalog(defs ...*CardDef) (*Catalog, error) {
	cat := &Catalog{cards: make(map[string]*CardDef)}
	var errs []error
	for _, def := range defs {
		if err := checkCard(def); err != nil {
			errs = append(errs, err)
			continue
		}
		var bad bool
		for i := range def.Effects {
			if err := checkEffect(def, i, &def.Effects[i]); err != nil {
				errs = append(errs, err)
				bad = true
			}
		}
		if bad {
			continue
		}
		if err := checkActivatable(def); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := cat.add(def); err != nil {
			errs = append(errs, err)
		}
	}
	return cat, errors.Join(errs...)
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog validates every card in a YAML catalog. The returned catalog
// holds the cards that passed; the error joins one *DefinitionError per problem.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	cat := &Catalog{cards: make(map[string]*CardDef)}
	var errs []error
	for _, rc := range cf.Cards {
		def, err := convertCard(rc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := cat.add(def); err != nil {
			errs = append(errs, err)
		}
	}
	return cat, errors.Join(errs...)
}

func (c *Catalog) add(def *CardDef) error {
	if _, dup := c.cards[def.ID]; dup {
		return &DefinitionError{Card: def.ID, Field: "id", Msg: "duplicate card id"}
	}
	c.cards[def.ID] = def
	c.order = append(c.order, def.ID)
	return nil
}

func convertCard(rc RawCard) (*CardDef, error) {
	def := &CardDef{
		ID:              rc.ID,
		Name:            rc.Name,
		Description:     rc.Description,
		Level:           rc.Level,
		Race:            rc.Race,
		ATK:             rc.Attack,
		DEF:             rc.Defense,
		Piercing:        rc.Piercing,
		NoBattleDestroy: rc.NoBattleDestroy,
		NoEffectDestroy: rc.NoEffectDestroy,
		Untargetable:    rc.Untargetable,
	}
	switch rc.Kind {
	case "creature":
		def.Kind = KindCreature
		if rc.Subtype != "" {
			return nil, &DefinitionError{Card: rc.ID, Field: "subtype", Msg: "creatures have no subtype"}
		}
	case "spell":
		def.Kind = KindSpell
		sub, ok := lookupName(spellSubNames[:], orDefault(rc.Subtype, "normal"))
		if !ok {
			return nil, &DefinitionError{Card: rc.ID, Field: "subtype", Msg: fmt.Sprintf("unknown spell subtype %q", rc.Subtype)}
		}
		def.SpellSub = SpellSubtype(sub)
	case "trap":
		def.Kind = KindTrap
		sub, ok := lookupName(trapSubNames[:], orDefault(rc.Subtype, "normal"))
		if !ok {
			return nil, &DefinitionError{Card: rc.ID, Field: "subtype", Msg: fmt.Sprintf("unknown trap subtype %q", rc.Subtype)}
		}
		def.TrapSub = TrapSubtype(sub)
	default:
		return nil, &DefinitionError{Card: rc.ID, Field: "kind", Msg: fmt.Sprintf("unknown card kind %q", rc.Kind)}
	}
	if err := checkCard(def); err != nil {
		return nil, err
	}
	effects, err := ValidateEffects(def, rc.Effects)
	if err != nil {
		return nil, err
	}
	def.Effects = effects
	if err := checkActivatable(def); err != nil {
		return nil, err
	}
	return def, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// checkCard validates the card-level fields of a definition.
func checkCard(def *CardDef) error {
	fail := func(field, format string, args ...any) error {
		return &DefinitionError{Card: def.ID, Field: field, Msg: fmt.Sprintf(format, args...)}
	}
	if def.ID == "" {
		return fail("id", "required")
	}
	if def.Name == "" {
		return fail("name", "required")
	}
	if def.Kind == KindCreature {
		if def.Level < 1 || def.Level > 12 {
			return fail("level", "must be between 1 and 12, got %d", def.Level)
		}
		if def.ATK < 0 || def.ATK > 10000 {
			return fail("attack", "must be between 0 and 10000, got %d", def.ATK)
		}
		if def.DEF < 0 || def.DEF > 10000 {
			return fail("defense", "must be between 0 and 10000, got %d", def.DEF)
		}
		return nil
	}
	if def.Level != 0 || def.ATK != 0 || def.DEF != 0 {
		return fail("level", "only creatures have level and stats")
	}
	if def.Piercing || def.NoBattleDestroy || def.NoEffectDestroy || def.Untargetable {
		return fail("kind", "rule flags only apply to creatures")
	}
	return nil
}

// checkActivatable rejects one-shot spells that would do nothing.
func checkActivatable(def *CardDef) error {
	if def.Kind == KindSpell && !def.persistent() && len(def.Effects) == 0 {
		return &DefinitionError{Card: def.ID, Field: "effects", Msg: fmt.Sprintf("a %s spell needs at least one effect", def.subtypeName())}
	}
	return nil
}

// Names returns every card name in the catalog, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.cards))
	for _, def := range c.cards {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}
