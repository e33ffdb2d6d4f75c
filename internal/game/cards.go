package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var ErrEmptyCatalog = errors.New("card catalog is empty")

// Card is one drawable card: a handful of candidate words the picker
// chooses from. Immutable after load.
type Card struct {
	ID    string   `json:"id"`
	Words []string `json:"words"`
}

type catalogFile struct {
	Cards []Card `json:"cards"`
}

// Catalog is the full card deck, loaded once at startup.
type Catalog struct {
	cards []Card
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading card catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing card catalog: %w", err)
	}

	cards := lo.Filter(file.Cards, func(c Card, _ int) bool {
		if c.ID == "" || len(c.Words) == 0 {
			log.Warn().Str("card", c.ID).Msg("skipping card with missing id or empty word list")
			return false
		}
		return true
	})

	if len(cards) == 0 {
		return nil, ErrEmptyCatalog
	}

	log.Info().Int("cards", len(cards)).Msg("card catalog loaded")
	return &Catalog{cards: cards}, nil
}

func NewCatalog(cards []Card) *Catalog {
	return &Catalog{cards: cards}
}

func (c *Catalog) Size() int {
	return len(c.cards)
}

// Pick chooses uniformly among cards whose id is not in used. When the
// whole deck has been used, used is reset and the full deck is back in
// play, so a card never repeats within one exhaustion cycle. The chosen
// id is recorded in used.
func (c *Catalog) Pick(used map[string]struct{}) Card {
	available := lo.Filter(c.cards, func(card Card, _ int) bool {
		_, taken := used[card.ID]
		return !taken
	})

	if len(available) == 0 {
		for id := range used {
			delete(used, id)
		}
		available = c.cards
	}

	card := available[rand.IntN(len(available))]
	used[card.ID] = struct{}{}
	return card
}
