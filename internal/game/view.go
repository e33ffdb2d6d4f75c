package game

import (
	"time"

	"github.com/samber/lo"
)

// ViewState is what one viewer is allowed to see of the shared game
// state. Field names follow the client event contract.
type ViewState struct {
	Phase           Phase             `json:"phase"`
	Round           int               `json:"round"`
	TotalRounds     int               `json:"total_rounds"`
	PickerID        string            `json:"current_picker_id"`
	PickerName      string            `json:"current_picker_name"`
	DrawerID        string            `json:"current_drawer_id"`
	DrawerName      string            `json:"current_drawer_name"`
	DesignatedID    string            `json:"designated_player_id"`
	DesignatedName  string            `json:"designated_player_name"`
	Scores          map[string]int    `json:"scores"`
	PlayerNames     map[string]string `json:"player_names"`
	Guessed         bool              `json:"guessed"`
	RemainingTime   int               `json:"remaining_time"`
	NumPlayers      int               `json:"num_players"`
	PointWinnerID   string            `json:"point_winner_id"`
	PointWinnerName string            `json:"point_winner_name"`

	// Role-dependent fields. The word is only ever present for the
	// picker, the active drawer, or everyone once the round is over.
	CurrentWord       string       `json:"current_word,omitempty"`
	WordHint          string       `json:"word_hint,omitempty"`
	CardChoices       []string     `json:"card_choices,omitempty"`
	DesignablePlayers []PlayerInfo `json:"designable_players,omitempty"`
}

// View projects the game for one viewer. Pure: no mutation, the same
// inputs always produce the same view.
func (g *Game) View(viewerID string, now time.Time) ViewState {
	state := ViewState{
		Phase:           g.phase,
		Round:           g.round,
		TotalRounds:     g.totalRounds,
		PickerID:        g.PickerID(),
		PickerName:      g.playerNames[g.PickerID()],
		DrawerID:        g.drawerID,
		DrawerName:      g.playerNames[g.drawerID],
		DesignatedID:    g.designatedID,
		DesignatedName:  g.playerNames[g.designatedID],
		Scores:          copyScores(g.scores),
		PlayerNames:     copyNames(g.playerNames),
		Guessed:         g.guessed,
		RemainingTime:   g.Remaining(now),
		NumPlayers:      len(g.playerIDs),
		PointWinnerID:   g.winnerID,
		PointWinnerName: g.playerNames[g.winnerID],
	}

	switch viewerID {
	case g.PickerID():
		// The picker chose the word, nothing to hide from them. While
		// choosing they also see the card and who they may designate.
		state.CurrentWord = g.currentWord
		if g.phase == PhaseChoosing && g.currentCard != nil {
			state.CardChoices = append([]string(nil), g.currentCard.Words...)
			state.DesignablePlayers = g.designablePlayers()
		}
	case g.drawerID:
		state.CurrentWord = g.currentWord
	default:
		state.WordHint = g.WordHint()
	}

	// Round recap: everyone sees the word once the round is decided.
	if g.phase == PhaseRoundEnd || g.phase == PhaseGameOver {
		state.CurrentWord = g.currentWord
		state.WordHint = ""
	}

	return state
}

// designablePlayers is everyone the picker may pick as first drawer,
// i.e. all players but themself, in turn order.
func (g *Game) designablePlayers() []PlayerInfo {
	ids := lo.Filter(g.playerIDs, func(id string, _ int) bool {
		return id != g.PickerID()
	})
	return lo.Map(ids, func(id string, _ int) PlayerInfo {
		return PlayerInfo{ID: id, Name: g.playerNames[id]}
	})
}

func copyScores(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyNames(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
