package game

import (
	"encoding/json"
	"strings"
	"time"
)

// Phase is the game's position in the turn cycle. The only legal cycle is
// round_end -> choosing on next-turn; game_over is terminal.
type Phase string

const (
	PhaseChoosing          Phase = "choosing"
	PhaseDrawingDesignated Phase = "drawing_designated"
	PhaseDrawingPicker     Phase = "drawing_picker"
	PhaseRoundEnd          Phase = "round_end"
	PhaseGameOver          Phase = "game_over"
)

// TimeoutResult reports what a deadline check did.
type TimeoutResult int

const (
	TimeoutNone TimeoutResult = iota
	// TimeoutDrawerSwitched: the designated player's time ran out, the
	// picker draws now. Clients should wipe their canvas.
	TimeoutDrawerSwitched
	// TimeoutRoundEnded: the picker's time also ran out; the designated
	// player takes the consolation point and the round is over.
	TimeoutRoundEnded
)

// Game holds the authoritative state of one match. Created exactly once
// when the session starts and never replaced. Turn order is the roster
// order frozen at start time, regardless of later disconnects.
//
// Not safe for concurrent use: the owning Session's lock serializes
// every access.
type Game struct {
	playerIDs   []string
	playerNames map[string]string
	scores      map[string]int

	pickerIndex int
	round       int
	totalRounds int
	phase       Phase

	currentCard  *Card
	currentWord  string
	usedCardIDs  map[string]struct{}
	designatedID string
	drawerID     string
	winnerID     string

	deadline time.Time
	guessed  bool
	drawTime time.Duration

	drawTrace []json.RawMessage
}

// NewGame captures the roster order as the fixed turn order. Every
// player is picker exactly once per round, and there is one round per
// player.
func NewGame(players []PlayerInfo, drawTime time.Duration) *Game {
	g := &Game{
		playerIDs:   make([]string, 0, len(players)),
		playerNames: make(map[string]string, len(players)),
		scores:      make(map[string]int, len(players)),
		round:       1,
		totalRounds: len(players),
		phase:       PhaseChoosing,
		usedCardIDs: make(map[string]struct{}),
		drawTime:    drawTime,
	}
	for _, p := range players {
		g.playerIDs = append(g.playerIDs, p.ID)
		g.playerNames[p.ID] = p.Name
		g.scores[p.ID] = 0
	}
	return g
}

func (g *Game) Phase() Phase { return g.phase }

func (g *Game) PickerID() string {
	return g.playerIDs[g.pickerIndex]
}

func (g *Game) DrawerID() string { return g.drawerID }

func (g *Game) CurrentWord() string { return g.currentWord }

func (g *Game) Round() int { return g.round }

func (g *Game) Score(playerID string) int { return g.scores[playerID] }

// PickCard draws the next card for the current turn. Called once at
// session start and once whenever a new turn reaches choosing.
func (g *Game) PickCard(catalog *Catalog) Card {
	card := catalog.Pick(g.usedCardIDs)
	g.currentCard = &card
	return card
}

// ChooseWord is the picker committing to a word and naming who draws it
// first. Any bad input is a silent no-op.
func (g *Game) ChooseWord(actorID string, wordIndex int, designatedID string, now time.Time) bool {
	if g.phase != PhaseChoosing || actorID != g.PickerID() || g.currentCard == nil {
		return false
	}
	if wordIndex < 0 || wordIndex >= len(g.currentCard.Words) {
		return false
	}
	if designatedID == g.PickerID() || !g.hasPlayer(designatedID) {
		return false
	}

	g.currentWord = g.currentCard.Words[wordIndex]
	g.designatedID = designatedID
	g.drawerID = designatedID
	g.phase = PhaseDrawingDesignated
	g.deadline = now.Add(g.drawTime)
	g.guessed = false
	g.winnerID = ""
	g.drawTrace = nil
	return true
}

// CheckGuess validates a guess against the current word. The drawer and
// the picker can never score a guess: the picker chose the word, the
// drawer is supposed to draw it. The first correct guess ends the
// sub-phase and credits the current drawer.
func (g *Game) CheckGuess(playerID, guess string) bool {
	if g.phase != PhaseDrawingDesignated && g.phase != PhaseDrawingPicker {
		return false
	}
	if g.guessed || playerID == g.drawerID || playerID == g.PickerID() {
		return false
	}
	if !wordsMatch(guess, g.currentWord) {
		return false
	}

	g.guessed = true
	if g.phase == PhaseDrawingDesignated {
		g.winnerID = g.designatedID
	} else {
		g.winnerID = g.PickerID()
	}
	g.scores[g.winnerID]++
	g.endDrawing()
	return true
}

// CheckDeadline applies the timeout transition if the live deadline has
// elapsed. Idempotent; the dispatcher runs it ahead of every command so
// the server stays authoritative over elapsed time.
func (g *Game) CheckDeadline(now time.Time) TimeoutResult {
	if g.deadline.IsZero() || now.Before(g.deadline) || g.guessed {
		return TimeoutNone
	}

	switch g.phase {
	case PhaseDrawingDesignated:
		// Designated player failed; the picker gets a shot at drawing.
		g.phase = PhaseDrawingPicker
		g.drawerID = g.PickerID()
		g.deadline = now.Add(g.drawTime)
		g.drawTrace = nil
		return TimeoutDrawerSwitched
	case PhaseDrawingPicker:
		// Nobody solved either drawing. Consolation point goes to the
		// designated player.
		g.winnerID = g.designatedID
		g.scores[g.designatedID]++
		g.endDrawing()
		return TimeoutRoundEnded
	}
	return TimeoutNone
}

func (g *Game) endDrawing() {
	g.phase = PhaseRoundEnd
	g.deadline = time.Time{}
}

// NextTurn advances the picker rotation. Only legal from round_end; the
// host-only guard lives in the dispatcher. Returns false when nothing
// changed. The round counter increments when the picker index wraps, and
// past the last round the game is over for good.
func (g *Game) NextTurn() bool {
	if g.phase != PhaseRoundEnd {
		return false
	}

	g.pickerIndex = (g.pickerIndex + 1) % len(g.playerIDs)
	if g.pickerIndex == 0 {
		g.round++
	}
	if g.round > g.totalRounds {
		g.phase = PhaseGameOver
		return true
	}

	g.phase = PhaseChoosing
	g.currentWord = ""
	g.currentCard = nil
	g.designatedID = ""
	g.drawerID = ""
	g.winnerID = ""
	g.drawTrace = nil
	return true
}

// AppendStroke records a drawing event for later canvas clears. Only the
// active drawer may draw, and only during a drawing phase.
func (g *Game) AppendStroke(playerID string, event json.RawMessage) bool {
	if g.phase != PhaseDrawingDesignated && g.phase != PhaseDrawingPicker {
		return false
	}
	if playerID != g.drawerID || len(event) == 0 {
		return false
	}
	g.drawTrace = append(g.drawTrace, event)
	return true
}

// ClearCanvas wipes the current drawing trace on the drawer's request.
func (g *Game) ClearCanvas(playerID string) bool {
	if playerID != g.drawerID || g.drawerID == "" {
		return false
	}
	g.drawTrace = nil
	return true
}

// Remaining is the number of whole seconds left on the live deadline,
// 0 outside drawing phases.
func (g *Game) Remaining(now time.Time) int {
	if g.deadline.IsZero() {
		return 0
	}
	remaining := int(g.deadline.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WordHint masks the secret word for ineligible viewers: one underscore
// per non-space character, spaces kept, everything joined by spaces.
func (g *Game) WordHint() string {
	if g.currentWord == "" {
		return ""
	}
	runes := []rune(g.currentWord)
	parts := make([]string, len(runes))
	for i, r := range runes {
		if r == ' ' {
			parts[i] = " "
		} else {
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}

func (g *Game) hasPlayer(id string) bool {
	_, ok := g.playerNames[id]
	return ok
}

// Guesses are compared after trimming surrounding whitespace and folding
// case. No fuzzy matching.
func wordsMatch(guess, word string) bool {
	return word != "" && strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(word))
}
