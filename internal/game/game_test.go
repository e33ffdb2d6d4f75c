package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const testDrawTime = 40 * time.Second

func testPlayers(n int) []PlayerInfo {
	names := []string{"Alice", "Bob", "Chloe", "David", "Emma", "Felix"}
	players := make([]PlayerInfo, n)
	for i := range players {
		players[i] = PlayerInfo{ID: names[i][:1], Name: names[i]}
	}
	return players
}

func newStartedGame(t *testing.T, n int) *Game {
	t.Helper()
	g := NewGame(testPlayers(n), testDrawTime)
	g.PickCard(NewCatalog([]Card{{ID: "c1", Words: []string{"chat", "fusée", "phare"}}}))
	return g
}

func TestChooseWord(t *testing.T) {
	tests := []struct {
		desc         string
		actorID      string
		wordIndex    int
		designatedID string
		want         bool
	}{
		{desc: "picker chooses a valid word and drawer", actorID: "A", wordIndex: 1, designatedID: "B", want: true},
		{desc: "non-picker cannot choose", actorID: "B", wordIndex: 0, designatedID: "C", want: false},
		{desc: "word index out of range", actorID: "A", wordIndex: 3, designatedID: "B", want: false},
		{desc: "negative word index", actorID: "A", wordIndex: -1, designatedID: "B", want: false},
		{desc: "picker cannot designate themself", actorID: "A", wordIndex: 0, designatedID: "A", want: false},
		{desc: "unknown designated player", actorID: "A", wordIndex: 0, designatedID: "Z", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			g := newStartedGame(t, 3)
			got := g.ChooseWord(tt.actorID, tt.wordIndex, tt.designatedID, testStart)
			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.Equal(t, PhaseDrawingDesignated, g.Phase())
				assert.Equal(t, tt.designatedID, g.DrawerID())
				assert.Equal(t, "fusée", g.CurrentWord())
				assert.Equal(t, 40, g.Remaining(testStart))
			} else {
				assert.Equal(t, PhaseChoosing, g.Phase())
				assert.Empty(t, g.CurrentWord())
			}
		})
	}
}

func TestChooseWordOnlyOnce(t *testing.T) {
	g := newStartedGame(t, 3)
	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	assert.False(t, g.ChooseWord("A", 1, "C", testStart), "second choice must be rejected outside choosing")
	assert.Equal(t, "chat", g.CurrentWord())
}

func TestCheckGuess(t *testing.T) {
	tests := []struct {
		desc     string
		playerID string
		guess    string
		want     bool
	}{
		{desc: "eligible guesser with exact word", playerID: "C", guess: "chat", want: true},
		{desc: "case folded and trimmed", playerID: "C", guess: "  CHAT ", want: true},
		{desc: "wrong word", playerID: "C", guess: "chien", want: false},
		{desc: "drawer cannot guess", playerID: "B", guess: "chat", want: false},
		{desc: "picker cannot guess", playerID: "A", guess: "chat", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			g := newStartedGame(t, 3)
			require.True(t, g.ChooseWord("A", 0, "B", testStart))

			got := g.CheckGuess(tt.playerID, tt.guess)
			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.Equal(t, PhaseRoundEnd, g.Phase())
				assert.Equal(t, 1, g.Score("B"), "the designated drawer takes the point")
				assert.Equal(t, 0, g.Score(tt.playerID), "the guesser never scores")
			} else {
				assert.Equal(t, PhaseDrawingDesignated, g.Phase())
				assert.Zero(t, g.Score("B"))
			}
		})
	}
}

func TestCheckGuessOutsideDrawingPhase(t *testing.T) {
	g := newStartedGame(t, 3)
	assert.False(t, g.CheckGuess("C", "chat"), "no guessing during choosing")
}

func TestCheckGuessOnlyFirstCorrectCounts(t *testing.T) {
	g := newStartedGame(t, 4)
	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	require.True(t, g.CheckGuess("C", "chat"))
	assert.False(t, g.CheckGuess("D", "chat"))
	assert.Equal(t, 1, g.Score("B"))
}

func TestDeadlineDrawerSwitch(t *testing.T) {
	g := newStartedGame(t, 3)
	require.True(t, g.ChooseWord("A", 0, "B", testStart))

	late := testStart.Add(testDrawTime)
	assert.Equal(t, TimeoutDrawerSwitched, g.CheckDeadline(late))
	assert.Equal(t, PhaseDrawingPicker, g.Phase())
	assert.Equal(t, "A", g.DrawerID(), "the picker takes over the pen")
	assert.Equal(t, 40, g.Remaining(late), "the clock restarts for the picker")
	assert.Zero(t, g.Score("B"))

	// Same instant again: nothing more expires.
	assert.Equal(t, TimeoutNone, g.CheckDeadline(late))
}

func TestDeadlineDoubleTimeoutConsolation(t *testing.T) {
	g := newStartedGame(t, 3)
	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	require.Equal(t, TimeoutDrawerSwitched, g.CheckDeadline(testStart.Add(testDrawTime)))

	assert.Equal(t, TimeoutRoundEnded, g.CheckDeadline(testStart.Add(2*testDrawTime)))
	assert.Equal(t, PhaseRoundEnd, g.Phase())
	assert.Equal(t, 1, g.Score("B"), "consolation point goes to the designated player")
	assert.Zero(t, g.Score("A"))
	assert.Zero(t, g.Remaining(testStart.Add(2*testDrawTime)))
}

func TestDeadlineNotElapsed(t *testing.T) {
	g := newStartedGame(t, 3)
	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	assert.Equal(t, TimeoutNone, g.CheckDeadline(testStart.Add(testDrawTime-time.Second)))
	assert.Equal(t, PhaseDrawingDesignated, g.Phase())
}

func TestGuessDuringPickerPhaseCreditsPicker(t *testing.T) {
	g := newStartedGame(t, 3)
	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	require.Equal(t, TimeoutDrawerSwitched, g.CheckDeadline(testStart.Add(testDrawTime)))

	require.True(t, g.CheckGuess("C", "chat"))
	assert.Equal(t, PhaseRoundEnd, g.Phase())
	assert.Equal(t, 1, g.Score("A"), "the picker drew, the picker scores")
	assert.Zero(t, g.Score("B"))
}

func TestNextTurnRotationAndGameOver(t *testing.T) {
	catalog := NewCatalog([]Card{
		{ID: "c1", Words: []string{"chat"}},
		{ID: "c2", Words: []string{"phare"}},
	})
	players := testPlayers(2)
	g := NewGame(players, testDrawTime)
	g.PickCard(catalog)

	// Two players, two rounds, four turns total.
	pickers := []string{"A", "B", "A", "B"}
	now := testStart
	for turn, wantPicker := range pickers {
		require.Equal(t, wantPicker, g.PickerID(), "turn %d", turn)
		require.Equal(t, PhaseChoosing, g.Phase())

		other := "B"
		if wantPicker == "B" {
			other = "A"
		}
		require.True(t, g.ChooseWord(wantPicker, 0, other, now))
		require.Equal(t, TimeoutDrawerSwitched, g.CheckDeadline(now.Add(testDrawTime)))
		require.Equal(t, TimeoutRoundEnded, g.CheckDeadline(now.Add(2*testDrawTime)))
		now = now.Add(3 * testDrawTime)

		require.True(t, g.NextTurn())
		if g.Phase() == PhaseChoosing {
			g.PickCard(catalog)
		}
	}

	assert.Equal(t, PhaseGameOver, g.Phase())
	assert.False(t, g.NextTurn(), "game over is terminal")
	assert.Equal(t, PhaseGameOver, g.Phase())

	// Every turn ended in a double timeout: one consolation point each
	// time, handed to the designated player.
	assert.Equal(t, 2, g.Score("A"))
	assert.Equal(t, 2, g.Score("B"))
}

func TestNextTurnOnlyFromRoundEnd(t *testing.T) {
	g := newStartedGame(t, 3)
	assert.False(t, g.NextTurn(), "no skipping the choosing phase")

	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	assert.False(t, g.NextTurn(), "no skipping an active drawing phase")
}

func TestNextTurnResetsTurnState(t *testing.T) {
	g := newStartedGame(t, 3)
	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	require.True(t, g.CheckGuess("C", "chat"))

	require.True(t, g.NextTurn())
	assert.Equal(t, "B", g.PickerID())
	assert.Equal(t, 1, g.Round())
	assert.Empty(t, g.CurrentWord())
	assert.Empty(t, g.DrawerID())
	assert.Equal(t, PhaseChoosing, g.Phase())
}

func TestAppendStroke(t *testing.T) {
	stroke := json.RawMessage(`{"x":1,"y":2}`)

	g := newStartedGame(t, 3)
	assert.False(t, g.AppendStroke("B", stroke), "no drawing before a word is chosen")

	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	assert.True(t, g.AppendStroke("B", stroke))
	assert.False(t, g.AppendStroke("C", stroke), "only the drawer draws")
	assert.False(t, g.AppendStroke("B", nil))
}

func TestClearCanvas(t *testing.T) {
	g := newStartedGame(t, 3)
	assert.False(t, g.ClearCanvas("B"))

	require.True(t, g.ChooseWord("A", 0, "B", testStart))
	assert.False(t, g.ClearCanvas("A"), "the picker is not the drawer yet")
	assert.True(t, g.ClearCanvas("B"))
}

func TestWordHint(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{word: "chat", want: "_ _ _ _"},
		{word: "la mer", want: "_ _   _ _ _"},
		{word: "fusée", want: "_ _ _ _ _"},
		{word: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			g := NewGame(testPlayers(2), testDrawTime)
			g.currentWord = tt.word
			assert.Equal(t, tt.want, g.WordHint())
		})
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	g := newStartedGame(t, 3)
	require.True(t, g.ChooseWord("A", 0, "B", testStart))

	assert.Equal(t, 40, g.Remaining(testStart))
	assert.Equal(t, 25, g.Remaining(testStart.Add(15*time.Second)))
	assert.Equal(t, 0, g.Remaining(testStart.Add(2*time.Minute)))
}
