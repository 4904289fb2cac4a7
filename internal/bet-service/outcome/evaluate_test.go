package outcome_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/wager-settlement-poc/internal/bet-service/model"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/outcome"
)

func intp(n int) *int { return &n }

func scored(kind model.MarketKind, outcomeKey string, gh, ga int) model.Selection {
	return model.Selection{
		EventID:    "E1",
		Kind:       kind,
		OutcomeKey: outcomeKey,
		GoalsHome:  intp(gh),
		GoalsAway:  intp(ga),
	}
}

func TestEvaluateSelectionMissingScore(t *testing.T) {
	s := model.Selection{Kind: model.MarketHeadToHead, OutcomeKey: "home"}
	assert.Equal(t, model.StatusPending, outcome.EvaluateSelection(s))

	s.GoalsHome = intp(2) // ainda falta o placar do visitante
	assert.Equal(t, model.StatusPending, outcome.EvaluateSelection(s))
}

func TestEvaluateHeadToHead(t *testing.T) {
	cases := []struct {
		name    string
		outcome string
		gh, ga  int
		want    model.BetStatus
	}{
		{"home wins, picked home", "home", 2, 1, model.StatusWon},
		{"home wins, picked away", "away", 2, 1, model.StatusLost},
		{"away wins, picked away", "away", 0, 3, model.StatusWon},
		{"draw, picked draw", "draw", 1, 1, model.StatusWon},
		{"draw, picked home", "home", 1, 1, model.StatusLost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := outcome.EvaluateSelection(scored(model.MarketHeadToHead, tc.outcome, tc.gh, tc.ga))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateTotals(t *testing.T) {
	withLine := func(outcomeKey, line string, gh, ga int) model.Selection {
		s := scored(model.MarketTotals, outcomeKey, gh, ga)
		s.Line = line
		return s
	}

	assert.Equal(t, model.StatusWon, outcome.EvaluateSelection(withLine("over", "2.5", 2, 1)))
	assert.Equal(t, model.StatusLost, outcome.EvaluateSelection(withLine("over", "2.5", 1, 1)))
	assert.Equal(t, model.StatusWon, outcome.EvaluateSelection(withLine("under", "2.5", 1, 1)))
	assert.Equal(t, model.StatusLost, outcome.EvaluateSelection(withLine("under", "2.5", 2, 1)))

	// total exatamente na linha resolve como lost para os dois lados
	assert.Equal(t, model.StatusLost, outcome.EvaluateSelection(withLine("over", "3", 2, 1)))
	assert.Equal(t, model.StatusLost, outcome.EvaluateSelection(withLine("under", "3", 2, 1)))

	// linha ilegível não liquida
	assert.Equal(t, model.StatusPending, outcome.EvaluateSelection(withLine("over", "abc", 2, 1)))
	assert.Equal(t, model.StatusPending, outcome.EvaluateSelection(withLine("over", "", 2, 1)))
}

func TestEvaluateBothTeamsScore(t *testing.T) {
	assert.Equal(t, model.StatusWon, outcome.EvaluateSelection(scored(model.MarketBothTeamsScore, "yes", 1, 2)))
	assert.Equal(t, model.StatusLost, outcome.EvaluateSelection(scored(model.MarketBothTeamsScore, "yes", 0, 2)))
	assert.Equal(t, model.StatusWon, outcome.EvaluateSelection(scored(model.MarketBothTeamsScore, "no", 0, 0)))
	assert.Equal(t, model.StatusLost, outcome.EvaluateSelection(scored(model.MarketBothTeamsScore, "no", 1, 1)))
}

func TestEvaluateUnknownMarketNeverResolves(t *testing.T) {
	s := scored(model.MarketUnknown, "home", 2, 0)
	assert.Equal(t, model.StatusPending, outcome.EvaluateSelection(s))
}

func TestComputeOverallStatusPriority(t *testing.T) {
	withStatus := func(statuses ...model.BetStatus) []model.Selection {
		out := make([]model.Selection, len(statuses))
		for i, st := range statuses {
			out[i] = model.Selection{Status: st}
		}
		return out
	}

	cases := []struct {
		name string
		in   []model.Selection
		want model.BetStatus
	}{
		{"lost beats everything", withStatus(model.StatusWon, model.StatusLost, model.StatusPending), model.StatusLost},
		{"won plus void without lost stays pending", withStatus(model.StatusWon, model.StatusWon, model.StatusVoid), model.StatusPending},
		{"all void", withStatus(model.StatusVoid, model.StatusVoid), model.StatusVoid},
		{"won plus pending stays pending", withStatus(model.StatusWon, model.StatusPending), model.StatusPending},
		{"all won", withStatus(model.StatusWon, model.StatusWon), model.StatusWon},
		{"empty is pending", nil, model.StatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, outcome.ComputeOverallStatus(tc.in))
		})
	}
}
