package selection_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/wager-settlement-poc/internal/bet-service/model"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/selection"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func sel(eventID string, price float64) model.Selection {
	return model.Selection{
		EventID:    eventID,
		Market:     "1x2",
		OutcomeKey: "home",
		Price:      price,
	}
}

func TestNormalizeRejectsEmptyList(t *testing.T) {
	n := selection.NewNormalizer(30)

	_, err := n.Normalize(nil)
	assert.ErrorIs(t, err, selection.ErrEmptySelections)

	_, err = n.Normalize([]model.Selection{})
	assert.ErrorIs(t, err, selection.ErrEmptySelections)
}

func TestNormalizeRejectsMissingFields(t *testing.T) {
	n := selection.NewNormalizer(30)

	cases := []struct {
		name  string
		in    model.Selection
		field string
	}{
		{"no eventId", model.Selection{Market: "1x2", OutcomeKey: "home", Price: 2.0}, "eventId"},
		{"no market", model.Selection{EventID: "E1", OutcomeKey: "home", Price: 2.0}, "market"},
		{"no outcomeKey", model.Selection{EventID: "E1", Market: "1x2", Price: 2.0}, "outcomeKey"},
		{"price below 1", sel("E1", 0.99), "price"},
		{"price zero", sel("E1", 0), "price"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize([]model.Selection{tc.in})
			var invalid *selection.InvalidSelectionError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tc.field, invalid.Field)
		})
	}
}

func TestNormalizeOneSelectionPerEvent(t *testing.T) {
	n := selection.NewNormalizer(30)

	out, err := n.Normalize([]model.Selection{sel("A", 2.0), sel("A", 1.8)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1.8, out[0].Price) // a última submissão vence
}

func TestNormalizeMaxSelectionsAfterDedupe(t *testing.T) {
	n := selection.NewNormalizer(2)

	// três eventos distintos estoura o limite
	_, err := n.Normalize([]model.Selection{sel("A", 2.0), sel("B", 2.0), sel("C", 2.0)})
	assert.ErrorIs(t, err, selection.ErrTooManySelections)

	// com dedupe sobram duas pernas, dentro do limite
	out, err := n.Normalize([]model.Selection{sel("A", 2.0), sel("B", 2.0), sel("A", 1.5)})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestNormalizeRoundsPriceAndResolvesKind(t *testing.T) {
	n := selection.NewNormalizer(30)

	out, err := n.Normalize([]model.Selection{{
		EventID:    " E1 ",
		Market:     "Total goals Over/Under",
		OutcomeKey: "over",
		Price:      1.85719,
		Line:       "2.5",
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "E1", out[0].EventID)
	assert.Equal(t, 1.8572, out[0].Price)
	assert.Equal(t, model.MarketTotals, out[0].Kind)
	assert.Equal(t, model.StatusPending, out[0].Status)
}

func TestCombinedOdds(t *testing.T) {
	sels := []model.Selection{sel("A", 2.0), sel("B", 1.5), sel("C", 3.0)}

	odds := selection.CombinedOdds(sels)
	assert.True(t, odds.Equal(decimalFromString(t, "9")))

	// aposta simples: cotação combinada igual ao price
	single := selection.CombinedOdds([]model.Selection{sel("A", 2.5)})
	assert.True(t, single.Equal(decimalFromString(t, "2.5")))
}

func TestPotentialWinFloors(t *testing.T) {
	odds := selection.CombinedOdds([]model.Selection{sel("A", 2.5)})
	assert.Equal(t, int64(2500), selection.PotentialWinCents(1000, odds))

	// floor(1000 * 1.9999) = 1999
	odds = selection.CombinedOdds([]model.Selection{sel("A", 1.9999)})
	assert.Equal(t, int64(1999), selection.PotentialWinCents(1000, odds))
}

func TestResolveMarketKind(t *testing.T) {
	assert.Equal(t, model.MarketHeadToHead, selection.ResolveMarketKind("Match result (1x2)"))
	assert.Equal(t, model.MarketHeadToHead, selection.ResolveMarketKind("h2h"))
	assert.Equal(t, model.MarketTotals, selection.ResolveMarketKind("Over/Under 2.5"))
	assert.Equal(t, model.MarketBothTeamsScore, selection.ResolveMarketKind("Both teams to score"))
	assert.Equal(t, model.MarketUnknown, selection.ResolveMarketKind("Double chance"))
	assert.Equal(t, model.MarketUnknown, selection.ResolveMarketKind("Draw no bet"))
}
