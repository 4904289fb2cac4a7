package selection

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/radieske/wager-settlement-poc/internal/bet-service/model"
)

const pricePrecision = 4

var (
	ErrEmptySelections   = errors.New("empty selections")
	ErrTooManySelections = errors.New("too many selections")
)

// InvalidSelectionError aponta o campo ofensor da perna rejeitada.
type InvalidSelectionError struct {
	Field string
}

func (e *InvalidSelectionError) Error() string {
	return "invalid selection: " + e.Field
}

// Normalizer valida e deduplica a lista bruta de pernas de uma aposta.
type Normalizer struct {
	maxSelections int
}

func NewNormalizer(maxSelections int) *Normalizer {
	if maxSelections <= 0 {
		maxSelections = 30
	}
	return &Normalizer{maxSelections: maxSelections}
}

// Normalize aplica o contrato da aposta sobre a lista bruta:
// campos obrigatórios, price finito >= 1 arredondado em 4 casas,
// no máximo uma perna por evento (a última submissão vence) e
// limite de pernas após o dedupe.
func (n *Normalizer) Normalize(raw []model.Selection) ([]model.Selection, error) {
	if len(raw) == 0 {
		return nil, ErrEmptySelections
	}

	out := make([]model.Selection, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		s := model.Selection{
			EventID:    strings.TrimSpace(r.EventID),
			Market:     strings.TrimSpace(r.Market),
			OutcomeKey: strings.TrimSpace(r.OutcomeKey),
			Price:      r.Price,
			Line:       strings.TrimSpace(r.Line),
			Bookmaker:  strings.TrimSpace(r.Bookmaker),
			Label:      strings.TrimSpace(r.Label),
			Home:       strings.TrimSpace(r.Home),
			Away:       strings.TrimSpace(r.Away),
			Status:     model.StatusPending,
		}

		switch {
		case s.EventID == "":
			return nil, &InvalidSelectionError{Field: "eventId"}
		case s.Market == "":
			return nil, &InvalidSelectionError{Field: "market"}
		case s.OutcomeKey == "":
			return nil, &InvalidSelectionError{Field: "outcomeKey"}
		}
		if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) || s.Price < 1 {
			return nil, &InvalidSelectionError{Field: "price"}
		}

		s.Price = roundPrice(s.Price)
		s.Kind = ResolveMarketKind(s.Market)
		if s.Label == "" {
			s.Label = fmt.Sprintf("%s @ %v", s.OutcomeKey, s.Price)
		}

		// uma perna por evento: descarta a anterior se o evento repetir
		if seen[s.EventID] {
			for i := range out {
				if out[i].EventID == s.EventID {
					out = append(out[:i], out[i+1:]...)
					break
				}
			}
		}
		seen[s.EventID] = true
		out = append(out, s)
	}

	if len(out) > n.maxSelections {
		return nil, ErrTooManySelections
	}

	return out, nil
}

// CombinedOdds é o produto das cotações das pernas, em 4 casas.
// Aposta simples tem cotação combinada igual ao próprio price.
func CombinedOdds(sels []model.Selection) decimal.Decimal {
	mul := decimal.NewFromInt(1)
	for _, s := range sels {
		mul = mul.Mul(decimal.NewFromFloat(s.Price))
	}
	return mul.Round(pricePrecision)
}

// PotentialWinCents calcula floor(stake * odds) em centavos.
func PotentialWinCents(stakeCents int64, odds decimal.Decimal) int64 {
	return decimal.NewFromInt(stakeCents).Mul(odds).Floor().IntPart()
}

// ResolveMarketKind converte o rótulo livre do mercado no enum fechado.
// Rótulos não reconhecidos viram MarketUnknown e nunca liquidam sozinhos.
func ResolveMarketKind(market string) model.MarketKind {
	m := strings.ToLower(market)
	switch {
	case strings.Contains(m, "1x2"), strings.Contains(m, "h2h"), strings.Contains(m, "head"):
		return model.MarketHeadToHead
	case strings.Contains(m, "over"), strings.Contains(m, "under"), strings.Contains(m, "total"):
		return model.MarketTotals
	case strings.Contains(m, "both"), strings.Contains(m, "btts"):
		return model.MarketBothTeamsScore
	default:
		return model.MarketUnknown
	}
}

func roundPrice(p float64) float64 {
	f, _ := decimal.NewFromFloat(p).Round(pricePrecision).Float64()
	return f
}
