package outcome

import (
	"strconv"
	"strings"

	"github.com/radieske/wager-settlement-poc/internal/bet-service/model"
)

// EvaluateSelection mapeia placar final + mercado para o status da perna.
// Função pura: sem placar completo o resultado é sempre pending.
func EvaluateSelection(sel model.Selection) model.BetStatus {
	if sel.GoalsHome == nil || sel.GoalsAway == nil {
		return model.StatusPending
	}
	home, away := *sel.GoalsHome, *sel.GoalsAway

	switch sel.Kind {
	case model.MarketHeadToHead:
		winner := "draw"
		if home > away {
			winner = "home"
		} else if away > home {
			winner = "away"
		}
		if strings.EqualFold(sel.OutcomeKey, winner) {
			return model.StatusWon
		}
		return model.StatusLost

	case model.MarketTotals:
		line, err := strconv.ParseFloat(strings.TrimSpace(sel.Line), 64)
		if err != nil {
			return model.StatusPending
		}
		total := float64(home + away)
		// total exatamente na linha resolve como lost (regra vigente)
		switch strings.ToLower(sel.OutcomeKey) {
		case "over":
			if total > line {
				return model.StatusWon
			}
			return model.StatusLost
		case "under":
			if total < line {
				return model.StatusWon
			}
			return model.StatusLost
		default:
			return model.StatusLost
		}

	case model.MarketBothTeamsScore:
		both := home > 0 && away > 0
		expectYes := strings.EqualFold(sel.OutcomeKey, "yes")
		if both == expectYes {
			return model.StatusWon
		}
		return model.StatusLost

	default:
		// mercado não reconhecido nunca liquida automaticamente
		return model.StatusPending
	}
}

// ComputeOverallStatus agrega os status das pernas no status da aposta.
// Prioridade estrita: qualquer lost derruba a aposta; won exige todas
// ganhas; void exige todas anuladas; o resto permanece pending.
func ComputeOverallStatus(sels []model.Selection) model.BetStatus {
	if len(sels) == 0 {
		return model.StatusPending
	}

	allWon, allVoid := true, true
	for _, s := range sels {
		if s.Status == model.StatusLost {
			return model.StatusLost
		}
		if s.Status != model.StatusWon {
			allWon = false
		}
		if s.Status != model.StatusVoid {
			allVoid = false
		}
	}

	if allWon {
		return model.StatusWon
	}
	if allVoid {
		return model.StatusVoid
	}
	return model.StatusPending
}
