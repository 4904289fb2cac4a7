package dto

import "github.com/radieske/wager-settlement-poc/internal/bet-service/model"

// BetReceipt é a resposta do placeBet, com o saldo já debitado.
type BetReceipt struct {
	BetID             string  `json:"betId"`
	CombinedOdds      float64 `json:"combined_odds"`
	StakeCents        int64   `json:"stake_cents"`
	PotentialWinCents int64   `json:"potential_win_cents"`
	Currency          string  `json:"currency"`
	BalanceCents      int64   `json:"balance_cents"`
}

type BetListResponse struct {
	UserID string      `json:"userId"`
	Bets   []model.Bet `json:"bets"`
}

type HistoryResponse struct {
	UserID  string                  `json:"userId"`
	Entries []model.SettlementEntry `json:"entries"`
}
