package model

import "time"

// BetStatus vale tanto para a aposta quanto para cada perna.
type BetStatus string

const (
	StatusPending BetStatus = "pending"
	StatusWon     BetStatus = "won"
	StatusLost    BetStatus = "lost"
	StatusVoid    BetStatus = "void"
)

// Terminal indica se o status não admite mais mudanças.
func (s BetStatus) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusVoid
}

// MarketKind é o tipo fechado de mercado, resolvido uma única vez na
// normalização. O avaliador de resultado despacha somente sobre ele.
type MarketKind string

const (
	MarketHeadToHead     MarketKind = "h2h"    // 1X2 / resultado da partida
	MarketTotals         MarketKind = "totals" // over/under de gols
	MarketBothTeamsScore MarketKind = "btts"   // as duas equipes marcam
	MarketUnknown        MarketKind = "unknown"
)

// Selection é uma perna da aposta. Os campos de placar chegam depois,
// pelo feed de resultados; ponteiro nil significa partida sem placar final.
type Selection struct {
	EventID    string     `json:"eventId"`
	Market     string     `json:"market"` // rótulo original do provedor
	Kind       MarketKind `json:"kind"`
	OutcomeKey string     `json:"outcomeKey"` // "home"|"draw"|"away"|"over"|"under"|"yes"|"no"
	Price      float64    `json:"price"`
	Line       string     `json:"line,omitempty"`
	Bookmaker  string     `json:"bookmaker,omitempty"`
	Label      string     `json:"label,omitempty"`
	Home       string     `json:"home,omitempty"`
	Away       string     `json:"away,omitempty"`
	GoalsHome  *int       `json:"goalsHome,omitempty"`
	GoalsAway  *int       `json:"goalsAway,omitempty"`
	FinalScore string     `json:"finalScore,omitempty"`
	Status     BetStatus  `json:"status,omitempty"`
}

// Bet é o agregado persistido. Imutável depois de atingir estado terminal.
type Bet struct {
	ID                string      `json:"id"`
	UserID            string      `json:"userId"`
	Selections        []Selection `json:"selections"`
	StakeCents        int64       `json:"stake_cents"`
	CombinedOdds      float64     `json:"combined_odds"`
	PotentialWinCents int64       `json:"potential_win_cents"`
	Status            BetStatus   `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// SettlementEntry é o snapshot write-once da aposta no momento da
// liquidação; a existência do registro é a guarda de idempotência.
type SettlementEntry struct {
	BetID             string      `json:"betId"`
	UserID            string      `json:"userId"`
	Selections        []Selection `json:"selections"`
	StakeCents        int64       `json:"stake_cents"`
	CombinedOdds      float64     `json:"combined_odds"`
	PotentialWinCents int64       `json:"potential_win_cents"`
	Status            BetStatus   `json:"status"`
	SettledAt         time.Time   `json:"settled_at"`
}
