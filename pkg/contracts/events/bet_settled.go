package events

import "time"

// Evento emitido quando uma aposta atinge estado terminal.
type BetSettled struct {
	BetID        string    `json:"betId"`
	UserID       string    `json:"userId"`
	Status       string    `json:"status"` // "won" | "lost" | "void"
	CreditCents  int64     `json:"credit_cents,omitempty"`
	BalanceAfter int64     `json:"balance_after,omitempty"`
	Ts           time.Time `json:"ts"`
}
