package events

// Evento publicado pelo bet-service após criar uma aposta PENDING.
type BetPlaced struct {
	BetID             string  `json:"bet_id"`
	UserID            string  `json:"user_id"`
	StakeCents        int64   `json:"stake_cents"`
	CombinedOdds      float64 `json:"combined_odds"`
	PotentialWinCents int64   `json:"potential_win_cents"`
	Selections        int     `json:"selections"` // quantidade de pernas
	TsUnixMs          int64   `json:"ts_unix_ms"`
}
