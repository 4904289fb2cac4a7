package dto

// SelectionInput é uma perna como chega do cliente, antes da normalização.
type SelectionInput struct {
	EventID    string  `json:"eventId"`
	Market     string  `json:"market"`     // rótulo do provedor, ex: "Match result (1x2)"
	OutcomeKey string  `json:"outcomeKey"` // "home" | "draw" | "away" | "over" | ...
	Price      float64 `json:"price"`
	Line       string  `json:"line,omitempty"`
	Bookmaker  string  `json:"bookmaker,omitempty"`
	Label      string  `json:"label,omitempty"`
	Home       string  `json:"home,omitempty"`
	Away       string  `json:"away,omitempty"`
}

type PlaceBetRequest struct {
	UserID     string           `json:"userId"`
	StakeCents int64            `json:"stake_cents"`
	Selections []SelectionInput `json:"selections"`
}

// SelectionPatch atualiza uma perna com dados de placar vindos do feed.
type SelectionPatch struct {
	EventID   string `json:"eventId"`
	GoalsHome *int   `json:"goalsHome,omitempty"`
	GoalsAway *int   `json:"goalsAway,omitempty"`
}

type UpdateBetRequest struct {
	Selections []SelectionPatch `json:"selections,omitempty"`
}
