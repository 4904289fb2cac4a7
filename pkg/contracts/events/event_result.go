package events

import "time"

// Evento publicado no tópico "event_results" pelo feed de resultados.
// Placar final de uma partida encerrada.
type EventResult struct {
	EventID    string    `json:"event_id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	GoalsHome  int       `json:"goals_home"`
	GoalsAway  int       `json:"goals_away"`
	FinishedAt time.Time `json:"finished_at"`
	Source     string    `json:"source"` // "result-feed-simulator"
}
