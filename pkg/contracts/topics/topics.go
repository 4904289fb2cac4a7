package topics

const (
	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// Feed externo de resultados finais
	EventResults = "event_results"

	// DLQs
	EventResultsDLQ = "event_results_dlq"
)
