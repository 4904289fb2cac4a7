package dto

import "github.com/radieske/wager-settlement-poc/internal/ledger"

type BalanceResponse struct {
	UserID       string `json:"userId"`
	BalanceCents int64  `json:"balance_cents"`
	Currency     string `json:"currency"`
}

type TransactionsResponse struct {
	UserID       string               `json:"userId"`
	Transactions []ledger.Transaction `json:"transactions"`
}
