package ledger

import "time"

// Motivos registrados no extrato. Campo livre, mas os fluxos internos
// usam sempre estas tags.
const (
	ReasonBetPlace    = "bet_place"
	ReasonBetWin      = "bet_win"
	ReasonFaucet      = "faucet"
	ReasonAdminCredit = "admin_credit"
)

const (
	KindCredit = "credit"
	KindDebit  = "debit"
)

// Balance é a visão corrente da carteira de um usuário.
type Balance struct {
	UserID       string `json:"userId"`
	WalletID     string `json:"walletId"`
	BalanceCents int64  `json:"balance_cents"`
	Currency     string `json:"currency"`
}

// Transaction é uma linha imutável do extrato (append-only).
// Criada somente pelas operações do ledger; nunca atualizada ou removida.
type Transaction struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	Kind             string            `json:"kind"` // "credit" | "debit"
	AmountCents      int64             `json:"amount_cents"`
	BalanceAfterCents int64            `json:"balance_after_cents"`
	Reason           string            `json:"reason"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}
