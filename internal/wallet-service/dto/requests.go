package dto

type FaucetRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents,omitempty"` // opcional; usa o default do serviço
}

type AdminCreditRequest struct {
	CallerRole   string `json:"caller_role"`
	CallerID     string `json:"caller_id,omitempty"`
	TargetUserID string `json:"target_user_id"`
	AmountCents  int64  `json:"amount_cents"`
	Note         string `json:"note,omitempty"`
}
