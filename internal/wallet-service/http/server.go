package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/ledger"
	"github.com/radieske/wager-settlement-poc/internal/wallet-service/dto"
)

// Ledger define as operações de carteira usadas pelo handler HTTP
type Ledger interface {
	GetOrCreate(ctx context.Context, userID string) (ledger.Balance, error)
	Credit(ctx context.Context, userID string, amountCents int64, reason string, meta map[string]string) (ledger.Balance, error)
	AdminCredit(ctx context.Context, callerRole, targetUserID string, amountCents int64, meta map[string]string) (ledger.Balance, error)
	Transactions(ctx context.Context, userID string, limit int) ([]ledger.Transaction, error)
}

// Server expõe endpoints HTTP para operações de carteira (wallet)
type Server struct {
	log         *zap.Logger
	ledger      Ledger
	faucetCents int64
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, l Ledger, faucetCents int64) *Server {
	return &Server{log: log, ledger: l, faucetCents: faucetCents}
}

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getWallet)                 // GET ?userId=...
	mux.HandleFunc("/wallet/transactions", s.transactions) // GET ?userId=...
	mux.HandleFunc("/wallet/faucet", s.faucet)             // POST
	mux.HandleFunc("/wallet/admin/credit", s.adminCredit)  // POST
	return mux
}

// getWallet retorna (ou cria) a carteira e saldo do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	bal, err := s.ledger.GetOrCreate(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.BalanceResponse{UserID: userID, BalanceCents: bal.BalanceCents, Currency: bal.Currency})
}

// transactions retorna o extrato do usuário, mais recente primeiro
func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	txs, err := s.ledger.Transactions(r.Context(), userID, 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.TransactionsResponse{UserID: userID, Transactions: txs})
}

// faucet credita saldo de teste na conta informada
func (s *Server) faucet(w http.ResponseWriter, r *http.Request) {
	var req dto.FaucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	amount := req.AmountCents
	if amount == 0 {
		amount = s.faucetCents
	}

	bal, err := s.ledger.Credit(r.Context(), req.UserID, amount, ledger.ReasonFaucet, map[string]string{"source": "faucet"})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, dto.BalanceResponse{UserID: req.UserID, BalanceCents: bal.BalanceCents, Currency: bal.Currency})
}

// adminCredit credita a conta de outro usuário; exige papel admin
func (s *Server) adminCredit(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.TargetUserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	meta := map[string]string{"source": "admin-panel"}
	if req.CallerID != "" {
		meta["adminId"] = req.CallerID
	}
	if req.Note != "" {
		meta["note"] = req.Note
	}

	bal, err := s.ledger.AdminCredit(r.Context(), req.CallerRole, req.TargetUserID, req.AmountCents, meta)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, dto.BalanceResponse{UserID: req.TargetUserID, BalanceCents: bal.BalanceCents, Currency: bal.Currency})
}

// writeLedgerError mapeia os erros de negócio do ledger para status HTTP
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
