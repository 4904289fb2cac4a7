package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/bet-service/dto"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/model"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/repo"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/selection"
	"github.com/radieske/wager-settlement-poc/internal/ledger"
	"github.com/radieske/wager-settlement-poc/pkg/contracts/events"
)

// Repo é o recorte de persistência usado pelos handlers.
type Repo interface {
	PlaceBet(ctx context.Context, b *model.Bet) (model.Bet, ledger.Balance, error)
	GetBet(ctx context.Context, betID string) (model.Bet, error)
	ListBets(ctx context.Context, userID string) ([]model.Bet, error)
	History(ctx context.Context, userID string) ([]model.SettlementEntry, error)
}

// Settler aplica placares e dirige transições terminais (settlement.Processor).
type Settler interface {
	SettleBet(ctx context.Context, bet model.Bet, sels []model.Selection) (model.Bet, error)
}

// OddsChecker confere desvio entre o price enviado e a cotação corrente.
type OddsChecker interface {
	CheckDrift(ctx context.Context, eventID, market, outcomeKey string, price float64) (current float64, drifted bool, err error)
}

type Server struct {
	log     *zap.Logger
	repo    Repo
	norm    *selection.Normalizer
	settler Settler
	odds    OddsChecker
	publ    interface {
		PublishBetPlaced(context.Context, events.BetPlaced) error
	}
}

func NewServer(log *zap.Logger, r Repo, n *selection.Normalizer, s Settler, o OddsChecker, p interface {
	PublishBetPlaced(context.Context, events.BetPlaced) error
}) *Server {
	return &Server{log: log, repo: r, norm: n, settler: s, odds: o, publ: p}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/bets", s.placeBet)
	r.Get("/v1/bets", s.listBets) // ?userId=...
	r.Get("/v1/bets/{id}", s.getBet)
	r.Put("/v1/bets/{id}", s.updateBet)              // patch de pernas/placar
	r.Get("/v1/bets/history/{userId}", s.getHistory) // arquivo de liquidações
	return r
}

// placeBet valida as pernas, debita a aposta e persiste o registro
// pendente em uma única fronteira de falha.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	sels, err := s.norm.Normalize(toModel(req.Selections))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.StakeCents <= 0 {
		http.Error(w, repo.ErrInvalidStake.Error(), http.StatusBadRequest)
		return
	}

	// confere desvio de cotação contra o cache do provedor
	for _, sel := range sels {
		cur, drifted, derr := s.odds.CheckDrift(r.Context(), sel.EventID, sel.Market, sel.OutcomeKey, sel.Price)
		if derr != nil {
			s.log.Warn("odds check", zap.String("eventId", sel.EventID), zap.Error(derr))
			continue
		}
		if drifted {
			http.Error(w, fmt.Sprintf("odd changed; current=%v", cur), http.StatusConflict)
			return
		}
	}

	odds := selection.CombinedOdds(sels)
	combined, _ := odds.Float64()

	bet := model.Bet{
		UserID:            req.UserID,
		Selections:        sels,
		StakeCents:        req.StakeCents,
		CombinedOdds:      combined,
		PotentialWinCents: selection.PotentialWinCents(req.StakeCents, odds),
	}

	created, bal, err := s.repo.PlaceBet(r.Context(), &bet)
	if err != nil {
		writeBetError(w, err)
		return
	}

	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:             created.ID,
		UserID:            created.UserID,
		StakeCents:        created.StakeCents,
		CombinedOdds:      created.CombinedOdds,
		PotentialWinCents: created.PotentialWinCents,
		Selections:        len(created.Selections),
	})

	writeJSON(w, http.StatusCreated, dto.BetReceipt{
		BetID:             created.ID,
		CombinedOdds:      created.CombinedOdds,
		StakeCents:        created.StakeCents,
		PotentialWinCents: created.PotentialWinCents,
		Currency:          bal.Currency,
		BalanceCents:      bal.BalanceCents,
	})
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bet, err := s.repo.GetBet(r.Context(), id)
	if err != nil {
		writeBetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bet)
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	bets, err := s.repo.ListBets(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.BetListResponse{UserID: userID, Bets: bets})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	entries, err := s.repo.History(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.HistoryResponse{UserID: userID, Entries: entries})
}

// updateBet aceita o patch de placares do colaborador de resultados.
// Aposta terminal volta inalterada (no-op); caso a agregação fique
// terminal, a liquidação acontece aqui mesmo.
func (s *Server) updateBet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	bet, err := s.repo.GetBet(r.Context(), id)
	if err != nil {
		writeBetError(w, err)
		return
	}
	if bet.Status.Terminal() {
		writeJSON(w, http.StatusOK, bet)
		return
	}

	sels := applyPatches(bet.Selections, req.Selections)
	updated, err := s.settler.SettleBet(r.Context(), bet, sels)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// applyPatches copia os placares do patch para as pernas correspondentes.
func applyPatches(sels []model.Selection, patches []dto.SelectionPatch) []model.Selection {
	out := make([]model.Selection, len(sels))
	copy(out, sels)
	for _, p := range patches {
		for i := range out {
			if out[i].EventID != p.EventID {
				continue
			}
			if p.GoalsHome != nil {
				out[i].GoalsHome = p.GoalsHome
			}
			if p.GoalsAway != nil {
				out[i].GoalsAway = p.GoalsAway
			}
			if out[i].GoalsHome != nil && out[i].GoalsAway != nil {
				out[i].FinalScore = fmt.Sprintf("%d : %d", *out[i].GoalsHome, *out[i].GoalsAway)
			}
		}
	}
	return out
}

func toModel(in []dto.SelectionInput) []model.Selection {
	out := make([]model.Selection, len(in))
	for i, s := range in {
		out[i] = model.Selection{
			EventID:    s.EventID,
			Market:     s.Market,
			OutcomeKey: s.OutcomeKey,
			Price:      s.Price,
			Line:       s.Line,
			Bookmaker:  s.Bookmaker,
			Label:      s.Label,
			Home:       s.Home,
			Away:       s.Away,
		}
	}
	return out
}

// writeBetError mapeia os erros de negócio para status HTTP
func writeBetError(w http.ResponseWriter, err error) {
	var invalid *selection.InvalidSelectionError
	switch {
	case errors.Is(err, repo.ErrBetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repo.ErrInvalidStake),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, selection.ErrEmptySelections),
		errors.Is(err, selection.ErrTooManySelections),
		errors.As(err, &invalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
