package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/bet-service/model"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/outcome"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/repo"
	"github.com/radieske/wager-settlement-poc/internal/ledger"
	"github.com/radieske/wager-settlement-poc/pkg/contracts/events"
)

// Repo é o recorte de persistência que o processor precisa.
type Repo interface {
	PendingByEvent(ctx context.Context, eventID string) ([]model.Bet, error)
	UpdateSelections(ctx context.Context, betID string, sels []model.Selection) error
	Settle(ctx context.Context, betID string, sels []model.Selection, status model.BetStatus) (model.SettlementEntry, ledger.Balance, error)
}

type Publisher interface {
	PublishBetSettled(ctx context.Context, ev events.BetSettled) error
}

// Processor dirige as transições terminais das apostas. Toda liquidação
// do sistema passa por aqui; a guarda de idempotência fica no repo
// (arquivo write-once + compare-and-set do status).
type Processor struct {
	log  *zap.Logger
	repo Repo
	publ Publisher
}

func NewProcessor(log *zap.Logger, r Repo, p Publisher) *Processor {
	return &Processor{log: log, repo: r, publ: p}
}

// ApplyScores copia o placar final do resultado para as pernas do evento.
func ApplyScores(sels []model.Selection, res events.EventResult) []model.Selection {
	out := make([]model.Selection, len(sels))
	copy(out, sels)
	for i := range out {
		if out[i].EventID != res.EventID {
			continue
		}
		gh, ga := res.GoalsHome, res.GoalsAway
		out[i].GoalsHome = &gh
		out[i].GoalsAway = &ga
		out[i].FinalScore = fmt.Sprintf("%d : %d", gh, ga)
	}
	return out
}

// EvaluateAll reavalia o status de cada perna e agrega o status da aposta.
func EvaluateAll(sels []model.Selection) ([]model.Selection, model.BetStatus) {
	out := make([]model.Selection, len(sels))
	copy(out, sels)
	for i := range out {
		out[i].Status = outcome.EvaluateSelection(out[i])
	}
	return out, outcome.ComputeOverallStatus(out)
}

// ProcessResult aplica um placar final a todas as apostas pendentes do
// evento. Chamado pelo settlement-worker a cada resultado consumido;
// seguro para reentrega (liquidações repetidas viram no-op).
func (p *Processor) ProcessResult(ctx context.Context, res events.EventResult) error {
	bets, err := p.repo.PendingByEvent(ctx, res.EventID)
	if err != nil {
		return fmt.Errorf("pending bets for event %s: %w", res.EventID, err)
	}

	for i := range bets {
		sels := ApplyScores(bets[i].Selections, res)
		if _, err := p.SettleBet(ctx, bets[i], sels); err != nil {
			return err
		}
	}
	return nil
}

// SettleBet reavalia a aposta com as pernas informadas e aplica o que
// a agregação mandar: transição terminal (com crédito se ganha) ou
// apenas persistência do progresso das pernas.
func (p *Processor) SettleBet(ctx context.Context, bet model.Bet, sels []model.Selection) (model.Bet, error) {
	if bet.Status.Terminal() {
		// aposta terminal é imutável
		return bet, nil
	}

	evaluated, overall := EvaluateAll(sels)
	bet.Selections = evaluated

	if !overall.Terminal() {
		if err := p.repo.UpdateSelections(ctx, bet.ID, evaluated); err != nil {
			return model.Bet{}, err
		}
		return bet, nil
	}

	entry, bal, err := p.repo.Settle(ctx, bet.ID, evaluated, overall)
	if errors.Is(err, repo.ErrAlreadySettled) {
		// gatilho duplicado do polling externo: absorve em silêncio
		p.log.Debug("bet already settled", zap.String("betId", bet.ID))
		return bet, nil
	}
	if err != nil {
		return model.Bet{}, err
	}

	bet.Status = entry.Status
	p.log.Info("bet settled",
		zap.String("betId", bet.ID),
		zap.String("status", string(entry.Status)),
		zap.Int64("credit_cents", creditFor(entry)),
	)

	ev := events.BetSettled{
		BetID:        entry.BetID,
		UserID:       entry.UserID,
		Status:       string(entry.Status),
		CreditCents:  creditFor(entry),
		BalanceAfter: bal.BalanceCents,
		Ts:           time.Now(),
	}
	if err := p.publ.PublishBetSettled(ctx, ev); err != nil {
		// o evento é informativo; a liquidação já está comprometida
		p.log.Warn("publish bet_settled", zap.String("betId", bet.ID), zap.Error(err))
	}
	return bet, nil
}

func creditFor(e model.SettlementEntry) int64 {
	if e.Status == model.StatusWon {
		return e.PotentialWinCents
	}
	return 0
}
