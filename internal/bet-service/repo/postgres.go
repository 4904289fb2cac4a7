package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/wager-settlement-poc/internal/bet-service/model"
	"github.com/radieske/wager-settlement-poc/internal/ledger"
)

var (
	ErrBetNotFound    = errors.New("bet not found")
	ErrInvalidStake   = errors.New("invalid stake")
	ErrAlreadySettled = errors.New("bet already settled")
)

// Postgres persiste apostas e o arquivo de liquidações.
// Compõe o ledger para que débito/crédito e escrita da aposta fiquem
// sob a mesma fronteira de falha (uma transação SQL).
type Postgres struct {
	db     *sql.DB
	ledger *ledger.Postgres
}

func NewPostgres(db *sql.DB, l *ledger.Postgres) *Postgres {
	return &Postgres{db: db, ledger: l}
}

// PlaceBet debita a aposta e insere o registro PENDING em uma única
// transação: não existe débito sem aposta nem aposta sem débito.
func (p *Postgres) PlaceBet(ctx context.Context, b *model.Bet) (model.Bet, ledger.Balance, error) {
	if b.StakeCents <= 0 {
		return model.Bet{}, ledger.Balance{}, ErrInvalidStake
	}

	b.ID = uuid.NewString()
	b.Status = model.StatusPending

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Bet{}, ledger.Balance{}, err
	}
	defer tx.Rollback()

	bal, err := p.ledger.DebitTx(ctx, tx, b.UserID, b.StakeCents, ledger.ReasonBetPlace,
		map[string]string{"betId": b.ID})
	if err != nil {
		return model.Bet{}, ledger.Balance{}, err
	}

	selJSON, err := json.Marshal(b.Selections)
	if err != nil {
		return model.Bet{}, ledger.Balance{}, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO bets (id, user_id, selections, stake_cents, combined_odds, potential_win_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')
		RETURNING created_at, updated_at`,
		b.ID, b.UserID, selJSON, b.StakeCents, b.CombinedOdds, b.PotentialWinCents,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Bet{}, ledger.Balance{}, err
	}

	if err = tx.Commit(); err != nil {
		return model.Bet{}, ledger.Balance{}, err
	}
	return *b, bal, nil
}

// GetBet carrega uma aposta pelo id.
func (p *Postgres) GetBet(ctx context.Context, betID string) (model.Bet, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, selections, stake_cents, combined_odds, potential_win_cents, status, created_at, updated_at
		FROM bets WHERE id=$1`, betID)
	return scanBet(row)
}

// ListBets lista as apostas do usuário, mais recentes primeiro.
func (p *Postgres) ListBets(ctx context.Context, userID string) ([]model.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, selections, stake_cents, combined_odds, potential_win_cents, status, created_at, updated_at
		FROM bets WHERE user_id=$1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PendingByEvent retorna apostas pendentes com alguma perna no evento.
// Usa containment de JSONB para filtrar direto no banco.
func (p *Postgres) PendingByEvent(ctx context.Context, eventID string) ([]model.Bet, error) {
	filter, _ := json.Marshal([]map[string]string{{"eventId": eventID}})
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, selections, stake_cents, combined_odds, potential_win_cents, status, created_at, updated_at
		FROM bets WHERE status='pending' AND selections @> $1`, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateSelections regrava as pernas de uma aposta ainda pendente.
// Apostas terminais são imutáveis; a escrita simplesmente não acontece.
func (p *Postgres) UpdateSelections(ctx context.Context, betID string, sels []model.Selection) error {
	selJSON, err := json.Marshal(sels)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		UPDATE bets SET selections=$1, updated_at=NOW()
		WHERE id=$2 AND status='pending'`, selJSON, betID)
	return err
}

// History lista o arquivo de liquidações do usuário, mais recentes primeiro.
func (p *Postgres) History(ctx context.Context, userID string) ([]model.SettlementEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT bet_id, user_id, selections, stake_cents, combined_odds, potential_win_cents, status, settled_at
		FROM bet_settlements WHERE user_id=$1
		ORDER BY settled_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SettlementEntry
	for rows.Next() {
		var e model.SettlementEntry
		var selJSON []byte
		var status string
		if err := rows.Scan(&e.BetID, &e.UserID, &selJSON, &e.StakeCents, &e.CombinedOdds, &e.PotentialWinCents, &status, &e.SettledAt); err != nil {
			return nil, err
		}
		e.Status = model.BetStatus(status)
		if err := json.Unmarshal(selJSON, &e.Selections); err != nil {
			return nil, fmt.Errorf("unmarshal settlement selections: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Settle executa a transição terminal de uma aposta em uma única transação:
// lock da linha, compare-and-set pending -> terminal, snapshot write-once no
// arquivo e, se ganha, crédito do prêmio no ledger. Qualquer falha desfaz
// tudo; a transição fica pendente e pode ser reexecutada com segurança.
// Segunda invocação para o mesmo betId devolve ErrAlreadySettled.
func (p *Postgres) Settle(ctx context.Context, betID string, sels []model.Selection, status model.BetStatus) (model.SettlementEntry, ledger.Balance, error) {
	if !status.Terminal() {
		return model.SettlementEntry{}, ledger.Balance{}, fmt.Errorf("settle: status %q is not terminal", status)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.SettlementEntry{}, ledger.Balance{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, user_id, selections, stake_cents, combined_odds, potential_win_cents, status, created_at, updated_at
		FROM bets WHERE id=$1 FOR UPDATE`, betID)
	b, err := scanBet(row)
	if err != nil {
		return model.SettlementEntry{}, ledger.Balance{}, err
	}
	if b.Status.Terminal() {
		return model.SettlementEntry{}, ledger.Balance{}, ErrAlreadySettled
	}

	if sels == nil {
		sels = b.Selections
	}
	selJSON, err := json.Marshal(sels)
	if err != nil {
		return model.SettlementEntry{}, ledger.Balance{}, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bets SET status=$1, selections=$2, updated_at=NOW()
		WHERE id=$3 AND status='pending'`, string(status), selJSON, betID)
	if err != nil {
		return model.SettlementEntry{}, ledger.Balance{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.SettlementEntry{}, ledger.Balance{}, ErrAlreadySettled
	}

	entry := model.SettlementEntry{
		BetID:             b.ID,
		UserID:            b.UserID,
		Selections:        sels,
		StakeCents:        b.StakeCents,
		CombinedOdds:      b.CombinedOdds,
		PotentialWinCents: b.PotentialWinCents,
		Status:            status,
		SettledAt:         time.Now().UTC(),
	}

	arch, err := tx.ExecContext(ctx, `
		INSERT INTO bet_settlements (bet_id, user_id, selections, stake_cents, combined_odds, potential_win_cents, status, settled_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (bet_id) DO NOTHING`,
		entry.BetID, entry.UserID, selJSON, entry.StakeCents, entry.CombinedOdds, entry.PotentialWinCents, string(status), entry.SettledAt)
	if err != nil {
		return model.SettlementEntry{}, ledger.Balance{}, err
	}
	if n, _ := arch.RowsAffected(); n == 0 {
		return model.SettlementEntry{}, ledger.Balance{}, ErrAlreadySettled
	}

	var bal ledger.Balance
	if status == model.StatusWon {
		bal, err = p.ledger.CreditTx(ctx, tx, b.UserID, b.PotentialWinCents, ledger.ReasonBetWin,
			map[string]string{"betId": b.ID})
		if err != nil {
			return model.SettlementEntry{}, ledger.Balance{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return model.SettlementEntry{}, ledger.Balance{}, err
	}
	return entry, bal, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(row rowScanner) (model.Bet, error) {
	var b model.Bet
	var selJSON []byte
	var status string
	err := row.Scan(&b.ID, &b.UserID, &selJSON, &b.StakeCents, &b.CombinedOdds, &b.PotentialWinCents, &status, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Bet{}, ErrBetNotFound
	}
	if err != nil {
		return model.Bet{}, err
	}
	b.Status = model.BetStatus(status)
	if err := json.Unmarshal(selJSON, &b.Selections); err != nil {
		return model.Bet{}, fmt.Errorf("unmarshal bet selections: %w", err)
	}
	return b, nil
}
