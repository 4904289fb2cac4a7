package ledger

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

// Postgres implementa o ledger de carteiras em banco.
// Toda mutação de saldo passa por aqui: lock pessimista na linha da
// carteira + append no extrato, dentro de uma única transação.
type Postgres struct {
	db       *sql.DB
	currency string
}

func NewPostgres(db *sql.DB, currency string) *Postgres {
	return &Postgres{db: db, currency: currency}
}

// execer cobre *sql.DB e *sql.Tx; permite usar os helpers abaixo
// dentro de transações maiores (ex: débito + criação da aposta).
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetOrCreate retorna o saldo do usuário, criando carteira zerada no
// primeiro acesso. Nunca falha por carteira inexistente.
func (p *Postgres) GetOrCreate(ctx context.Context, userID string) (Balance, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer tx.Rollback()

	bal, err := p.getOrCreateLocked(ctx, tx, userID)
	if err != nil {
		return Balance{}, err
	}

	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return bal, nil
}

// Credit incrementa o saldo e registra a transação de crédito.
// Falha com ErrInvalidAmount se amount <= 0.
func (p *Postgres) Credit(ctx context.Context, userID string, amountCents int64, reason string, meta map[string]string) (Balance, error) {
	if amountCents <= 0 {
		return Balance{}, ErrInvalidAmount
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer tx.Rollback()

	bal, err := p.CreditTx(ctx, tx, userID, amountCents, reason, meta)
	if err != nil {
		return Balance{}, err
	}

	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return bal, nil
}

// DebitIfSufficient debita o saldo se houver fundos.
// ErrInvalidAmount se amount <= 0; ErrInsufficientFunds se amount > saldo.
func (p *Postgres) DebitIfSufficient(ctx context.Context, userID string, amountCents int64, reason string, meta map[string]string) (Balance, error) {
	if amountCents <= 0 {
		return Balance{}, ErrInvalidAmount
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer tx.Rollback()

	bal, err := p.DebitTx(ctx, tx, userID, amountCents, reason, meta)
	if err != nil {
		return Balance{}, err
	}

	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return bal, nil
}

// AdminCredit é igual ao Credit, mas exige callerRole == "admin".
func (p *Postgres) AdminCredit(ctx context.Context, callerRole, targetUserID string, amountCents int64, meta map[string]string) (Balance, error) {
	if callerRole != "admin" {
		return Balance{}, ErrUnauthorized
	}
	return p.Credit(ctx, targetUserID, amountCents, ReasonAdminCredit, meta)
}

// Transactions lista o extrato do usuário, mais recentes primeiro.
func (p *Postgres) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount_cents, balance_after_cents, reason, metadata, created_at
		FROM wallet_transactions
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		var meta []byte
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.AmountCents, &t.BalanceAfterCents, &t.Reason, &meta, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &t.Metadata)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreditTx aplica um crédito dentro de uma transação já aberta pelo chamador.
// Usa o mesmo lock e append do extrato das operações públicas.
func (p *Postgres) CreditTx(ctx context.Context, tx *sql.Tx, userID string, amountCents int64, reason string, meta map[string]string) (Balance, error) {
	if amountCents <= 0 {
		return Balance{}, ErrInvalidAmount
	}

	bal, err := p.getOrCreateLocked(ctx, tx, userID)
	if err != nil {
		return Balance{}, err
	}

	bal.BalanceCents += amountCents
	if err := applyMutation(ctx, tx, bal, KindCredit, amountCents, reason, meta); err != nil {
		return Balance{}, err
	}
	return bal, nil
}

// DebitTx aplica um débito dentro de uma transação já aberta pelo chamador.
func (p *Postgres) DebitTx(ctx context.Context, tx *sql.Tx, userID string, amountCents int64, reason string, meta map[string]string) (Balance, error) {
	if amountCents <= 0 {
		return Balance{}, ErrInvalidAmount
	}

	bal, err := p.getOrCreateLocked(ctx, tx, userID)
	if err != nil {
		return Balance{}, err
	}

	if bal.BalanceCents < amountCents {
		return Balance{}, ErrInsufficientFunds
	}

	bal.BalanceCents -= amountCents
	if err := applyMutation(ctx, tx, bal, KindDebit, amountCents, reason, meta); err != nil {
		return Balance{}, err
	}
	return bal, nil
}

// getOrCreateLocked busca a carteira com FOR UPDATE, criando se não existir.
// Serializa mutações concorrentes na mesma conta; contas diferentes não se bloqueiam.
func (p *Postgres) getOrCreateLocked(ctx context.Context, tx execer, userID string) (Balance, error) {
	bal := Balance{UserID: userID, Currency: p.currency}

	err := tx.QueryRowContext(ctx,
		`SELECT id, balance_cents, currency FROM wallets WHERE user_id=$1 FOR UPDATE`,
		userID).Scan(&bal.WalletID, &bal.BalanceCents, &bal.Currency)
	if err == sql.ErrNoRows {
		bal.WalletID = uuid.NewString()
		bal.BalanceCents = 0
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, currency, version) VALUES($1,$2,0,$3,1)`,
			bal.WalletID, userID, p.currency); err != nil {
			return Balance{}, err
		}
		return bal, nil
	}
	if err != nil {
		return Balance{}, err
	}
	return bal, nil
}

// applyMutation persiste o novo saldo e o registro imutável do extrato.
func applyMutation(ctx context.Context, tx execer, bal Balance, kind string, amountCents int64, reason string, meta map[string]string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents=$1, version=version+1, updated_at=NOW() WHERE id=$2`,
		bal.BalanceCents, bal.WalletID); err != nil {
		return err
	}

	var metaJSON []byte
	if len(meta) > 0 {
		metaJSON, _ = json.Marshal(meta)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions(id, user_id, kind, amount_cents, balance_after_cents, reason, metadata)
		VALUES($1,$2,$3,$4,$5,$6,$7)`,
		uuid.NewString(), bal.UserID, kind, amountCents, bal.BalanceCents, reason, metaJSON)
	return err
}
