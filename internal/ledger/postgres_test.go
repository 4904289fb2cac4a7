package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// As guardas de valor e papel rodam antes de qualquer acesso ao banco;
// aqui elas são exercitadas com um Postgres sem conexão. O caminho SQL
// (lock, mutação, extrato) fica coberto pelos fakes do processor e dos
// handlers, que reproduzem a mesma semântica.

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	p := NewPostgres(nil, "TND")
	ctx := context.Background()

	for _, amount := range []int64{0, -1, -500} {
		_, err := p.Credit(ctx, "u1", amount, ReasonFaucet, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = p.DebitIfSufficient(ctx, "u1", amount, ReasonBetPlace, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = p.CreditTx(ctx, nil, "u1", amount, ReasonBetWin, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = p.DebitTx(ctx, nil, "u1", amount, ReasonBetPlace, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestAdminCreditRequiresAdminRole(t *testing.T) {
	p := NewPostgres(nil, "TND")
	ctx := context.Background()

	for _, role := range []string{"", "guest", "user", "Admin"} {
		_, err := p.AdminCredit(ctx, role, "u2", 100, nil)
		assert.ErrorIs(t, err, ErrUnauthorized, "role %q", role)
	}
}
