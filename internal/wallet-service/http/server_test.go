package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/ledger"
	"github.com/radieske/wager-settlement-poc/internal/wallet-service/dto"
	whttp "github.com/radieske/wager-settlement-poc/internal/wallet-service/http"
)

type creditCall struct {
	userID string
	amount int64
	reason string
}

type fakeLedger struct {
	balances map[string]int64
	credits  []creditCall
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[string]int64{}}
}

func (f *fakeLedger) bal(userID string) ledger.Balance {
	return ledger.Balance{UserID: userID, BalanceCents: f.balances[userID], Currency: "TND"}
}

func (f *fakeLedger) GetOrCreate(_ context.Context, userID string) (ledger.Balance, error) {
	return f.bal(userID), nil
}

func (f *fakeLedger) Credit(_ context.Context, userID string, amountCents int64, reason string, _ map[string]string) (ledger.Balance, error) {
	if amountCents <= 0 {
		return ledger.Balance{}, ledger.ErrInvalidAmount
	}
	f.balances[userID] += amountCents
	f.credits = append(f.credits, creditCall{userID: userID, amount: amountCents, reason: reason})
	return f.bal(userID), nil
}

func (f *fakeLedger) AdminCredit(ctx context.Context, callerRole, targetUserID string, amountCents int64, meta map[string]string) (ledger.Balance, error) {
	if callerRole != "admin" {
		return ledger.Balance{}, ledger.ErrUnauthorized
	}
	return f.Credit(ctx, targetUserID, amountCents, ledger.ReasonAdminCredit, meta)
}

func (f *fakeLedger) Transactions(_ context.Context, userID string, _ int) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	for _, c := range f.credits {
		if c.userID == userID {
			out = append(out, ledger.Transaction{UserID: userID, Kind: ledger.KindCredit, AmountCents: c.amount, Reason: c.reason})
		}
	}
	return out, nil
}

func newWalletServer(l *fakeLedger) http.Handler {
	return whttp.NewServer(zap.NewNop(), l, 50000).Router()
}

func TestGetWallet(t *testing.T) {
	l := newFakeLedger()
	l.balances["u1"] = 12345
	h := newWalletServer(l)

	req := httptest.NewRequest(http.MethodGet, "/wallet?userId=u1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, int64(12345), resp.BalanceCents)
	assert.Equal(t, "TND", resp.Currency)
}

func TestGetWalletRequiresUserID(t *testing.T) {
	h := newWalletServer(newFakeLedger())

	req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFaucetUsesDefaultAmount(t *testing.T) {
	l := newFakeLedger()
	h := newWalletServer(l)

	body, _ := json.Marshal(dto.FaucetRequest{UserID: "u1"}) // sem amount
	req := httptest.NewRequest(http.MethodPost, "/wallet/faucet", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, l.credits, 1)
	assert.Equal(t, int64(50000), l.credits[0].amount)
	assert.Equal(t, ledger.ReasonFaucet, l.credits[0].reason)

	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(50000), resp.BalanceCents)
}

func TestFaucetExplicitAmount(t *testing.T) {
	l := newFakeLedger()
	h := newWalletServer(l)

	body, _ := json.Marshal(dto.FaucetRequest{UserID: "u1", AmountCents: 700})
	req := httptest.NewRequest(http.MethodPost, "/wallet/faucet", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, l.credits, 1)
	assert.Equal(t, int64(700), l.credits[0].amount)
}

func TestFaucetNegativeAmount(t *testing.T) {
	l := newFakeLedger()
	h := newWalletServer(l)

	body, _ := json.Marshal(dto.FaucetRequest{UserID: "u1", AmountCents: -10})
	req := httptest.NewRequest(http.MethodPost, "/wallet/faucet", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, l.credits)
}

func TestAdminCreditForbiddenForNonAdmin(t *testing.T) {
	l := newFakeLedger()
	h := newWalletServer(l)

	body, _ := json.Marshal(dto.AdminCreditRequest{CallerRole: "guest", TargetUserID: "u2", AmountCents: 100})
	req := httptest.NewRequest(http.MethodPost, "/wallet/admin/credit", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, l.credits)
}

func TestAdminCreditAllowedForAdmin(t *testing.T) {
	l := newFakeLedger()
	h := newWalletServer(l)

	body, _ := json.Marshal(dto.AdminCreditRequest{CallerRole: "admin", CallerID: "root", TargetUserID: "u2", AmountCents: 100})
	req := httptest.NewRequest(http.MethodPost, "/wallet/admin/credit", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, l.credits, 1)
	assert.Equal(t, "u2", l.credits[0].userID)
	assert.Equal(t, ledger.ReasonAdminCredit, l.credits[0].reason)
}

func TestTransactions(t *testing.T) {
	l := newFakeLedger()
	h := newWalletServer(l)

	body, _ := json.Marshal(dto.FaucetRequest{UserID: "u1", AmountCents: 300})
	req := httptest.NewRequest(http.MethodPost, "/wallet/faucet", bytes.NewReader(body))
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/wallet/transactions?userId=u1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.TransactionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, int64(300), resp.Transactions[0].AmountCents)
	assert.Equal(t, ledger.KindCredit, resp.Transactions[0].Kind)
}
