package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bondledger/bondmarketd/internal/core/tx"
)

// RequireSuccess asserts that a transaction applied successfully.
func RequireSuccess(t *testing.T, res tx.ApplyResult) {
	t.Helper()
	require.True(t, res.Applied,
		"expected transaction to apply, got %s: %s", res.Result, res.Message)
	require.Equal(t, tx.TesSUCCESS, res.Result)
}

// RequireResult asserts that a transaction failed with a specific code
// and was not applied.
func RequireResult(t *testing.T, res tx.ApplyResult, expected tx.Result) {
	t.Helper()
	require.Equal(t, expected, res.Result,
		"expected %s, got %s: %s", expected, res.Result, res.Message)
	require.False(t, res.Applied,
		"transaction with result %s must not apply", res.Result)
}

// RequireBalance asserts a holder's balance of a mint.
func RequireBalance(t *testing.T, env *TestEnv, holder, mint [20]byte, expected uint64) {
	t.Helper()
	require.Equal(t, expected, env.Balance(holder, mint))
}

// RequireStateUnchanged asserts that the ledger matches a snapshot
// taken before a failed submission.
func RequireStateUnchanged(t *testing.T, env *TestEnv, snapshot map[[32]byte][]byte) {
	t.Helper()
	require.Equal(t, snapshot, env.View().Snapshot())
}
