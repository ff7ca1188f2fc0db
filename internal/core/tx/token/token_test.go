package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	testenv "github.com/bondledger/bondmarketd/internal/testing"
)

func TestMintCreate(t *testing.T) {
	env := testenv.NewTestEnv(t)
	accs := env.Fund("issuer")
	issuer := accs[0]

	res := env.Submit(token.NewMintCreate(issuer.Address, "USD", 6), issuer)
	testenv.RequireSuccess(t, res)

	mintID := keylet.MintID(issuer.ID, "USD")
	mint := env.Mint(mintID)
	require.Equal(t, issuer.ID, mint.Authority)
	require.Equal(t, "USD", mint.Name)
	require.Equal(t, uint8(6), mint.Decimals)
	require.Zero(t, mint.Supply)
	require.Equal(t, uint32(1), env.AccountRoot(issuer).OwnerCount)

	// Same issuer, same name derives the same mint ID.
	res = env.Submit(token.NewMintCreate(issuer.Address, "USD", 6), issuer)
	testenv.RequireResult(t, res, tx.TecDUPLICATE)
}

func TestMintIssue(t *testing.T) {
	env := testenv.NewTestEnv(t)
	accs := env.Fund("issuer", "alice", "mallory")
	issuer, alice, mallory := accs[0], accs[1], accs[2]

	testenv.RequireSuccess(t, env.Submit(token.NewMintCreate(issuer.Address, "USD", 6), issuer))

	mintID := keylet.MintID(issuer.ID, "USD")
	mintAddr := addresscodec.EncodeAccountID(mintID)

	res := env.Submit(token.NewMintIssue(issuer.Address, mintAddr, alice.Address, 1_000), issuer)
	testenv.RequireSuccess(t, res)
	testenv.RequireBalance(t, env, alice.ID, mintID, 1_000)
	require.Equal(t, uint64(1_000), env.Mint(mintID).Supply)

	// Only the mint authority may issue.
	res = env.Submit(token.NewMintIssue(mallory.Address, mintAddr, mallory.Address, 1), mallory)
	testenv.RequireResult(t, res, tx.TecNO_PERMISSION)

	// Issuing against a mint that does not exist.
	missing := addresscodec.EncodeAccountID(keylet.MintID(issuer.ID, "GONE"))
	res = env.Submit(token.NewMintIssue(issuer.Address, missing, alice.Address, 1), issuer)
	testenv.RequireResult(t, res, tx.TecNO_ENTRY)
}

func TestMintIssueZeroAmount(t *testing.T) {
	env := testenv.NewTestEnv(t)
	issuer := env.Fund("issuer")[0]

	testenv.RequireSuccess(t, env.Submit(token.NewMintCreate(issuer.Address, "USD", 6), issuer))
	mintAddr := addresscodec.EncodeAccountID(keylet.MintID(issuer.ID, "USD"))

	res := env.Submit(token.NewMintIssue(issuer.Address, mintAddr, issuer.Address, 0), issuer)
	testenv.RequireResult(t, res, tx.TemBAD_AMOUNT)
}

func TestTokenTransfer(t *testing.T) {
	env := testenv.NewTestEnv(t)
	accs := env.Fund("issuer", "alice", "bob")
	issuer, alice, bob := accs[0], accs[1], accs[2]

	testenv.RequireSuccess(t, env.Submit(token.NewMintCreate(issuer.Address, "USD", 6), issuer))
	mintID := keylet.MintID(issuer.ID, "USD")
	mintAddr := addresscodec.EncodeAccountID(mintID)
	testenv.RequireSuccess(t, env.Submit(token.NewMintIssue(issuer.Address, mintAddr, alice.Address, 1_000), issuer))

	res := env.Submit(token.NewTokenTransfer(alice.Address, bob.Address, mintAddr, 400), alice)
	testenv.RequireSuccess(t, res)
	testenv.RequireBalance(t, env, alice.ID, mintID, 600)
	testenv.RequireBalance(t, env, bob.ID, mintID, 400)

	// Spending more than the balance.
	res = env.Submit(token.NewTokenTransfer(alice.Address, bob.Address, mintAddr, 601), alice)
	testenv.RequireResult(t, res, tx.TecUNFUNDED)
	testenv.RequireBalance(t, env, alice.ID, mintID, 600)
	testenv.RequireBalance(t, env, bob.ID, mintID, 400)

	// A holder with no token account at all.
	res = env.Submit(token.NewTokenTransfer(bob.Address, alice.Address, addresscodec.EncodeAccountID(keylet.MintID(issuer.ID, "EUR")), 1), bob)
	testenv.RequireResult(t, res, tx.TecNO_ENTRY)
}

func TestTokenTransferValidation(t *testing.T) {
	env := testenv.NewTestEnv(t)
	accs := env.Fund("alice", "bob")
	alice, bob := accs[0], accs[1]

	mintAddr := addresscodec.EncodeAccountID(keylet.MintID(alice.ID, "USD"))

	res := env.Submit(token.NewTokenTransfer(alice.Address, bob.Address, mintAddr, 0), alice)
	testenv.RequireResult(t, res, tx.TemBAD_AMOUNT)

	res = env.Submit(token.NewTokenTransfer(alice.Address, alice.Address, mintAddr, 5), alice)
	testenv.RequireResult(t, res, tx.TemMALFORMED)

	res = env.Submit(token.NewTokenTransfer(alice.Address, bob.Address, "not-an-address", 5), alice)
	testenv.RequireResult(t, res, tx.TemBAD_MINT)
}
