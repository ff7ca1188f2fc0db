package tx

import (
	"strings"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/protocol"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
	crypto "github.com/bondledger/bondmarketd/internal/crypto/common"
	"github.com/bondledger/bondmarketd/internal/events"
)

// maxIssuerName caps the issuer name used as a market derivation seed.
const maxIssuerName = state.MaxIssuerNameLength

// DefaultFeeBps is the AMM swap fee retained in the vault, in basis
// points.
const DefaultFeeBps uint16 = 30

// LedgerView provides read/write access to ledger state.
type LedgerView interface {
	Read(k keylet.Keylet) ([]byte, error)
	Exists(k keylet.Keylet) (bool, error)
	Insert(k keylet.Keylet, data []byte) error
	Update(k keylet.Keylet, data []byte) error
	Erase(k keylet.Keylet) error
}

// EngineConfig holds configuration for the transaction engine.
type EngineConfig struct {
	// LedgerSequence is the sequence of the ledger being built.
	LedgerSequence uint32

	// FeeBps is the AMM swap fee in basis points.
	FeeBps uint16

	// SkipSignatureVerification disables signature checks. Test
	// environments only.
	SkipSignatureVerification bool
}

// Metadata accumulates the side outputs of one apply: the final result
// and any events to publish after commit.
type Metadata struct {
	TransactionResult Result
	Events            []events.Event
}

// EmitEvent queues an event for post-commit publication. Events on a
// failed apply are discarded along with the state changes.
func (m *Metadata) EmitEvent(ev events.Event) {
	m.Events = append(m.Events, ev)
}

// ApplyResult is the outcome of applying one transaction.
type ApplyResult struct {
	Result  Result
	Applied bool
	TxHash  [32]byte
	Message string
	Events  []events.Event
}

// ApplyContext provides the state and helpers a transactor needs.
type ApplyContext struct {
	// View provides read/write access to ledger state, buffered until
	// the whole transaction succeeds.
	View LedgerView

	// Account is the source account root (written back by the engine).
	Account *state.AccountRoot

	// AccountID is the decoded source account ID.
	AccountID [20]byte

	// Config holds engine configuration.
	Config EngineConfig

	// TxHash is the hash of the current transaction.
	TxHash [32]byte

	// Metadata collects the result and emitted events.
	Metadata *Metadata
}

// Engine processes transactions against a ledger view.
type Engine struct {
	view   LedgerView
	config EngineConfig
}

// NewEngine creates an engine over the given view.
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	if config.FeeBps == 0 {
		config.FeeBps = DefaultFeeBps
	}
	return &Engine{view: view, config: config}
}

// Apply runs a transaction through preflight, preclaim and doApply.
// Any non-success result leaves the base view untouched.
func (e *Engine) Apply(t Transaction) ApplyResult {
	txHash, err := computeTransactionHash(t)
	if err != nil {
		return ApplyResult{Result: TefINTERNAL, TxHash: txHash, Message: TefINTERNAL.Message()}
	}

	// Step 1: preflight (syntax and signature).
	if result := e.preflight(t); !result.IsSuccess() {
		return ApplyResult{Result: result, TxHash: txHash, Message: result.Message()}
	}

	// Step 2: preclaim (checks against ledger state).
	accountID, result := e.preclaim(t)
	if !result.IsSuccess() {
		return ApplyResult{Result: result, TxHash: txHash, Message: result.Message()}
	}

	// Step 3: apply against a buffered view.
	metadata := &Metadata{TransactionResult: TesSUCCESS}
	result = e.doApply(t, accountID, metadata, txHash)
	metadata.TransactionResult = result

	applied := result.IsApplied()
	res := ApplyResult{
		Result:  result,
		Applied: applied,
		TxHash:  txHash,
		Message: result.Message(),
	}
	if applied {
		res.Events = metadata.Events
	}
	return res
}

// preflight validates the transaction without ledger state.
func (e *Engine) preflight(t Transaction) Result {
	if err := t.Validate(); err != nil {
		return parseValidationError(err)
	}
	if !e.config.SkipSignatureVerification {
		if result := verifySignature(t); !result.IsSuccess() {
			return result
		}
	}
	return TesSUCCESS
}

// preclaim validates the transaction against current ledger state.
func (e *Engine) preclaim(t Transaction) ([20]byte, Result) {
	var accountID [20]byte

	common := t.GetCommon()
	accountID, err := addresscodec.DecodeAccountID(common.Account)
	if err != nil {
		return accountID, TemBAD_SRC_ACCOUNT
	}

	data, err := e.view.Read(keylet.Account(accountID))
	if err != nil {
		return accountID, TefINTERNAL
	}
	if data == nil {
		return accountID, TerNO_ACCOUNT
	}

	account, err := state.ParseAccountRoot(data)
	if err != nil {
		return accountID, TefINTERNAL
	}

	txSeq := common.GetSequence()
	switch {
	case txSeq == 0:
		return accountID, TemBAD_SEQUENCE
	case txSeq < account.Sequence:
		return accountID, TefPAST_SEQ
	case txSeq > account.Sequence:
		return accountID, TerPRE_SEQ
	}

	return accountID, TesSUCCESS
}

// doApply executes the transaction over an ApplyStateTable and commits
// only on success.
func (e *Engine) doApply(t Transaction, accountID [20]byte, metadata *Metadata, txHash [32]byte) Result {
	appliable, ok := t.(Appliable)
	if !ok {
		return TemUNIMPLEMENTED
	}

	table := NewApplyStateTable(e.view)

	accountKey := keylet.Account(accountID)
	data, err := table.Read(accountKey)
	if err != nil || data == nil {
		return TefINTERNAL
	}
	account, err := state.ParseAccountRoot(data)
	if err != nil {
		return TefINTERNAL
	}

	// Consume the sequence number.
	account.Sequence++

	ctx := &ApplyContext{
		View:      table,
		Account:   account,
		AccountID: accountID,
		Config:    e.config,
		TxHash:    txHash,
		Metadata:  metadata,
	}

	result := appliable.Apply(ctx)
	if !result.IsSuccess() {
		// The table is discarded; nothing was committed.
		return result
	}

	serialized, err := ctx.Account.Serialize()
	if err != nil {
		return TefINTERNAL
	}
	if err := table.Update(accountKey, serialized); err != nil {
		return TefINTERNAL
	}

	if err := table.Apply(); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// computeTransactionHash hashes the signing data with a domain prefix.
func computeTransactionHash(t Transaction) ([32]byte, error) {
	data, err := SigningData(t)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Sha512Half(protocol.HashPrefixTransactionID.Bytes(), data), nil
}

// parseValidationError maps a Validate error to a result code by its
// message prefix.
func parseValidationError(err error) Result {
	msg := err.Error()
	prefixes := map[string]Result{
		"temBAD_AMOUNT":           TemBAD_AMOUNT,
		"temISSUER_NAME_TOO_LONG": TemISSUER_NAME_TOO_LONG,
		"temBAD_DERIVATION":       TemBAD_DERIVATION,
		"temBAD_MINT":             TemBAD_MINT,
		"temBAD_PRICE":            TemBAD_PRICE,
		"temBAD_SEQUENCE":         TemBAD_SEQUENCE,
		"temBAD_SRC_ACCOUNT":      TemBAD_SRC_ACCOUNT,
		"temINVALID_FLAG":         TemINVALID_FLAG,
		"temUNIMPLEMENTED":        TemUNIMPLEMENTED,
		"temMALFORMED":            TemMALFORMED,
	}
	for prefix, result := range prefixes {
		if strings.HasPrefix(msg, prefix) {
			return result
		}
	}
	return TemINVALID
}
