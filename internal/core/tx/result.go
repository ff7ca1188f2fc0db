package tx

import "fmt"

// Result represents a transaction result code.
type Result int

// Result codes, organized by category:
//
//	tes (0)            — applied successfully
//	tec (100..199)     — rejected against ledger state; nothing committed
//	tef (-199..-100)   — engine or authorization failure
//	tem (-299..-200)   — malformed transaction
//	ter (-99..-1)      — not applicable yet, retry later
//
// No category commits partial state: a non-tes result always leaves the
// ledger byte-for-byte unchanged.
const (
	TesSUCCESS Result = 0

	TecUNFUNDED           Result = 101
	TecINSUFFICIENT_VAULT Result = 102
	TecMATH_OVERFLOW      Result = 103
	TecTRANSFER_FAILED    Result = 104
	TecDUPLICATE          Result = 105
	TecNO_ENTRY           Result = 106
	TecMARKET_PAUSED      Result = 107
	TecNO_PERMISSION      Result = 108
	TecNO_AMM             Result = 109
	TecPRICE_UNSET        Result = 110
	TecINTERNAL           Result = 144

	TefFAILURE       Result = -199
	TefALREADY       Result = -198
	TefBAD_AUTH      Result = -196
	TefINTERNAL      Result = -192
	TefPAST_SEQ      Result = -190
	TefBAD_SIGNATURE Result = -186

	TemMALFORMED            Result = -299
	TemBAD_AMOUNT           Result = -298
	TemISSUER_NAME_TOO_LONG Result = -297
	TemBAD_DERIVATION       Result = -296
	TemBAD_MINT             Result = -295
	TemBAD_PRICE            Result = -294
	TemBAD_SEQUENCE         Result = -283
	TemBAD_SRC_ACCOUNT      Result = -281
	TemINVALID              Result = -277
	TemINVALID_FLAG         Result = -276
	TemUNIMPLEMENTED        Result = -273

	TerRETRY      Result = -99
	TerNO_ACCOUNT Result = -96
	TerPRE_SEQ    Result = -92
)

// String returns the canonical name of the result code.
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecUNFUNDED:
		return "tecUNFUNDED"
	case TecINSUFFICIENT_VAULT:
		return "tecINSUFFICIENT_VAULT"
	case TecMATH_OVERFLOW:
		return "tecMATH_OVERFLOW"
	case TecTRANSFER_FAILED:
		return "tecTRANSFER_FAILED"
	case TecDUPLICATE:
		return "tecDUPLICATE"
	case TecNO_ENTRY:
		return "tecNO_ENTRY"
	case TecMARKET_PAUSED:
		return "tecMARKET_PAUSED"
	case TecNO_PERMISSION:
		return "tecNO_PERMISSION"
	case TecNO_AMM:
		return "tecNO_AMM"
	case TecPRICE_UNSET:
		return "tecPRICE_UNSET"
	case TecINTERNAL:
		return "tecINTERNAL"
	case TefFAILURE:
		return "tefFAILURE"
	case TefALREADY:
		return "tefALREADY"
	case TefBAD_AUTH:
		return "tefBAD_AUTH"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefPAST_SEQ:
		return "tefPAST_SEQ"
	case TefBAD_SIGNATURE:
		return "tefBAD_SIGNATURE"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemBAD_AMOUNT:
		return "temBAD_AMOUNT"
	case TemISSUER_NAME_TOO_LONG:
		return "temISSUER_NAME_TOO_LONG"
	case TemBAD_DERIVATION:
		return "temBAD_DERIVATION"
	case TemBAD_MINT:
		return "temBAD_MINT"
	case TemBAD_PRICE:
		return "temBAD_PRICE"
	case TemBAD_SEQUENCE:
		return "temBAD_SEQUENCE"
	case TemBAD_SRC_ACCOUNT:
		return "temBAD_SRC_ACCOUNT"
	case TemINVALID:
		return "temINVALID"
	case TemINVALID_FLAG:
		return "temINVALID_FLAG"
	case TemUNIMPLEMENTED:
		return "temUNIMPLEMENTED"
	case TerRETRY:
		return "terRETRY"
	case TerNO_ACCOUNT:
		return "terNO_ACCOUNT"
	case TerPRE_SEQ:
		return "terPRE_SEQ"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// IsSuccess returns true if the result indicates success.
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (state-rejected) code.
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code.
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code.
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code.
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// ShouldRetry returns true if the transaction may succeed if
// resubmitted later.
func (r Result) ShouldRetry() bool {
	return r.IsTer()
}

// IsApplied returns true if the transaction changed ledger state.
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// Message returns a human-readable message for the result.
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecUNFUNDED:
		return "Insufficient token balance to fund the transfer."
	case TecINSUFFICIENT_VAULT:
		return "Vault does not hold enough balance to cover the payout."
	case TecMATH_OVERFLOW:
		return "Checked arithmetic overflowed, underflowed, or divided by zero."
	case TecTRANSFER_FAILED:
		return "The token transfer primitive reported failure."
	case TecDUPLICATE:
		return "An entry already exists at the derived address."
	case TecNO_ENTRY:
		return "A required ledger entry does not exist."
	case TecMARKET_PAUSED:
		return "The market is paused; trading is disabled."
	case TecNO_PERMISSION:
		return "The submitting account is not permitted to perform this operation."
	case TecNO_AMM:
		return "No AMM has been initialized for this market."
	case TecPRICE_UNSET:
		return "Fixed-price trading is not configured for this market."
	case TemBAD_AMOUNT:
		return "Amounts must be positive."
	case TemISSUER_NAME_TOO_LONG:
		return fmt.Sprintf("Issuer name cannot be longer than %d characters.", maxIssuerName)
	case TemBAD_DERIVATION:
		return "Derived address does not match the stored derivation nonce."
	case TemBAD_SEQUENCE:
		return "Sequence number must be non-zero."
	case TemUNIMPLEMENTED:
		return "This operation is not yet implemented."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior transaction."
	case TefPAST_SEQ:
		return "Sequence number has already passed."
	case TefBAD_SIGNATURE:
		return "Invalid signature."
	default:
		return r.String()
	}
}
