package tx

import (
	"encoding/hex"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/crypto/keys"
)

// verifySignature checks that the transaction carries a valid
// signature from the key that owns the source account. The public key
// must hash to the account ID of the Account address: the address
// commits to the key, the key to the signature.
func verifySignature(t Transaction) Result {
	common := t.GetCommon()
	if common.SigningPubKey == "" || common.TxnSignature == "" {
		return TefBAD_SIGNATURE
	}

	pubKey, err := hex.DecodeString(common.SigningPubKey)
	if err != nil {
		return TefBAD_SIGNATURE
	}
	sig, err := hex.DecodeString(common.TxnSignature)
	if err != nil {
		return TefBAD_SIGNATURE
	}

	accountID, err := addresscodec.DecodeAccountID(common.Account)
	if err != nil {
		return TemBAD_SRC_ACCOUNT
	}
	if keys.AccountID(pubKey) != accountID {
		return TefBAD_AUTH
	}

	signingData, err := SigningData(t)
	if err != nil {
		return TefINTERNAL
	}
	if !keys.Verify(pubKey, signingData, sig) {
		return TefBAD_SIGNATURE
	}
	return TesSUCCESS
}

// SignTransaction fills in SigningPubKey and TxnSignature using the
// given key pair.
func SignTransaction(t Transaction, kp *keys.KeyPair) error {
	common := t.GetCommon()
	common.SigningPubKey = hex.EncodeToString(kp.PublicKey())
	common.TxnSignature = ""

	signingData, err := SigningData(t)
	if err != nil {
		return err
	}
	sig, err := kp.Sign(signingData)
	if err != nil {
		return err
	}
	common.TxnSignature = hex.EncodeToString(sig)
	return nil
}
