package bond

import (
	"errors"

	"github.com/bondledger/bondmarketd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCouponClaim, func() tx.Transaction {
		return &CouponClaim{BaseTx: *tx.NewBaseTx(tx.TypeCouponClaim, "")}
	})
	tx.Register(tx.TypeBondRedeem, func() tx.Transaction {
		return &BondRedeem{BaseTx: *tx.NewBaseTx(tx.TypeBondRedeem, "")}
	})
}

// CouponClaim will pay accrued coupon interest to a bond holder.
// Accrual bookkeeping is not in place yet, so submission is rejected.
type CouponClaim struct {
	tx.BaseTx
	IssuerName string `json:"IssuerName"`
}

// NewCouponClaim builds a CouponClaim transaction.
func NewCouponClaim(account, issuerName string) *CouponClaim {
	return &CouponClaim{
		BaseTx:     *tx.NewBaseTx(tx.TypeCouponClaim, account),
		IssuerName: issuerName,
	}
}

// Validate checks the transaction fields.
func (c *CouponClaim) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.IssuerName == "" {
		return errors.New("temMALFORMED: IssuerName is required")
	}
	return nil
}

// Apply rejects the claim until accrual exists.
func (c *CouponClaim) Apply(*tx.ApplyContext) tx.Result {
	return tx.TemUNIMPLEMENTED
}

// BondRedeem will redeem matured bonds for principal. It depends on
// the same accrual bookkeeping as CouponClaim, so submission is
// rejected.
type BondRedeem struct {
	tx.BaseTx
	IssuerName string `json:"IssuerName"`
	Amount     uint64 `json:"Amount"`
}

// NewBondRedeem builds a BondRedeem transaction.
func NewBondRedeem(account, issuerName string, amount uint64) *BondRedeem {
	return &BondRedeem{
		BaseTx:     *tx.NewBaseTx(tx.TypeBondRedeem, account),
		IssuerName: issuerName,
		Amount:     amount,
	}
}

// Validate checks the transaction fields.
func (b *BondRedeem) Validate() error {
	if err := b.BaseTx.Validate(); err != nil {
		return err
	}
	if b.IssuerName == "" {
		return errors.New("temMALFORMED: IssuerName is required")
	}
	if b.Amount == 0 {
		return tx.ErrInvalidAmount
	}
	return nil
}

// Apply rejects the redemption until accrual exists.
func (b *BondRedeem) Apply(*tx.ApplyContext) tx.Result {
	return tx.TemUNIMPLEMENTED
}
