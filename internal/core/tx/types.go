package tx

// Type identifies a transaction type.
type Type int

const (
	TypeUnknown Type = iota
	TypeMintCreate
	TypeMintIssue
	TypeTokenTransfer
	TypeMarketCreate
	TypeMarketSet
	TypeAmmInit
	TypeAmmSwap
	TypeBondBuy
	TypeBondSell
	TypeCouponClaim
	TypeBondRedeem
)

var typeNames = map[Type]string{
	TypeMintCreate:    "MintCreate",
	TypeMintIssue:     "MintIssue",
	TypeTokenTransfer: "TokenTransfer",
	TypeMarketCreate:  "MarketCreate",
	TypeMarketSet:     "MarketSet",
	TypeAmmInit:       "AmmInit",
	TypeAmmSwap:       "AmmSwap",
	TypeBondBuy:       "BondBuy",
	TypeBondSell:      "BondSell",
	TypeCouponClaim:   "CouponClaim",
	TypeBondRedeem:    "BondRedeem",
}

// String returns the wire name of the transaction type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// TypeFromName resolves a wire name to a transaction type.
func TypeFromName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return TypeUnknown, false
}
