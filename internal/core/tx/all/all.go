// Package all registers every transactor. Import it for side effects
// wherever transactions are decoded from the wire.
package all

import (
	_ "github.com/bondledger/bondmarketd/internal/core/tx/amm"
	_ "github.com/bondledger/bondmarketd/internal/core/tx/bond"
	_ "github.com/bondledger/bondmarketd/internal/core/tx/market"
	_ "github.com/bondledger/bondmarketd/internal/core/tx/token"
)
