// Package ledger owns the authoritative ledger state: it serializes
// transaction application, persists results through the nodestore and
// publishes events after commit.
package ledger

import (
	"context"
	"errors"

	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/storage/nodestore"
)

// storeView adapts a nodestore.Store to the engine's LedgerView.
type storeView struct {
	ctx   context.Context
	store *nodestore.Store
}

func (v *storeView) Read(k keylet.Keylet) ([]byte, error) {
	data, err := v.store.Fetch(v.ctx, k.Key)
	if err != nil {
		if errors.Is(err, nodestore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (v *storeView) Exists(k keylet.Keylet) (bool, error) {
	return v.store.Exists(v.ctx, k.Key)
}

func (v *storeView) Insert(k keylet.Keylet, data []byte) error {
	exists, err := v.store.Exists(v.ctx, k.Key)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("entry already exists")
	}
	return v.store.Store(v.ctx, k.Key, data)
}

func (v *storeView) Update(k keylet.Keylet, data []byte) error {
	exists, err := v.store.Exists(v.ctx, k.Key)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("entry does not exist")
	}
	return v.store.Store(v.ctx, k.Key, data)
}

func (v *storeView) Erase(k keylet.Keylet) error {
	exists, err := v.store.Exists(v.ctx, k.Key)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("entry does not exist")
	}
	return v.store.Delete(v.ctx, k.Key)
}
