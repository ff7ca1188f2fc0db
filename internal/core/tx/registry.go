package tx

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTransactionType is returned when a transaction type is
// unknown or not registered.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// Factory creates an empty transaction of one type, ready for JSON
// unmarshaling.
type Factory func() Transaction

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Factory)
)

// Register installs a factory for a transaction type. Transactor
// packages call this from init(); importing a transactor package is
// what makes its type submittable.
func Register(t Type, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("tx: duplicate registration for %s", t))
	}
	registry[t] = f
}

// NewFromType creates a new empty transaction of the given type.
func NewFromType(t Type) (Transaction, error) {
	registryMu.RLock()
	f, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return f(), nil
}

// FromJSON creates a Transaction from a JSON object, dispatching on
// the TransactionType field.
func FromJSON(data []byte) (Transaction, error) {
	var raw struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	txType, ok := TypeFromName(raw.TransactionType)
	if !ok {
		return nil, ErrUnknownTransactionType
	}

	t, err := NewFromType(txType)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ToJSON serializes a transaction.
func ToJSON(t Transaction) ([]byte, error) {
	return json.Marshal(t)
}
