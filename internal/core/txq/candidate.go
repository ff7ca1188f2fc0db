package txq

import (
	"sort"

	"github.com/bondledger/bondmarketd/internal/core/tx"
)

// Candidate is a transaction waiting for its account sequence gap to
// close. It holds what is needed to attempt application and track
// retries.
type Candidate struct {
	// Txn is the transaction to apply.
	Txn tx.Transaction

	// TxID is the transaction hash.
	TxID [32]byte

	// Account is the account that submitted the transaction.
	Account [20]byte

	// Sequence is the account sequence the transaction is waiting on.
	Sequence uint32

	// RetriesRemaining tracks how many more application attempts are
	// allowed before the candidate is dropped.
	RetriesRemaining int

	// LastResult holds the result from the last failed application
	// attempt. Zero value means no attempt has been made yet.
	LastResult tx.Result
}

// NewCandidate creates a candidate with the full retry allowance.
func NewCandidate(txn tx.Transaction, txID [32]byte, account [20]byte, sequence uint32, retries int) *Candidate {
	return &Candidate{
		Txn:              txn,
		TxID:             txID,
		Account:          account,
		Sequence:         sequence,
		RetriesRemaining: retries,
	}
}

// AccountQueue tracks queued transactions for a single account, keyed
// by sequence.
type AccountQueue struct {
	// Account is the account ID.
	Account [20]byte

	// Transactions maps sequence to candidate.
	Transactions map[uint32]*Candidate
}

// NewAccountQueue creates an empty queue for an account.
func NewAccountQueue(account [20]byte) *AccountQueue {
	return &AccountQueue{
		Account:      account,
		Transactions: make(map[uint32]*Candidate),
	}
}

// Add adds a candidate to this account's queue.
func (aq *AccountQueue) Add(c *Candidate) {
	aq.Transactions[c.Sequence] = c
}

// Remove removes the candidate with the given sequence. Returns true
// if a candidate was removed.
func (aq *AccountQueue) Remove(sequence uint32) bool {
	if _, exists := aq.Transactions[sequence]; exists {
		delete(aq.Transactions, sequence)
		return true
	}
	return false
}

// Get returns the candidate queued at the given sequence, nil if none.
func (aq *AccountQueue) Get(sequence uint32) *Candidate {
	return aq.Transactions[sequence]
}

// Count returns the number of transactions queued for this account.
func (aq *AccountQueue) Count() int {
	return len(aq.Transactions)
}

// Empty returns true if there are no queued transactions.
func (aq *AccountQueue) Empty() bool {
	return len(aq.Transactions) == 0
}

// Sorted returns all candidates ordered by sequence.
func (aq *AccountQueue) Sorted() []*Candidate {
	result := make([]*Candidate, 0, len(aq.Transactions))
	for _, c := range aq.Transactions {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Sequence < result[j].Sequence
	})
	return result
}
