// Package txq holds transactions submitted ahead of their account
// sequence until the gap closes. A transaction that fails with a
// retryable result is queued instead of dropped; once the preceding
// sequence applies, the owner pops the next ready candidate and
// applies it.
package txq

import (
	"errors"
	"sync"
)

// Queueing errors.
var (
	ErrQueueFull        = errors.New("transaction queue is full")
	ErrAccountQueueFull = errors.New("account queue is full")
	ErrDuplicate        = errors.New("a transaction with this sequence is already queued")
)

// TxQ holds transactions waiting on an account sequence gap.
type TxQ struct {
	mu sync.Mutex

	// config holds the queue configuration.
	config Config

	// byAccount maps account ID to that account's queue.
	byAccount map[[20]byte]*AccountQueue

	// size is the total number of queued candidates.
	size uint32
}

// New creates a transaction queue.
func New(config Config) *TxQ {
	return &TxQ{
		config:    config,
		byAccount: make(map[[20]byte]*AccountQueue),
	}
}

// Insert queues a candidate. A sequence already queued for the same
// account is not replaced: there is no fee to outbid with, first
// submission wins.
func (q *TxQ) Insert(c *Candidate) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size >= q.config.QueueSizeMax {
		return ErrQueueFull
	}

	aq, ok := q.byAccount[c.Account]
	if !ok {
		aq = NewAccountQueue(c.Account)
		q.byAccount[c.Account] = aq
	}
	if uint32(aq.Count()) >= q.config.MaximumTxnPerAccount {
		return ErrAccountQueueFull
	}
	if aq.Get(c.Sequence) != nil {
		return ErrDuplicate
	}

	aq.Add(c)
	q.size++
	return nil
}

// PopReady removes and returns the candidate queued at exactly the
// given sequence for the account, nil when none is ready.
func (q *TxQ) PopReady(account [20]byte, sequence uint32) *Candidate {
	q.mu.Lock()
	defer q.mu.Unlock()

	aq, ok := q.byAccount[account]
	if !ok {
		return nil
	}
	c := aq.Get(sequence)
	if c == nil {
		return nil
	}
	aq.Remove(sequence)
	q.size--
	if aq.Empty() {
		delete(q.byAccount, account)
	}
	return c
}

// Requeue puts a candidate back after a failed attempt, charging one
// retry. Returns false when the retry allowance is exhausted and the
// candidate was dropped.
func (q *TxQ) Requeue(c *Candidate) bool {
	c.RetriesRemaining--
	if c.RetriesRemaining <= 0 {
		return false
	}
	return q.Insert(c) == nil
}

// Config returns the queue configuration.
func (q *TxQ) Config() Config {
	return q.config
}

// Size returns the total number of queued candidates.
func (q *TxQ) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.size)
}

// AccountSize returns the number of candidates queued for an account.
func (q *TxQ) AccountSize(account [20]byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	aq, ok := q.byAccount[account]
	if !ok {
		return 0
	}
	return aq.Count()
}

// Queued returns the candidates for an account ordered by sequence.
func (q *TxQ) Queued(account [20]byte) []*Candidate {
	q.mu.Lock()
	defer q.mu.Unlock()
	aq, ok := q.byAccount[account]
	if !ok {
		return nil
	}
	return aq.Sorted()
}
