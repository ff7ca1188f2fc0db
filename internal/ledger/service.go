package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"sync"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/amm"
	"github.com/bondledger/bondmarketd/internal/core/tx/market"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	"github.com/bondledger/bondmarketd/internal/core/txq"
	"github.com/bondledger/bondmarketd/internal/events"
	"github.com/bondledger/bondmarketd/internal/storage/nodestore"
	"github.com/bondledger/bondmarketd/internal/storage/relationaldb"
)

// Options configures a Service.
type Options struct {
	// Publisher receives events after commit. Defaults to discard.
	Publisher events.Publisher

	// History receives market and trade rows after commit. Optional.
	History relationaldb.Store

	// FeeBps overrides the AMM swap fee. Zero selects the default.
	FeeBps uint16

	// Queue overrides the transaction queue configuration. Zero value
	// selects the defaults.
	Queue txq.Config
}

// Service applies transactions against the persistent ledger. Every
// submission runs under one lock: the engine's buffered view assumes
// a single writer.
type Service struct {
	mu        sync.Mutex
	store     *nodestore.Store
	publisher events.Publisher
	history   relationaldb.Store
	queue     *txq.TxQ
	feeBps    uint16
	sequence  uint32
}

// NewService creates a ledger service over the given store.
func NewService(store *nodestore.Store, opts Options) *Service {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.Discard{}
	}
	queueConfig := opts.Queue
	if queueConfig == (txq.Config{}) {
		queueConfig = txq.DefaultConfig()
	}
	return &Service{
		store:     store,
		publisher: publisher,
		history:   opts.History,
		queue:     txq.New(queueConfig),
		feeBps:    opts.FeeBps,
		sequence:  1,
	}
}

// Submit applies one transaction. On success, events and history rows
// are emitted after the state is committed and any queued transactions
// unblocked by it are applied in turn. A transaction ahead of its
// account sequence is queued and its terPRE_SEQ result returned; it
// applies automatically once the gap closes.
func (s *Service) Submit(ctx context.Context, transaction tx.Transaction) tx.ApplyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.applyLocked(ctx, transaction)

	accountID, err := addresscodec.DecodeAccountID(transaction.GetCommon().Account)
	if err != nil {
		return res
	}
	if res.Applied {
		s.drainLocked(ctx, accountID)
		return res
	}
	if res.Result == tx.TerPRE_SEQ {
		c := txq.NewCandidate(transaction, res.TxHash, accountID,
			transaction.GetCommon().GetSequence(), s.queue.Config().RetriesAllowed)
		if err := s.queue.Insert(c); err != nil {
			log.Printf("ledger: queue transaction: %v", err)
		}
	}
	return res
}

// applyLocked runs one transaction through the engine and, when it
// applies, bumps the ledger sequence and emits its events.
func (s *Service) applyLocked(ctx context.Context, transaction tx.Transaction) tx.ApplyResult {
	view := &storeView{ctx: ctx, store: s.store}
	engine := tx.NewEngine(view, tx.EngineConfig{
		LedgerSequence: s.sequence,
		FeeBps:         s.feeBps,
	})

	res := engine.Apply(transaction)
	if !res.Applied {
		return res
	}
	applied := s.sequence
	s.sequence++

	for _, ev := range res.Events {
		s.publisher.Publish(ev)
		s.record(ctx, res.TxHash, applied, ev)
	}
	return res
}

// drainLocked applies queued transactions for an account as long as
// each one matches the account's next sequence.
func (s *Service) drainLocked(ctx context.Context, accountID [20]byte) {
	for {
		seq, err := s.accountSequenceLocked(ctx, accountID)
		if err != nil || seq == 0 {
			return
		}
		c := s.queue.PopReady(accountID, seq)
		if c == nil {
			return
		}
		res := s.applyLocked(ctx, c.Txn)
		if res.Applied {
			continue
		}
		c.LastResult = res.Result
		if res.Result.ShouldRetry() {
			s.queue.Requeue(c)
		}
		return
	}
}

// record mirrors an event into the history store.
func (s *Service) record(ctx context.Context, txHash [32]byte, ledgerSeq uint32, ev events.Event) {
	if s.history == nil {
		return
	}
	switch e := ev.(type) {
	case events.TradeEvent:
		err := s.history.SaveTrade(ctx, relationaldb.TradeRow{
			TxHash:         hex.EncodeToString(txHash[:]),
			Market:         e.Market,
			Trader:         e.Trader,
			Side:           e.Side,
			Amount:         e.Amount,
			Price:          e.Price,
			LedgerSequence: ledgerSeq,
		})
		if err != nil {
			log.Printf("ledger: record trade: %v", err)
		}
	case events.MarketCreated:
		m, _, result := market.Load(&storeView{ctx: ctx, store: s.store}, e.IssuerName)
		if !result.IsSuccess() {
			log.Printf("ledger: record market %q: %s", e.IssuerName, result)
			return
		}
		err := s.history.SaveMarket(ctx, relationaldb.MarketRow{
			MarketID:      e.Market,
			Admin:         addresscodec.EncodeAccountID(m.Admin),
			BondMint:      e.BondMint,
			QuoteMint:     addresscodec.EncodeAccountID(m.QuoteMint),
			IssuerName:    e.IssuerName,
			Maturity:      m.MaturityTimestamp,
			CouponBps:     m.CouponRateBps,
			CreatedLedger: ledgerSeq,
		})
		if err != nil {
			log.Printf("ledger: record market: %v", err)
		}
	}
}

// EnsureAccount funds an account root if it does not exist yet. Used
// for accounts listed in the genesis configuration.
func (s *Service) EnsureAccount(ctx context.Context, accountID [20]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := &storeView{ctx: ctx, store: s.store}
	k := keylet.Account(accountID)
	exists, err := view.Exists(k)
	if err != nil || exists {
		return err
	}
	root := &state.AccountRoot{AccountID: accountID, Sequence: 1}
	data, err := root.Serialize()
	if err != nil {
		return err
	}
	return view.Insert(k, data)
}

// Sequence returns the current ledger sequence.
func (s *Service) Sequence() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}

// Market returns a market by issuer name.
func (s *Service) Market(ctx context.Context, issuerName string) (*state.MarketState, tx.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, _, result := market.Load(&storeView{ctx: ctx, store: s.store}, issuerName)
	return m, result
}

// HasPool reports whether a market has an attached swap pool.
func (s *Service) HasPool(ctx context.Context, marketID [20]byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _, result := amm.LoadPool(&storeView{ctx: ctx, store: s.store}, marketID)
	if result == tx.TecNO_AMM {
		return false, nil
	}
	if !result.IsSuccess() {
		return false, fmt.Errorf("load pool: %s", result)
	}
	return true, nil
}

// Balance returns a holder's balance of a mint, zero when no token
// account exists.
func (s *Service) Balance(ctx context.Context, holder, mint [20]byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token.ReadBalance(&storeView{ctx: ctx, store: s.store}, holder, mint)
}

// AccountSequence returns the on-ledger sequence for an account, or
// zero when the account does not exist.
func (s *Service) AccountSequence(ctx context.Context, accountID [20]byte) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountSequenceLocked(ctx, accountID)
}

func (s *Service) accountSequenceLocked(ctx context.Context, accountID [20]byte) (uint32, error) {
	view := &storeView{ctx: ctx, store: s.store}
	data, err := view.Read(keylet.Account(accountID))
	if err != nil || data == nil {
		return 0, err
	}
	root, err := state.ParseAccountRoot(data)
	if err != nil {
		return 0, err
	}
	return root.Sequence, nil
}

// QueuedCount returns the number of transactions held in the queue.
func (s *Service) QueuedCount() int {
	return s.queue.Size()
}
