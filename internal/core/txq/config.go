package txq

// Config holds configuration for the transaction queue.
type Config struct {
	// QueueSizeMax is the total number of transactions the queue can
	// hold across all accounts.
	QueueSizeMax uint32

	// MaximumTxnPerAccount is the maximum number of transactions that
	// can be queued for a single account.
	MaximumTxnPerAccount uint32

	// RetriesAllowed is how many failed application attempts a queued
	// transaction survives before it is dropped.
	RetriesAllowed int
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		QueueSizeMax:         2000,
		MaximumTxnPerAccount: 10,
		RetriesAllowed:       10,
	}
}
