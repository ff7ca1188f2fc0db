package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bondledger/bondmarketd/internal/config"
	_ "github.com/bondledger/bondmarketd/internal/core/tx/all"
	"github.com/bondledger/bondmarketd/internal/events"
	"github.com/bondledger/bondmarketd/internal/ledger"
	"github.com/bondledger/bondmarketd/internal/rpc"
	"github.com/bondledger/bondmarketd/internal/storage"
	"github.com/bondledger/bondmarketd/internal/storage/nodestore"
	"github.com/bondledger/bondmarketd/internal/storage/relationaldb"
)

var listenAddr string

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the bond market daemon",
	Long: `Start the bondmarketd server which provides:
- HTTP JSON-RPC API for transaction submission and queries
- WebSocket event streams for markets and trades

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = serverCmd.RunE

	serverCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides the configured one")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}

	db, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	store, err := nodestore.New(db, cfg.Storage.CacheSize)
	if err != nil {
		return fmt.Errorf("open nodestore: %w", err)
	}

	var history relationaldb.Store
	if cfg.History.Driver != "" {
		history, err = relationaldb.Open(cfg.History.Driver, cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer history.Close()
	}

	hub := events.NewHub()

	service := ledger.NewService(store, ledger.Options{
		Publisher: hub,
		History:   history,
		FeeBps:    cfg.Ledger.FeeBps,
	})

	genesis, err := cfg.GenesisAccountIDs()
	if err != nil {
		return err
	}
	for _, id := range genesis {
		if err := service.EnsureAccount(cmd.Context(), id); err != nil {
			return fmt.Errorf("fund genesis account: %w", err)
		}
	}

	server := rpc.NewServer(&rpc.Services{Ledger: service, History: history}, hub)
	httpServer := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if !quiet {
		fmt.Printf("bondmarketd listening on %s\n", cfg.Server.Listen)
		fmt.Printf("  - HTTP JSON-RPC: http://%s/\n", cfg.Server.Listen)
		fmt.Printf("  - WebSocket:     ws://%s/ws\n", cfg.Server.Listen)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if !quiet {
			log.Println("shutting down")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
