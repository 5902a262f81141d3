package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ryfitz11/NFT-Tickets/internal/app"
	"github.com/Ryfitz11/NFT-Tickets/internal/auth"
	"github.com/Ryfitz11/NFT-Tickets/internal/broker"
	"github.com/Ryfitz11/NFT-Tickets/internal/clock"
	"github.com/Ryfitz11/NFT-Tickets/internal/config"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
	"github.com/Ryfitz11/NFT-Tickets/internal/journal"
	"github.com/Ryfitz11/NFT-Tickets/internal/registry"
	"github.com/Ryfitz11/NFT-Tickets/internal/storage/postgres"
	"github.com/Ryfitz11/NFT-Tickets/internal/token"
	transporthttp "github.com/Ryfitz11/NFT-Tickets/internal/transport/http"
	"github.com/Ryfitz11/NFT-Tickets/migrations"
)

const shutdownTimeout = 10 * time.Second

var (
	factoryAddress    = domain.MustParseAddress("0x00000000000000000000000000000000000fac70")
	stablecoinAddress = domain.MustParseAddress("0x0000000000000000000000000000000000005dc0")
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.Load(os.Args[1:], bootLogger)
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		if cfg.IssueToken != "" {
			return errors.New("--issue-token requires JWT_SECRET")
		}
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
		cfg.JWTSecret = secret
	}
	clk := clock.NewSystem()
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, clk)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	if cfg.IssueToken != "" {
		addr, err := domain.ParseAddress(cfg.IssueToken)
		if err != nil {
			return fmt.Errorf("--issue-token: %w", err)
		}
		tok, err := issuer.IssueToken(addr)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coin := token.NewMemory(stablecoinAddress, "mUSDC")
	records := journal.NewLog(logger)
	var (
		sinks      []journal.Sink
		firstNonce uint64
	)
	probes := map[string]transporthttp.Probe{}

	if cfg.DatabaseURL != "" {
		pool, err := openDatabase(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		store := postgres.NewRecordRepository(pool)
		if firstNonce, err = store.Resume(ctx); err != nil {
			return err
		}
		logger.Info("record store resumed", "epoch", store.Epoch(), "stored_ledgers", firstNonce)
		sinks = append(sinks, store)
		probes["postgres"] = pool.Ping
	} else {
		logger.Warn("DATABASE_URL not set, records will not be persisted")
	}

	reg := registry.New(registry.Config{
		Address:    factoryAddress,
		Owner:      cfg.FactoryOwner,
		FirstNonce: firstNonce,
		Tokens:     token.NewDirectory(coin),
		Clock:      clk,
		Emitter:    records,
		Logger:     logger,
	})

	eventSvc := app.NewEventService(reg, app.WithDefaultPaymentToken(coin.Address()))
	ticketSvc := app.NewTicketService(reg, records)
	walletSvc := app.NewWalletService(coin, app.WithMintLimit(cfg.FaucetLimit))

	if cfg.AMQPURL != "" {
		pub := broker.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err := pub.Connect(); err != nil {
			logger.Warn("amqp connect failed, will retry on delivery", "err", err)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	} else {
		logger.Warn("AMQP_URL not set, records will not be published")
	}

	if cfg.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := app.Seed(ctx, eventSvc, walletSvc, seedInput(seed), logger); err != nil {
			return err
		}
	}

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	var dispatchWG sync.WaitGroup
	if len(sinks) > 0 {
		dispatcher := journal.NewDispatcher(records, logger, sinks...)
		dispatchWG.Add(1)
		go func() {
			defer dispatchWG.Done()
			dispatcher.Run(dispatchCtx)
		}()
	}
	defer func() {
		stopDispatch()
		dispatchWG.Wait()
	}()

	handler := transporthttp.NewRouter(transporthttp.RouterConfig{
		Events:      eventSvc,
		Tickets:     ticketSvc,
		Wallets:     walletSvc,
		Auth:        issuer,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Probes:      probes,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("api listening",
		"addr", server.Addr,
		"factory", reg.Address().String(),
		"factory_owner", reg.Owner().String(),
		"stablecoin", coin.Address().String(),
	)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown", "err", err)
	}
	logger.Info("server stopped", "records", records.Len())
	return nil
}

func openDatabase(ctx context.Context, url string, logger *slog.Logger) (*pgxpool.Pool, error) {
	startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(startupCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := migrations.Apply(startupCtx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return pool, nil
}

func seedInput(seed config.Seed) app.SeedInput {
	in := app.SeedInput{
		Events:   make([]app.CreateEventInput, 0, len(seed.Events)),
		Balances: make([]app.SeedBalance, 0, len(seed.Wallets)),
	}
	for _, ev := range seed.Events {
		in.Events = append(in.Events, app.CreateEventInput{
			Caller:           ev.Owner,
			CollectionName:   ev.CollectionName,
			CollectionSymbol: ev.CollectionSymbol,
			EventName:        ev.EventName,
			EventDate:        ev.EventDate,
			TotalSupply:      ev.TotalSupply,
			TicketPrice:      ev.TicketPrice,
			TicketLimit:      ev.TicketLimit,
			PaymentToken:     ev.PaymentToken,
			ImageURI:         ev.ImageURI,
		})
	}
	for _, w := range seed.Wallets {
		in.Balances = append(in.Balances, app.SeedBalance{
			Address: w.Address,
			Amount:  w.Balance,
			Approve: w.Approve,
		})
	}
	return in
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
