package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dexledger/config"
	"dexledger/core"
	"dexledger/native/router"
	"dexledger/observability/logging"
	"dexledger/rpc"
	"dexledger/storage"
	"dexledger/venue"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	seedFlag := flag.Bool("seed", false, "Run one-time venue seeding before serving")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("DEXLEDGER_ENV"))
	logger := logging.Setup("dexledgerd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	params := core.Params{
		BaseSymbol:        cfg.Assets.BaseSymbol,
		QuoteSymbol:       cfg.Assets.QuoteSymbol,
		BaseFaucetAmount:  config.MustAmount(cfg.Faucet.BaseAmount),
		QuoteFaucetAmount: config.MustAmount(cfg.Faucet.QuoteAmount),
		RewardSymbol:      cfg.Rewards.Symbol,
		RewardUnit:        config.MustAmount(cfg.Rewards.Unit),
		Seed: router.SeedConfig{
			BaseDeposit:  config.MustAmount(cfg.Seeding.BaseDeposit),
			QuoteDeposit: config.MustAmount(cfg.Seeding.QuoteDeposit),
			AskPrice:     config.MustAmount(cfg.Seeding.AskPrice),
			AskQuantity:  config.MustAmount(cfg.Seeding.AskQuantity),
			BidPrice:     config.MustAmount(cfg.Seeding.BidPrice),
			BidQuantity:  config.MustAmount(cfg.Seeding.BidQuantity),
			OrderExpiry:  cfg.Seeding.OrderExpiry,
		},
	}

	periods, err := core.NewTimePeriods(cfg.Faucet.EpochSeconds)
	if err != nil {
		logger.Error("Failed to configure faucet periods", slog.Any("error", err))
		os.Exit(1)
	}

	ledger, err := core.NewLedger(db, params, periods)
	if err != nil {
		logger.Error("Failed to initialise ledger", slog.Any("error", err))
		os.Exit(1)
	}

	venueClient := venue.NewClient(cfg.VenueURL)

	if *seedFlag {
		if err := ledger.SeedVenue(venueClient); err != nil {
			if errors.Is(err, router.ErrAlreadySeeded) {
				logger.Info("Venue already seeded, continuing")
			} else {
				logger.Error("Failed to seed venue", slog.Any("error", err))
				os.Exit(1)
			}
		} else {
			logger.Info("Venue seeded",
				slog.String("base", cfg.Assets.BaseSymbol),
				slog.String("quote", cfg.Assets.QuoteSymbol))
		}
	}

	go func() {
		ops := chi.NewRouter()
		ops.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		ops.Handle("/metrics", promhttp.Handler())
		logger.Info("Ops listener starting", slog.String("address", cfg.OpsAddress))
		if err := http.ListenAndServe(cfg.OpsAddress, ops); err != nil {
			logger.Error("Ops listener failed", slog.Any("error", err))
		}
	}()

	server := rpc.NewServer(ledger, venueClient)
	logger.Info("RPC server starting",
		slog.String("address", cfg.RPCAddress),
		slog.String("network", cfg.NetworkName),
		slog.String("venue", cfg.VenueURL))
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
