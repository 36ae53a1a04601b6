// Command wayfarer runs the travel simulation: it generates a scenario,
// wires the oracle and telemetry, and steps the model for the configured
// number of days.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/wayfarer-sim/wayfarer/internal/api"
	"github.com/wayfarer-sim/wayfarer/internal/engine"
	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/oracle"
	"github.com/wayfarer-sim/wayfarer/internal/route"
	"github.com/wayfarer-sim/wayfarer/internal/scenario"
	"github.com/wayfarer-sim/wayfarer/internal/telemetry"
	"github.com/wayfarer-sim/wayfarer/internal/traveler"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := engine.DefaultConfig()
	cfg.Days = envInt("WAYFARER_DAYS", cfg.Days)
	cfg.Seed = int64(envInt("WAYFARER_SEED", int(cfg.Seed)))
	dataDir := envOrDefault("WAYFARER_DATA_DIR", "data")
	apiPort := envInt("WAYFARER_API_PORT", 8080)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		slog.Error("data dir", "error", err)
		os.Exit(1)
	}

	// ── Oracle ────────────────────────────────────────────────────────
	var responder oracle.Responder
	client := oracle.NewClient(os.Getenv("ANTHROPIC_API_KEY"))
	if client.Enabled() {
		cache, err := oracle.OpenCache(filepath.Join(dataDir, "oracle-cache.db"), client)
		if err != nil {
			slog.Error("oracle cache", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		responder = cache
		slog.Info("oracle enabled", "cache", filepath.Join(dataDir, "oracle-cache.db"))
	} else {
		slog.Warn("no ANTHROPIC_API_KEY set, oracle disabled, using deterministic fallbacks")
	}
	advisor := oracle.NewAdvisor(responder)

	// ── Telemetry ─────────────────────────────────────────────────────
	store, err := telemetry.OpenStore(filepath.Join(dataDir, "journeys.db"))
	if err != nil {
		slog.Error("journeys store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// ── Scenario ──────────────────────────────────────────────────────
	genCfg := scenario.DefaultGenConfig()
	genCfg.Seed = cfg.Seed
	scn, err := scenario.Generate(genCfg)
	if err != nil {
		slog.Error("scenario generation", "error", err)
		os.Exit(1)
	}

	nets := map[route.Mode]*network.Network{
		route.ModeWalk:  network.NewActiveNetwork(scn.Graphs[route.ModeWalk]),
		route.ModeBike:  network.NewActiveNetwork(scn.Graphs[route.ModeBike]),
		route.ModeDrive: network.NewDriveNetwork(scn.Graphs[route.ModeDrive], cfg.DefaultSpeedLimit, cfg.CarSpeedFactor),
	}

	locIndex := make(map[string]engine.Location, len(scn.Locations))
	for _, l := range scn.Locations {
		locIndex[l.Name] = l
	}

	travelers := make([]*traveler.Traveler, 0, len(scn.Residents))
	for _, res := range scn.Residents {
		home := locIndex[res.Home]
		tr := traveler.New(res.Name, res.Home, res.Description, home.Point, advisor)
		tr.HasBike = res.HasBike
		tr.HasCar = res.HasCar
		travelers = append(travelers, tr)
	}

	model, err := engine.NewModel(cfg, nets, scn.Locations, travelers, store)
	if err != nil {
		slog.Error("model assembly", "error", err)
		os.Exit(1)
	}
	slog.Info("scenario ready",
		"locations", len(scn.Locations),
		"travelers", len(travelers),
		"nodes", len(scn.Graphs[route.ModeWalk].Nodes()),
	)

	// ── API ───────────────────────────────────────────────────────────
	server := &api.Server{Model: model, Store: store, Port: apiPort}
	server.Start()

	// ── Run ───────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := model.Run(ctx); err != nil {
		if ctx.Err() != nil {
			slog.Info("interrupted, shutting down")
		} else {
			slog.Error("simulation failed", "error", err)
			os.Exit(1)
		}
	}

	// ── Summary ───────────────────────────────────────────────────────
	total, err := store.Count()
	if err != nil {
		slog.Error("journey count", "error", err)
		os.Exit(1)
	}
	byMode, err := store.CountByMode()
	if err != nil {
		slog.Error("journey breakdown", "error", err)
		os.Exit(1)
	}
	slog.Info("run summary",
		"days", model.Day(),
		"journeys", humanize.Comma(int64(total)),
		"walked", humanize.Comma(int64(byMode[route.ModeWalk])),
		"cycled", humanize.Comma(int64(byMode[route.ModeBike])),
		"driven", humanize.Comma(int64(byMode[route.ModeDrive])),
	)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring invalid env value", "key", key, "value", v)
	}
	return defaultVal
}
