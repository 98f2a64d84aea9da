package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/infinia/server/internal/config"
	"github.com/infinia/server/internal/core/event"
	coresys "github.com/infinia/server/internal/core/system"
	"github.com/infinia/server/internal/data"
	"github.com/infinia/server/internal/handler"
	gonet "github.com/infinia/server/internal/net"
	"github.com/infinia/server/internal/net/packet"
	"github.com/infinia/server/internal/persist"
	"github.com/infinia/server/internal/scripting"
	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/store/memstore"
	"github.com/infinia/server/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m %-41s \033[36;1m│\033[0m\n", serverName+" simulation server")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("INFINIA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger and crash reporting
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	printBanner(cfg.Server.Name)

	// 3. Open the store
	printSection("Storage")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()
	printOK(fmt.Sprintf("%s store ready", cfg.Database.Driver))

	// 4. Scripting
	var engine *scripting.Engine
	if cfg.Scripting.Enabled {
		engine, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("init scripting: %w", err)
		}
		defer engine.Close()
		printOK("Lua scripts loaded")
	}

	// 5. Arm the tick schedule
	bus := event.NewBus()
	deps := &handler.Deps{
		Store:     st,
		Config:    cfg,
		Log:       log,
		Bus:       bus,
		Scripting: engine,
	}
	boot := handler.Call{Timestamp: time.Now()}
	interval, err := handler.Init(ctx, boot, deps)
	if err != nil {
		return fmt.Errorf("init schedule: %w", err)
	}

	// 6. Bootstrap terrain
	printSection("World")
	if err := bootstrapPlanets(ctx, cfg.Data.Planets, boot, deps); err != nil {
		return err
	}
	if n, err := handler.GetChunkCount(ctx, deps); err == nil {
		printStat("Terrain chunks", n)
	}
	if counts, err := handler.GetPlayerCount(ctx, deps); err == nil {
		printStat("Active players", counts.Active)
		printStat("Logged out players", counts.LoggedOut)
	}

	// 7. Register reducers and start the network layer
	pktReg := packet.NewRegistry(log)
	handler.RegisterAll(pktReg, deps)

	netServer, err := gonet.NewServer(cfg.Network, log)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	go netServer.AcceptLoop()

	// 8. Build systems
	sessions := gonet.NewSessionStore()
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, sessions, cfg.Network.MaxPacketsPerTick, deps, log))
	runner.Register(system.NewEventDispatchSystem(bus, sessions, cfg.Simulation.InterestRadius, log))
	runner.Register(system.NewTickSystem(deps, log))
	runner.Register(system.NewOutputSystem(sessions))

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	printSection("Ready")
	printReady(fmt.Sprintf("listening on ws://%s%s", netServer.Addr().String(), cfg.Network.Path))
	printReady(fmt.Sprintf("game loop running (tick: %s)", interval))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(interval)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received",
				zap.String("signal", sig.String()),
				zap.Int("sessions", sessions.Count()))
			netServer.Shutdown()
			logOutAll(sessions, deps, log)
			uptime := time.Since(time.Unix(cfg.Server.StartTime, 0)).Truncate(time.Second)
			log.Info("server stopped", zap.Duration("uptime", uptime))
			return nil
		}
	}
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (store.Store, func(), error) {
	if cfg.Driver == "memory" {
		return memstore.New(), func() {}, nil
	}
	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	version, err := persist.RunMigrations(ctx, db.Pool)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database schema ready", zap.Int64("version", version))
	return persist.NewStore(db), db.Close, nil
}

// bootstrapPlanets seeds the initial chunk cube of every listed planet.
// Existing chunks are kept, so restarts create nothing new.
func bootstrapPlanets(ctx context.Context, path string, c handler.Call, deps *handler.Deps) error {
	if path == "" {
		return nil
	}
	planets, err := data.LoadPlanetTable(path)
	if err != nil {
		return fmt.Errorf("load planets: %w", err)
	}
	printStat("Planets", planets.Count())
	for _, p := range planets.All() {
		n, err := handler.StoreInitialChunksForPlanet(ctx, c, p.Name, p.Radius, deps)
		if err != nil {
			return fmt.Errorf("bootstrap planet %s: %w", p.Name, err)
		}
		if n > 0 {
			printOK(fmt.Sprintf("planet %s: %d chunks created", p.Name, n))
		}
	}
	return nil
}

// logOutAll moves every connected player to LoggedOut before exit.
func logOutAll(sessions *gonet.SessionStore, deps *handler.Deps, log *zap.Logger) {
	now := time.Now()
	sessions.ForEach(func(sess *gonet.Session) {
		sess.Close()
		c := handler.Call{Sender: sess.Identity, Timestamp: now}
		if err := handler.IdentityDisconnected(context.Background(), c, deps); err != nil {
			log.Error("logout on shutdown failed",
				zap.String("identity", sess.Identity.Short()),
				zap.Error(err))
		}
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
