package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jmwansa/stockledger-backend/internal/config"
	"github.com/jmwansa/stockledger-backend/internal/logger"
	"github.com/jmwansa/stockledger-backend/internal/modules/auth"
	"github.com/jmwansa/stockledger-backend/internal/modules/catalog"
	"github.com/jmwansa/stockledger-backend/internal/modules/ledger"
	"github.com/jmwansa/stockledger-backend/internal/modules/reports"
	"github.com/jmwansa/stockledger-backend/internal/modules/simulation"
	"github.com/jmwansa/stockledger-backend/internal/modules/supplier"
	"github.com/jmwansa/stockledger-backend/internal/modules/user"
	"github.com/jmwansa/stockledger-backend/internal/modules/warehouse"
)

func main() {
	// .env is optional outside local dev.
	_ = godotenv.Load()

	cfg := config.Load()

	zlog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := db.Ping(); err != nil {
		zlog.Fatal("ping database", zap.Error(err))
	}
	zlog.Info("connected to database")

	// Duplicate-request detection is skipped entirely when redis is not
	// configured.
	var guard ledger.IdempotencyGuard
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		guard = ledger.NewRedisGuard(rdb)
		zlog.Info("idempotency guard enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(auth.Middleware(cfg.JWT.SecretKey))

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo, cfg.JWT.SecretKey)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Entity store ────────────────────────────────────────
	supplierRepo := supplier.NewPostgresRepository(db)
	supplierService := supplier.NewService(supplierRepo)
	supplier.NewHandler(supplierService).RegisterRoutes(router)

	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	warehouseRepo := warehouse.NewPostgresRepository(db)
	warehouseService := warehouse.NewService(warehouseRepo)
	warehouse.NewHandler(warehouseService).RegisterRoutes(router)

	// ── Transaction ledger ──────────────────────────────────
	ledgerRepo := ledger.NewPostgresRepository(db)
	ledgerService := ledger.NewService(ledgerRepo, guard, cfg.Inventory.AllowNegative, zlog)
	ledger.NewHandler(ledgerService).RegisterRoutes(router)

	// ── Reporting ───────────────────────────────────────────
	reportsRepo := reports.NewPostgresRepository(db)
	reportsService := reports.NewService(reportsRepo)
	reports.NewHandler(reportsService).RegisterRoutes(router)

	// ── Simulation ──────────────────────────────────────────
	generator := simulation.NewGenerator(cfg.Simulation.Seed, cfg.Simulation.DemandWeights)
	simulationRepo := simulation.NewPostgresRepository(db)
	engine := simulation.NewEngine(generator, ledgerService, reportsService,
		catalogService, warehouseService, simulationRepo, zlog)
	simulation.NewHandler(engine, simulationRepo).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	zlog.Info("stockledger API server starting", zap.String("port", cfg.Server.Port))
	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
