package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lenoa-backend/internal/adapter/events"
	httpadp "lenoa-backend/internal/adapter/http"
	"lenoa-backend/internal/adapter/repository/mysql"
	"lenoa-backend/internal/config"
	"lenoa-backend/internal/domain/access"
	"lenoa-backend/internal/infrastructure/cache"
	"lenoa-backend/internal/infrastructure/db"
	"lenoa-backend/internal/infrastructure/metrics"
	"lenoa-backend/internal/keeper"
	assetuc "lenoa-backend/internal/usecase/asset"
	claimuc "lenoa-backend/internal/usecase/claim"
	"lenoa-backend/internal/usecase/lending"
	"lenoa-backend/internal/usecase/treasury"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), logger)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()
	if err := mysql.AutoMigrate(gdb); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("open redis: %v", err)
	}
	defer rdb.Close()

	m := metrics.New(nil)
	emitter := events.Multi{
		events.NewRedisPublisher(rdb, cfg.EventsChannel),
		events.NewLogEmitter(logger),
		m,
	}

	operators := access.NewOperators(cfg.Operators()...)
	tx := mysql.NewGormUoW(gdb, cfg.Custody())
	assetRepo := mysql.NewAssetRepository(gdb)

	assets := assetuc.NewUsecase(assetRepo, operators, logger)
	seed, err := config.LoadAssets(cfg.AssetsFile)
	if err != nil {
		logger.Fatalf("load assets: %v", err)
	}
	if err := assets.Seed(ctx, seed); err != nil {
		logger.Fatalf("seed assets: %v", err)
	}

	lcfg := lending.DefaultConfig(cfg.Factory())
	lcfg.OriginationFeeBps = cfg.OriginationFeeBps
	lcfg.InterestFeeBps = cfg.InterestFeeBps
	lcfg.ClaimBaseURI = cfg.ClaimBaseURI
	loans := lending.NewUsecase(tx, mysql.NewLoanRepository(gdb), assetRepo, lcfg,
		lending.WithEmitter(emitter),
		lending.WithLogger(logger),
		lending.WithMetrics(m),
	)
	claims := claimuc.NewService(tx, mysql.NewClaimRepository(gdb),
		claimuc.Options{Factory: cfg.Factory(), BaseURI: cfg.ClaimBaseURI}, emitter, logger)
	fees := treasury.NewUsecase(tx, mysql.NewLedger(gdb, cfg.Custody()), operators, cfg.Collector(), emitter, logger)

	e := httpadp.NewRouter(httpadp.RouterDeps{
		Health: httpadp.NewHandler(
			httpadp.HealthCheck{Name: "database", Ping: sqlDB.PingContext},
			httpadp.HealthCheck{Name: "redis", Ping: cache.Pinger(rdb)},
		),
		Loans:          httpadp.NewLoanHandler(loans),
		Assets:         httpadp.NewAssetHandler(assets),
		Claims:         httpadp.NewClaimHandler(claims),
		Treasury:       httpadp.NewTreasuryHandler(fees),
		JWTSecret:      cfg.JWTSecret,
		Redis:          rdb,
		IdempotencyTTL: time.Duration(cfg.IdempTTLSecs) * time.Second,
		Log:            logger,
		Metrics:        m,
	})

	if cfg.KeeperEnabled() {
		k := keeper.NewLiquidator(loans, cfg.Keeper(), keeper.DefaultBatchSize, m, logger)
		if err := k.Start(cfg.KeeperSchedule); err != nil {
			logger.Fatalf("start keeper: %v", err)
		}
		defer k.Stop()
	}

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
}
