// README: Entry point; loads config, wires stores and services, starts the
// HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridedispatch/internal/auth"
	"ridedispatch/internal/config"
	httptransport "ridedispatch/internal/http"
	"ridedispatch/internal/infra"
	"ridedispatch/internal/modules/address"
	"ridedispatch/internal/modules/dispatch"
	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/eta"
	"ridedispatch/internal/modules/service"
	"ridedispatch/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := infra.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	var geoIndex *driver.GeoIndex
	if cfg.Redis.Enabled {
		geoIndex = driver.NewGeoIndex(infra.NewRedis(cfg.Redis.Addr))
	}

	authMgr, err := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	if err != nil {
		log.Fatal(err)
	}

	var routes eta.RouteClient
	if cfg.Maps.APIKey != "" {
		routes, err = eta.NewMapsClient(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal(err)
		}
	}
	estimator, err := eta.NewEstimator(cfg.Dispatch.AverageSpeedKmh, routes, logger)
	if err != nil {
		log.Fatal(err)
	}

	driverSvc := driver.NewService(driver.NewPGStore(dbPool), geoIndex, logger)
	serviceSvc := service.NewService(service.NewPGStore(dbPool), driverSvc, logger)

	engine, err := dispatch.NewEngine(driverSvc, serviceSvc, estimator, cfg.Dispatch.MaxAttempts, logger)
	if err != nil {
		log.Fatal(err)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:           authMgr,
		Engine:         engine,
		Services:       serviceSvc,
		Drivers:        driverSvc,
		Users:          user.NewPGStore(dbPool),
		Addresses:      address.NewPGStore(dbPool),
		NearbyRadiusKm: cfg.Dispatch.NearbyRadiusKm,
		Log:            logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("server shutdown")
		}
	}()

	logger.WithField("addr", cfg.HTTP.Addr).Info("dispatch api listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
