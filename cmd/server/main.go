// @title           Immofox API
// @version         1.0
// @description     Property management for Vermieter, Mieter and Handwerker: properties, units, tenants, damage reports, chat and notifications.

// @contact.name   Immofox Support
// @contact.email  support@immofox.de

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"immofox-http-service/internal/app/routes"
	"immofox-http-service/internal/app/ws"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/infrastructure/config"
	"immofox-http-service/internal/infrastructure/database"
	"immofox-http-service/internal/infrastructure/mqtt"
	Logger "immofox-http-service/pkg/logger"
)

func main() {
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("Logger konnte nicht initialisiert werden: %v\n", err)
		os.Exit(1)
	}

	// environment variables may also be set without a .env file
	if err := godotenv.Load(); err != nil {
		Logger.Warning("Keine .env Datei geladen: %v", err)
	} else {
		Logger.Info(".env Datei geladen")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		Logger.Error("Konfiguration ungültig: %v", err)
		os.Exit(1)
	}

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		Logger.Error("Datenbankverbindung fehlgeschlagen: %v", err)
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	if err := database.Migrate(db, cfg.DBMigrationMode); err != nil {
		Logger.Error("Migration fehlgeschlagen: %v", err)
		os.Exit(1)
	}
	if cfg.SeedDemo {
		if err := database.SeedDemoData(db); err != nil {
			Logger.Error("Demodaten konnten nicht angelegt werden: %v", err)
		}
	}

	var opts []container.Option
	if cfg.MQTTEnabled {
		publisher := mqtt.NewPublisher(cfg)
		if err := publisher.Connect(); err != nil {
			// push over MQTT is optional; clients still poll and use the websocket
			Logger.Warning("MQTT Broker %s nicht erreichbar: %v", cfg.MQTTBrokerURL, err)
		} else {
			opts = append(opts, container.WithMQTT(publisher))
		}
	}

	serviceContainer := container.NewServiceContainer(db, cfg, opts...)
	defer serviceContainer.Close()

	hub := ws.NewHub(cfg.CORSOrigin)
	defer hub.Close()
	serviceContainer.Publisher().Add(hub)

	r := routes.SetupRouter(serviceContainer, hub, cfg)
	printSystemInfo(pool)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		Logger.Info("Server startet auf http://0.0.0.0:%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Error("Server konnte nicht gestartet werden: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	Logger.Info("Server wird beendet")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Logger.Error("Server wurde nicht sauber beendet: %v", err)
	}
}

// printSystemInfo logs pool and runtime figures at startup
func printSystemInfo(pool *database.ConnectionPool) {
	if stats, err := pool.Stats(); err == nil {
		Logger.Info("Datenbank Pool: %+v", stats)
	}
	Logger.Info("CPU Kerne: %d, Goroutinen: %d", runtime.NumCPU(), runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	Logger.Info("Speicher: Alloc=%v MiB, Sys=%v MiB", m.Alloc/1024/1024, m.Sys/1024/1024)
}
