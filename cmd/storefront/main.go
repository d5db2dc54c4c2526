package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/zerone-labs/storefront/internal/assistant"
	"github.com/zerone-labs/storefront/internal/auth"
	"github.com/zerone-labs/storefront/internal/config"
	"github.com/zerone-labs/storefront/internal/events"
	"github.com/zerone-labs/storefront/internal/httpserver"
	"github.com/zerone-labs/storefront/internal/kvstore"
	"github.com/zerone-labs/storefront/internal/live"
	"github.com/zerone-labs/storefront/internal/logging"
	"github.com/zerone-labs/storefront/internal/search"
	"github.com/zerone-labs/storefront/internal/session"
	"github.com/zerone-labs/storefront/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	kv, err := kvstore.Open(initCtx, cfg.DatabaseURL, cfg.SQLitePath)
	cancel()
	if err != nil {
		log.Fatalf("kvstore init error: %v", err)
	}
	defer kv.Close()

	var creds auth.Checker
	if cfg.AdminPasscodeHash != "" {
		creds = auth.Bcrypt{Hash: cfg.AdminPasscodeHash}
	} else {
		creds = auth.Static{Passcode: cfg.AdminPasscode}
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := live.NewHub(logger.With("component", "live"))
	go hub.Run(hubCtx)

	sinks := store.Sinks{hub}

	if cfg.KafkaAddress != "" {
		producer := events.NewProducer(cfg.KafkaAddress, cfg.KafkaTopic, logger.With("component", "events"))
		defer producer.Close()
		sinks = append(sinks, producer)
	}

	var index *search.Index
	if cfg.ESURL != "" {
		index, err = search.NewIndex(cfg.ESURL, cfg.ESUser, cfg.ESPassword, cfg.ESIndex, logger.With("component", "search"))
		if err != nil {
			log.Fatalf("search init error: %v", err)
		}
		sinks = append(sinks, index)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	st := store.New(loadCtx, store.Deps{
		Persister: kv,
		Creds:     creds,
		Sink:      sinks,
		Logger:    logger.With("component", "store"),
	})
	cancelLoad()

	sessions := &session.Manager{
		Secret: []byte(cfg.JWTSecret),
		TTL:    12 * time.Hour,
	}

	var ai assistant.Assistant
	if cfg.GeminiAPIKey != "" {
		ai = assistant.NewGemini(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel)
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(httpserver.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Shop:      &httpserver.ShopHTTP{Store: st, Index: index},
		Admin:     &httpserver.AdminHTTP{Store: st, Sessions: sessions},
		Assistant: &httpserver.AssistantHTTP{Store: st, AI: ai},
		Sessions:  sessions,
		Hub:       hub,
	})

	go func() {
		logger.Info("starting storefront", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
}
