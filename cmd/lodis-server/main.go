// Command lodis-server runs the lodis collection server: an HTTP front
// end (internal/httpserver) dispatching framed commands (internal/
// dispatcher) against collections (internal/list, internal/hmap,
// internal/arraymap) backed by an embedded badger store. Process
// structure is carried from the teacher's cmd/zmux-server/main.go: a
// development-config zap logger, graceful startup/shutdown logging, and
// a single gin.Engine serving one bound address.
package main

import (
	"context"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edirooss/lodis/internal/config"
	"github.com/edirooss/lodis/internal/dispatcher"
	"github.com/edirooss/lodis/internal/httpserver"
	"github.com/edirooss/lodis/internal/registry"
	"github.com/edirooss/lodis/internal/shardlock"
	"github.com/edirooss/lodis/internal/store/badgerstore"
)

func main() {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal("config parse failed", zap.Error(err))
	}

	db, err := badgerstore.Open(badgerstore.Options{Dir: cfg.DataDir, InMemory: cfg.InMemory}, log)
	if err != nil {
		log.Fatal("store open failed", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("store close failed", zap.Error(err))
		}
	}()

	shards := shardlock.New()
	reg := registry.Open(db)
	rnd := func(n uint32) uint32 {
		if n == 0 {
			return 0
		}
		return rand.Uint32N(n)
	}
	d := dispatcher.New(db, shards, reg, rnd, time.Now)

	r := httpserver.New(d, log, httpserver.Options{
		Dev:           cfg.Dev,
		MaxConcurrent: cfg.MaxConcurrent,
		MaxBodyBytes:  cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
