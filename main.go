package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fevergolang/internal/auth"
	"fevergolang/internal/config"
	"fevergolang/internal/device"
	"fevergolang/internal/jobs"
	"fevergolang/internal/logging"
	"fevergolang/internal/printer"
	"fevergolang/internal/server"
	"fevergolang/internal/spool"
	"fevergolang/internal/store"
)

func main() {
	_ = godotenv.Load()

	logging.Configure(os.Getenv("FEVER_ERROR_LOG"), os.Getenv("FEVER_ACCESS_LOG"), maxLogSize())
	log.SetOutput(logging.ErrorWriter())

	cfg, err := config.Open("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	set, err := config.ExtractSettings(cfg)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if set.PrintConfigOnStartup {
		fmt.Println(cfg.Dump())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sp := spool.Spool{Dir: set.ArtifactsDir}
	if err := sp.Ensure(); err != nil {
		log.Fatalf("failed to create artifacts dir: %v", err)
	}

	st, err := store.Open(ctx, set.DatabaseURI)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatalf("store self-check failed: %v", err)
	}

	dev, err := device.Open(set.PrinterFile)
	if err != nil {
		log.Fatalf("failed to open printer device: %v", err)
	}

	srv := &server.Server{
		Jobs: &jobs.Orchestrator{
			Config:  cfg,
			Store:   st,
			Spool:   sp,
			Printer: printer.New(dev),
		},
		Credentials: auth.New(set.PasswordsFile, set.AnonymousLoginEnabled),
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(logging.ErrorWriter())
	e.Use(middleware.Recover())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Output: logging.AccessWriter()}))
	srv.RegisterRoutes(e)

	addr := os.Getenv("FEVER_LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()
	log.Printf("listening on %s", addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func maxLogSize() int64 {
	v := os.Getenv("FEVER_MAX_LOG_SIZE")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
