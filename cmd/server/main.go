package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hostelgrub/api/internal/auth"
	"github.com/hostelgrub/api/internal/config"
	"github.com/hostelgrub/api/internal/menu"
	"github.com/hostelgrub/api/internal/router"
	"github.com/hostelgrub/api/internal/store"
	"github.com/hostelgrub/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := store.Open(ctx, cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer closeBackend()

	items, err := menu.Resolve(cfg.MenuFile)
	if err != nil {
		log.Fatalf("Failed to load menu: %v", err)
	}

	st := store.New(backend)
	seed := store.NewDocument(items, store.AdminAccount{
		ID:      store.DefaultAdminID,
		PinHash: auth.HashPIN(cfg.AdminPIN),
	}, cfg.StartOrderID)
	if err := st.Init(ctx, seed); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if cfg.DatabaseURL != "" {
		log.Println("Using PostgreSQL document store")
	} else {
		log.Printf("Using JSON document store at %s", cfg.DataPath)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, st, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: shutdown: %v", err)
		}
	}()

	log.Printf("Hostel ordering API running on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
