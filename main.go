// Package main wires up and serves the ShowTrackr watchlist application.
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"showtrackr/config"
	"showtrackr/handlers"
	"showtrackr/internal/database"
	"showtrackr/services/backup"
	"showtrackr/services/prefs"
	"showtrackr/services/watchlist"
	"showtrackr/utils"
)

func main() {
	// The .env lives inside the data dir, so resolve that first
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
	settings := config.Load()

	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   settings.LogPath(),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     30, // days
	}))

	db, err := database.Open(database.Config{DatabasePath: settings.DatabasePath()})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	watchlistSvc := watchlist.NewService(db)
	backupSvc := backup.NewService(db)
	prefsSvc := prefs.NewService(db)

	render, err := handlers.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	watchlistHandler := handlers.NewWatchlistHandler(watchlistSvc, prefsSvc, render, settings)
	itemsHandler := handlers.NewItemsHandler(watchlistSvc, render)
	settingsHandler := handlers.NewSettingsHandler(prefsSvc, backupSvc, render, settings)

	r := utils.NewRouter()
	r.Use(handlers.SessionMiddleware)
	r.Use(handlers.Recover(render, prefsSvc, settings))
	r.NotFoundHandler = handlers.NotFound(render, prefsSvc, settings)

	r.HandleFunc("/", watchlistHandler.Index).Methods(http.MethodGet)
	r.HandleFunc("/load_watchlist", watchlistHandler.Load).Methods(http.MethodGet)
	r.HandleFunc("/about", watchlistHandler.About).Methods(http.MethodGet)

	r.HandleFunc("/items/add/form", itemsHandler.AddForm).Methods(http.MethodGet)
	r.HandleFunc("/items/edit/form/{id:[0-9]+}", itemsHandler.EditForm).Methods(http.MethodGet)
	r.HandleFunc("/items/save", itemsHandler.Save).Methods(http.MethodPost)
	r.HandleFunc("/items/delete/{id:[0-9]+}", itemsHandler.Delete).Methods(http.MethodDelete)

	s := r.PathPrefix("/settings").Subrouter()
	s.HandleFunc("/", settingsHandler.Show).Methods(http.MethodGet)
	s.HandleFunc("/set_theme", settingsHandler.SetTheme).Methods(http.MethodPost)
	s.HandleFunc("/set_pagination_size", settingsHandler.SetPaginationSize).Methods(http.MethodPost)
	s.HandleFunc("/export_data", settingsHandler.Export).Methods(http.MethodGet)
	s.HandleFunc("/import_data", settingsHandler.Import).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         settings.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("ShowTrackr %s listening on %s", config.AppVersion, settings.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
