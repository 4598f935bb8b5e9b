package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/navprep/engine/content"
	"github.com/navprep/engine/handlers"
	"github.com/navprep/engine/jobs"
	"github.com/navprep/engine/progress"
	"github.com/navprep/engine/quiz"
	"github.com/navprep/engine/storage"
	"github.com/navprep/engine/utils"
)

func main() {
	// Set up logging with timestamps
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	utils.LogStartup("NavPrep engine starting...")

	if err := godotenv.Load(); err != nil {
		utils.LogInfo("No .env file found, using environment variables")
	}

	port := utils.GetEnvOrDefault("PORT", "8071")
	dataDir := utils.GetEnvOrDefault("DATA_DIR", "./data")
	backend := utils.GetEnvOrDefault("STORAGE_BACKEND", "file")
	bankPath := utils.GetEnvOrDefault("QUESTION_BANK", "./questions.csv")
	utils.LogStartup("Config: port=%s data_dir=%s backend=%s bank=%s", port, dataDir, backend, bankPath)

	// Load the question bank
	questions, err := content.LoadBank(bankPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load question bank: %v", err)
	}
	store := content.NewStore(questions)
	utils.LogStartup("Question bank loaded: %d questions", store.Count())

	// Open the progress store
	blobStore, err := storage.NewBlobStore(backend, dataDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to open progress store: %v", err)
	}

	tracker, err := progress.NewTracker(blobStore)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load progress: %v", err)
	}

	manager := quiz.NewManager()

	// Background timer sweep for timed exams
	scheduler := jobs.NewScheduler(manager, tracker)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("[FATAL] Failed to start scheduler: %v", err)
	}

	// Setup API routes
	utils.LogStartup("Setting up API routes...")
	router := handlers.NewRouter(store, manager, tracker)

	// Create server with timeouts
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		utils.LogShutdown("Received shutdown signal, stopping...")

		scheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			utils.LogError("Server shutdown error: %v", err)
		}

		if err := blobStore.Close(); err != nil {
			utils.LogError("Error closing progress store: %v", err)
		} else {
			utils.LogShutdown("Progress store closed successfully")
		}
	}()

	utils.LogStartup("Starting HTTP server on port %s...", port)
	utils.LogStartup("Server ready to accept connections at http://localhost:%s", port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[FATAL] Server failed to start: %v", err)
	}
	utils.LogShutdown("Server stopped")
}
