package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"dragontiger/bot"
	"dragontiger/config"
	"dragontiger/database"
	"dragontiger/events"
	"dragontiger/metrics"
	"dragontiger/repository"
	"dragontiger/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting dragontiger bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg.StartingBalance)
	bettingService := service.NewBettingService(uowFactory)
	roundService := service.NewRoundService(uowFactory, cfg)
	log.Println("Services initialized successfully")

	// Seed the first round if the database is fresh
	if err := roundService.EnsureRound(ctx); err != nil {
		return fmt.Errorf("failed to ensure round state: %w", err)
	}

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(cfg, userService, bettingService, roundService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Start the round scheduler with announcements into the game channel
	announcer := bot.NewAnnouncer(discordBot.Session(), cfg.GameChannelID)
	scheduler := service.NewScheduler(roundService, announcer, cfg.TickInterval)
	stopScheduler := scheduler.Start(ctx)

	// Expose Prometheus metrics and a health endpoint
	metricsServer := metrics.StartServer(cfg.MetricsPort, func(healthCtx context.Context) error {
		return db.Ping(healthCtx)
	})

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	stopScheduler()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics server: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
