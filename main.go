// main.go
package main

import (
	"log"

	"interview-booking/cmd"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/notification"
	"interview-booking/internal/scheduler"
	"interview-booking/internal/wire"
	"interview-booking/pkg/database"
	"interview-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Notification fan-out: redis live sessions + asynq delivery queue
	live, err := notification.NewRedisPublisher(config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer live.Close()

	queue := notification.NewAsynqQueue(config.Redis)
	defer queue.Close()

	fanout := notification.NewFanout(live, queue, logger)

	// Delivery worker runs in background; console sender until a real
	// mail/SMS collaborator is plugged in
	worker := notification.StartWorker(config.Redis, notification.NewConsoleSender(logger), logger)
	defer worker.Shutdown()

	// Reminder sweeps on their own cron cadence
	sweeper := scheduler.NewSweeper(repos.Booking, fanout, logger)
	sweepCron, err := scheduler.Start(config.Scheduler, sweeper, logger)
	if err != nil {
		logger.Fatal("Failed to start reminder scheduler", zap.Error(err))
	}
	defer sweepCron.Stop()

	// Wire all dependencies
	app := wire.Wiring(repos, config, fanout, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
