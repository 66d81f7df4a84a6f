package cron

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"stayhub/config"
	inventoryRepo "stayhub/database/repository/inventory"
	"stayhub/services/inventory"
	"stayhub/services/notification"
	"stayhub/services/payment"
	"stayhub/utils"
)

// sweepInterval is how often pending sessions are swept for expiry. Lazy
// expiry on reads keeps the state machine correct regardless; the sweep only
// frees held inventory promptly when nobody is polling.
const sweepInterval = 30 * time.Second

// sweepBatchSize bounds one sweep pass.
const sweepBatchSize = 100

// InitWorker runs the background task worker and the expiry sweeper.
func InitWorker(holds inventoryRepo.InventoryRepository, sessions payment.SessionManager) {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(inventory.TypeInventoryRelease, handleInventoryRelease(holds, logger))
	mux.HandleFunc(notification.TypeNotifyEvent, handleNotifyEvent(logger))

	go runSweeper(sessions, logger)

	go func() {
		logger.Info("starting background task worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("failed to start task worker",
					zap.Int("attempt", attempts),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("task worker could not start, giving up")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleInventoryRelease releases a booking's room hold. Returning an error
// lets asynq retry with backoff until the release lands.
func handleInventoryRelease(holds inventoryRepo.InventoryRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p inventory.ReleasePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid release payload", zap.Error(err))
			return err
		}

		if err := holds.Release(p.BookingID); err != nil {
			logger.Warn("inventory release failed, will retry",
				zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		logger.Info("inventory released", zap.String("bookingId", p.BookingID))
		return nil
	}
}

// handleNotifyEvent delivers a booking event to the notification channel.
// Delivery here is a structured log entry; a push or email provider hooks in
// at this point without touching the enqueueing side.
func handleNotifyEvent(logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p notification.EventPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid notification payload", zap.Error(err))
			return err
		}

		logger.Info("booking event",
			zap.String("event", p.Event),
			zap.String("bookingId", p.BookingID),
			zap.String("ownerId", p.OwnerID),
			zap.String("code", p.Code),
			zap.Float64("amount", p.Amount))
		return nil
	}
}

// runSweeper periodically expires pending sessions past their TTL.
func runSweeper(sessions payment.SessionManager, logger *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		if n := sessions.ExpireDue(sweepBatchSize); n > 0 {
			logger.Info("expired stale payment sessions", zap.Int("count", n))
		}
	}
}
