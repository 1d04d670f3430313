package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"medibook/config"
	"medibook/services/booking"

	"github.com/hibiken/asynq"
)

// TypeReservationSweep is the task type for the expiry sweep.
const TypeReservationSweep = "reservations:sweep"

// InitSweepWorker runs the reservation expiry sweep in the background: an
// asynq scheduler enqueues the sweep task on the configured interval and an
// asynq server executes it. The sweep itself does compare-and-set
// transitions, so concurrent live requests always win or lose cleanly.
func InitSweepWorker(reconciler booking.ReconciliationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReservationSweep, handleSweepTask(reconciler))

	interval := config.AppConfig.SweepIntervalSec
	if interval <= 0 {
		interval = 60
	}
	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	spec := fmt.Sprintf("@every %ds", interval)
	if _, err := scheduler.Register(spec, asynq.NewTask(TypeReservationSweep, nil)); err != nil {
		log.Fatalf("[SweepWorker] failed to register sweep schedule: %v", err)
	}

	go func() {
		log.Println("[SweepWorker] starting scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[SweepWorker] scheduler stopped: %v", err)
		}
	}()

	// Start the worker with retry logic.
	go func() {
		log.Println("[SweepWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SweepWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SweepWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleSweepTask(reconciler booking.ReconciliationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		expired, err := reconciler.ExpireStale(ctx, time.Now())
		if err != nil {
			log.Printf("[SweepHandler] sweep failed: %v", err)
			return err
		}
		if expired > 0 {
			log.Printf("[SweepHandler] expired %d stale reservations", expired)
		}
		return nil
	}
}
