package scheduler

import (
	"context"
	"log/slog"
	"time"

	"pressgram/internal/ingest"

	"github.com/robfig/cron/v3"
)

const (
	// Ingestion cadence is fixed at 30 minutes.
	IngestSpec            = "*/30 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0

	ingestRunTimeout = 15 * time.Minute
)

type Scheduler struct {
	ctx         context.Context
	cron        *cron.Cron
	coordinator *ingest.Coordinator
	log         *slog.Logger
}

func New(ctx context.Context, coordinator *ingest.Coordinator, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:         ctx,
		cron:        c,
		coordinator: coordinator,
		log:         log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(IngestSpec, s.runIngestion); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunIngestionNow triggers an off-schedule cycle, used once at startup
// so the store is not empty until the first cron tick.
func (s *Scheduler) RunIngestionNow() {
	go s.runIngestion()
}

func (s *Scheduler) runIngestion() {
	ctx, cancel := context.WithTimeout(s.ctx, ingestRunTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	start := time.Now()

	if err := s.coordinator.Run(ctx); err != nil {
		s.log.ErrorContext(ctx, "Ingestion cycle finished with errors",
			"error", err,
			"durationSeconds", time.Since(start).Seconds())

		return
	}

	s.log.InfoContext(ctx, "Ingestion cycle finished",
		"durationSeconds", time.Since(start).Seconds())
}
