package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/config"
	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/mongodb"
	"github.com/legnamegusta-ctrl/apporgania/pkg/clients/irrigation"
)

// Scheduler runs the daily KPI snapshot job. Snapshots are what make area
// and irrigation trends deterministic instead of placeholders.
type Scheduler struct {
	cron       *cron.Cron
	properties mongodb.PropertyRepository
	snapshots  mongodb.SnapshotRepository
	telemetry  irrigation.Client
	cfg        config.SnapshotConfig
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance. telemetry may be nil when
// the irrigation API is not configured; snapshots then record the
// unavailable sentinel.
func NewScheduler(
	cfg config.SnapshotConfig,
	properties mongodb.PropertyRepository,
	snapshots mongodb.SnapshotRepository,
	telemetry irrigation.Client,
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Timezone))
		location = time.Local
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(location)),
		properties: properties,
		snapshots:  snapshots,
		telemetry:  telemetry,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers and starts the snapshot job.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.captureSnapshots); err != nil {
		s.logger.Error("failed to schedule snapshot job", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) captureSnapshots() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	properties, err := s.properties.ListAll(ctx)
	if err != nil {
		s.logger.Error("snapshot job failed listing properties", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	captured := 0

	for _, property := range properties {
		snapshot := models.KPISnapshot{
			PropertyID:    property.ID,
			AreaHa:        property.AreaHa,
			IrrigationPct: models.IrrigationUnavailable,
			CapturedAt:    now,
		}

		if s.telemetry != nil {
			pct, err := s.telemetry.ActivePercentage(ctx, property.ID)
			if err != nil {
				s.logger.Warn("irrigation telemetry unavailable",
					zap.String("property", property.ID), zap.Error(err))
			} else {
				snapshot.IrrigationPct = pct
			}
		}

		if err := s.snapshots.Save(ctx, snapshot); err != nil {
			s.logger.Error("failed to save snapshot",
				zap.String("property", property.ID), zap.Error(err))
			continue
		}
		captured++
	}

	s.logger.Info("kpi snapshots captured",
		zap.Int("properties", len(properties)),
		zap.Int("captured", captured))
}
