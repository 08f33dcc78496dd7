package dashboard

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/config"
	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/cache"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/mongodb"
)

// Service is the aggregation engine: it normalizes raw activity documents
// and derives the KPI block for a property and date window.
type Service struct {
	properties mongodb.PropertyRepository
	activities mongodb.ActivityRepository
	snapshots  mongodb.SnapshotRepository
	kpiCache   cache.KPICache
	cfg        config.DashboardConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires a new dashboard service instance.
func NewService(
	properties mongodb.PropertyRepository,
	activities mongodb.ActivityRepository,
	snapshots mongodb.SnapshotRepository,
	kpiCache cache.KPICache,
	cfg config.DashboardConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		properties: properties,
		activities: activities,
		snapshots:  snapshots,
		kpiCache:   kpiCache,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// ActivityQuery scopes a dashboard activity listing.
type ActivityQuery struct {
	PropertyID string
	From       time.Time
	To         time.Time
	Limit      int
	Cursor     string
	Search     string
	Status     string
	Type       string
}

// ListProperties returns the properties owned by a user, sorted by name.
func (s *Service) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	return s.properties.ListByOwner(ctx, ownerID)
}

// ListActivities fetches one page of activities, normalizes each document
// and applies the conjunctive search/status/type filters. Records failing
// normalization are dropped with a warning rather than surfaced.
func (s *Service) ListActivities(ctx context.Context, q ActivityQuery) ([]models.Activity, string, error) {
	limit := q.Limit
	if limit <= 0 || limit > s.cfg.PageSize {
		limit = s.cfg.PageSize
	}

	raws, next, err := s.activities.ListByProperty(ctx, q.PropertyID, q.From, q.To, limit, q.Cursor)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	activities := make([]models.Activity, 0, len(raws))
	for _, raw := range raws {
		activity, err := Normalize(raw, now)
		if err != nil {
			s.logger.Warn("drop activity failing normalization",
				zap.String("id", raw.ID), zap.Error(err))
			continue
		}
		activities = append(activities, activity)
	}

	return Filter(activities, q.Search, q.Status, q.Type), next, nil
}

// GetActivity fetches and normalizes a single activity.
func (s *Service) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	raw, err := s.activities.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	activity, err := Normalize(*raw, s.now())
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// ComputeKPIs derives the KPI block for a property over [from, to]. Each
// trend compares the window against the preceding period of equal length and
// is exactly 0 when no prior-period data exists. Area and irrigation values
// come from the latest stored snapshots, never from placeholders.
func (s *Service) ComputeKPIs(ctx context.Context, propertyID string, from, to time.Time) (models.KPIData, error) {
	if cached, err := s.kpiCache.Get(ctx, propertyID, from, to); err == nil && cached != nil {
		return *cached, nil
	}

	area, err := s.propertyArea(ctx, propertyID)
	if err != nil {
		return models.KPIData{}, err
	}

	totalActivities, err := s.activities.CountInWindow(ctx, propertyID, from, to)
	if err != nil {
		return models.KPIData{}, err
	}

	now := s.now()
	upcomingTasks, err := s.activities.CountUpcomingPending(ctx, propertyID, now)
	if err != nil {
		return models.KPIData{}, err
	}

	// Preceding period of identical length: [from - (to - from), from].
	prevFrom := from.Add(-to.Sub(from))
	prevTo := from

	previousActivities, err := s.activities.CountInWindow(ctx, propertyID, prevFrom, prevTo)
	if err != nil {
		return models.KPIData{}, err
	}

	pendingNow, err := s.activities.CountPendingInWindow(ctx, propertyID, from, to)
	if err != nil {
		return models.KPIData{}, err
	}
	pendingPrev, err := s.activities.CountPendingInWindow(ctx, propertyID, prevFrom, prevTo)
	if err != nil {
		return models.KPIData{}, err
	}

	areaTrend, irrigation, irrigationTrend := s.snapshotTrends(ctx, propertyID, area, from)

	data := models.KPIData{
		TotalArea:        area,
		AreaTrend:        areaTrend,
		TotalActivities:  int(totalActivities),
		ActivitiesTrend:  TrendPct(float64(totalActivities), float64(previousActivities)),
		UpcomingTasks:    int(upcomingTasks),
		TasksTrend:       TrendPct(float64(pendingNow), float64(pendingPrev)),
		ActiveIrrigation: irrigation,
		IrrigationTrend:  irrigationTrend,
	}

	if err := s.kpiCache.Set(ctx, propertyID, from, to, data, s.cfg.KPICacheTTL); err != nil {
		s.logger.Warn("kpi cache write failed", zap.String("property", propertyID), zap.Error(err))
	}

	return data, nil
}

func (s *Service) propertyArea(ctx context.Context, propertyID string) (float64, error) {
	property, err := s.properties.Get(ctx, propertyID)
	if errors.Is(err, models.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return property.AreaHa, nil
}

// snapshotTrends resolves area and irrigation metrics from stored snapshots.
// Absent or unavailable snapshots yield zeros.
func (s *Service) snapshotTrends(ctx context.Context, propertyID string, area float64, from time.Time) (areaTrend, irrigation, irrigationTrend float64) {
	prev, err := s.snapshots.LatestBefore(ctx, propertyID, from)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("previous snapshot lookup failed", zap.String("property", propertyID), zap.Error(err))
	}
	if prev != nil {
		areaTrend = TrendPct(area, prev.AreaHa)
	}

	latest, err := s.snapshots.Latest(ctx, propertyID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("latest snapshot lookup failed", zap.String("property", propertyID), zap.Error(err))
	}
	if latest == nil || latest.IrrigationPct < 0 {
		return areaTrend, 0, 0
	}

	irrigation = latest.IrrigationPct
	if prev != nil && prev.IrrigationPct >= 0 {
		irrigationTrend = TrendPct(irrigation, prev.IrrigationPct)
	}
	return areaTrend, irrigation, irrigationTrend
}

// TrendPct is the period-over-period percentage change, rounded to one
// decimal place. A previous value of zero yields exactly 0, never NaN or
// infinity.
func TrendPct(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return Round1((current - previous) / previous * 100)
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
