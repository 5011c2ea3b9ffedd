package services

import (
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	Logger "immofox-http-service/pkg/logger"
)

const (
	dashboardCachePrefix = "dashboard:"
	dashboardCacheTTL    = 30 * time.Second
)

// InterfaceDashboardService builds the role dashboards
type InterfaceDashboardService interface {
	GetDashboard(userID uint, role models.Role) (*Dashboard, error)
}

// Dashboard holds the counters of one role dashboard. Fields that do not apply
// to the role are left empty.
type Dashboard struct {
	Role                models.Role                    `json:"role"`
	PropertyCount       int64                          `json:"property_count,omitempty"`
	UnitCount           int64                          `json:"unit_count,omitempty"`
	OccupiedUnits       int64                          `json:"occupied_units,omitempty"`
	VacancyRate         float64                        `json:"vacancy_rate,omitempty"` // percent of vacant units
	MonthlyRent         float64                        `json:"monthly_rent,omitempty"` // cold rent plus utilities of occupied units
	TenantCount         int64                          `json:"tenant_count,omitempty"`
	MeldungenByStatus   map[models.MeldungStatus]int64 `json:"meldungen_by_status"`
	OpenMeldungen       int64                          `json:"open_meldungen"`
	OpenJobs            int64                          `json:"open_jobs,omitempty"`
	UnreadNotifications int64                          `json:"unread_notifications"`
	UnreadMessages      int64                          `json:"unread_messages"`
	GeneratedAt         time.Time                      `json:"generated_at"`
}

// DashboardService aggregates with squirrel built SQL and caches the result per user
type DashboardService struct {
	DB    *gorm.DB
	Store InterfaceRedisService
	SQ    sq.StatementBuilderType
	now   func() time.Time
}

// NewDashboardService creates the dashboard service
func NewDashboardService(db *gorm.DB, store InterfaceRedisService) *DashboardService {
	return &DashboardService{DB: db, Store: store, SQ: sq.StatementBuilder, now: time.Now}
}

func dashboardKey(userID uint) string {
	return fmt.Sprintf("%s%d", dashboardCachePrefix, userID)
}

// invalidateDashboards drops the cached dashboards of the given users
func invalidateDashboards(store InterfaceRedisService, userIDs ...uint) {
	if store == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != 0 {
			keys = append(keys, dashboardKey(id))
		}
	}
	if err := store.Delete(keys...); err != nil {
		Logger.Warning("invalidate dashboards %v: %v", userIDs, err)
	}
}

// 1 GetDashboard returns the cached dashboard or computes it
func (s *DashboardService) GetDashboard(userID uint, role models.Role) (*Dashboard, error) {
	key := dashboardKey(userID)
	if s.Store != nil {
		var cached Dashboard
		if err := s.Store.Get(key, &cached); err == nil && cached.Role == role {
			return &cached, nil
		}
	}

	d := &Dashboard{Role: role, MeldungenByStatus: emptyStatusCounts(), GeneratedAt: s.now()}
	var err error
	switch role {
	case models.RoleVermieter:
		err = s.vermieter(userID, d)
	case models.RoleMieter:
		err = s.mieter(userID, d)
	case models.RoleHandwerker:
		err = s.handwerker(userID, d)
	default:
		return nil, errors.Errorf("dashboard: unknown role %q", role)
	}
	if err != nil {
		return nil, err
	}
	if err := s.unread(userID, d); err != nil {
		return nil, err
	}

	if s.Store != nil {
		if err := s.Store.Set(key, d, dashboardCacheTTL); err != nil {
			Logger.Warning("cache dashboard %d: %v", userID, err)
		}
	}
	return d, nil
}

func (s *DashboardService) vermieter(userID uint, d *Dashboard) error {
	if err := s.scalar(s.SQ.Select("COUNT(*)").From("properties").
		Where(sq.Eq{"vermieter_id": userID}), &d.PropertyCount); err != nil {
		return errors.Wrap(err, "count properties")
	}

	var units struct {
		Total       int64
		Occupied    int64
		MonthlyRent float64
	}
	q := s.SQ.Select(
		"COUNT(*) AS total",
		"COUNT(units.mieter_id) AS occupied",
		"COALESCE(SUM(CASE WHEN units.mieter_id IS NOT NULL THEN units.rent_cold + units.utilities ELSE 0 END), 0) AS monthly_rent",
	).From("units").
		Join("properties ON properties.id = units.property_id").
		Where(sq.Eq{"properties.vermieter_id": userID})
	if err := s.row(q, &units); err != nil {
		return errors.Wrap(err, "aggregate units")
	}
	d.UnitCount = units.Total
	d.OccupiedUnits = units.Occupied
	d.MonthlyRent = math.Round(units.MonthlyRent*100) / 100
	if units.Total > 0 {
		vacant := float64(units.Total-units.Occupied) / float64(units.Total) * 100
		d.VacancyRate = math.Round(vacant*10) / 10
	}

	if err := s.scalar(s.SQ.Select("COUNT(*)").From("users").
		Where(sq.Eq{"landlord_id": userID, "role": models.RoleMieter, "active": true}), &d.TenantCount); err != nil {
		return errors.Wrap(err, "count tenants")
	}

	return s.statusCounts(s.SQ.Select("meldungen.status", "COUNT(*) AS count").From("meldungen").
		Join("units ON units.id = meldungen.unit_id").
		Join("properties ON properties.id = units.property_id").
		Where(sq.Eq{"properties.vermieter_id": userID}).
		GroupBy("meldungen.status"), d)
}

func (s *DashboardService) mieter(userID uint, d *Dashboard) error {
	return s.statusCounts(s.SQ.Select("status", "COUNT(*) AS count").From("meldungen").
		Where(sq.Eq{"reporter_id": userID}).
		GroupBy("status"), d)
}

func (s *DashboardService) handwerker(userID uint, d *Dashboard) error {
	if err := s.statusCounts(s.SQ.Select("status", "COUNT(*) AS count").From("meldungen").
		Where(sq.Eq{"handwerker_id": userID}).
		GroupBy("status"), d); err != nil {
		return err
	}
	d.OpenJobs = d.MeldungenByStatus[models.StatusInBearbeitung]
	return nil
}

func (s *DashboardService) unread(userID uint, d *Dashboard) error {
	if err := s.scalar(s.SQ.Select("COUNT(*)").From("notifications").
		Where(sq.Eq{"user_id": userID, "is_read": false}), &d.UnreadNotifications); err != nil {
		return errors.Wrap(err, "count unread notifications")
	}
	if err := s.scalar(s.SQ.Select("COUNT(*)").From("messages").
		Where(sq.Eq{"receiver_id": userID, "is_read": false}), &d.UnreadMessages); err != nil {
		return errors.Wrap(err, "count unread messages")
	}
	return nil
}

func (s *DashboardService) statusCounts(q sq.SelectBuilder, d *Dashboard) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "build status query")
	}
	var rows []struct {
		Status models.MeldungStatus
		Count  int64
	}
	if err := s.DB.Raw(query, args...).Scan(&rows).Error; err != nil {
		return errors.Wrap(err, "count meldungen by status")
	}
	for _, r := range rows {
		d.MeldungenByStatus[r.Status] = r.Count
		if !models.IsTerminal(r.Status) {
			d.OpenMeldungen += r.Count
		}
	}
	return nil
}

func (s *DashboardService) scalar(q sq.SelectBuilder, dest *int64) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	return s.DB.Raw(query, args...).Scan(dest).Error
}

func (s *DashboardService) row(q sq.SelectBuilder, dest interface{}) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	return s.DB.Raw(query, args...).Scan(dest).Error
}

func emptyStatusCounts() map[models.MeldungStatus]int64 {
	counts := make(map[models.MeldungStatus]int64)
	for _, st := range models.AllMeldungStatuses() {
		counts[st] = 0
	}
	return counts
}
