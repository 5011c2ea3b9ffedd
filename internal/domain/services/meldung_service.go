package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

// Actor is the authenticated user performing an operation
type Actor struct {
	ID   uint
	Role models.Role
}

// InterfaceMeldungService runs the Meldung workflow for all three roles
type InterfaceMeldungService interface {
	CreateMeldung(mieterID uint, in MeldungInput) (*MeldungView, error)
	ListMeldungen(actor Actor, filter MeldungFilter) ([]MeldungView, int64, error)
	GetMeldung(actor Actor, id uint) (*MeldungView, error)
	AssignHandwerker(actor Actor, id, handwerkerID uint, note string) (*MeldungView, error)
	ChangeStatus(actor Actor, id uint, to models.MeldungStatus, note string) (*MeldungView, error)
}

// MeldungInput is the form a Mieter submits
type MeldungInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

// MeldungFilter narrows the Meldung lists
type MeldungFilter struct {
	Status     models.MeldungStatus
	PropertyID uint
	models.PaginationQuery
}

// MeldungView is a Meldung with its parties and the status moves open to the viewer
type MeldungView struct {
	models.Meldung
	Property       *models.Property       `json:"property,omitempty"`
	Reporter       *models.UserSummary    `json:"reporter,omitempty"`
	Handwerker     *models.UserSummary    `json:"handwerker,omitempty"`
	AllowedActions []models.MeldungStatus `json:"allowed_actions"`
	CanAssign      bool                   `json:"can_assign"`
}

// MeldungService implements InterfaceMeldungService
type MeldungService struct {
	DB            *gorm.DB
	Store         InterfaceRedisService
	Notifications InterfaceNotificationService
	now           func() time.Time
}

// NewMeldungService creates the Meldung service
func NewMeldungService(db *gorm.DB, store InterfaceRedisService, notifications InterfaceNotificationService) *MeldungService {
	return &MeldungService{DB: db, Store: store, Notifications: notifications, now: time.Now}
}

// 1 CreateMeldung reports a problem in the Mieter's own unit. The new Meldung is OFFEN.
func (s *MeldungService) CreateMeldung(mieterID uint, in MeldungInput) (*MeldungView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	priority, ok := models.ParseMeldungPriority(strings.ToUpper(strings.TrimSpace(in.Priority)))
	if in.Title == "" || in.Description == "" || !ok {
		return nil, errs.ErrValidation
	}

	var unit models.Unit
	if err := s.DB.Preload("Property").Where("mieter_id = ?", mieterID).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNoUnitAssigned
		}
		return nil, errors.Wrap(err, "get own unit")
	}

	m := &models.Meldung{
		UnitID:      unit.ID,
		ReporterID:  mieterID,
		Title:       in.Title,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Priority:    priority,
		Status:      models.StatusOffen,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return errors.Wrap(err, "create meldung")
		}
		return addHistory(tx, m.ID, "", models.StatusOffen, Actor{ID: mieterID, Role: models.RoleMieter}, "")
	})
	if err != nil {
		return nil, err
	}

	vermieterID := unit.Property.VermieterID
	invalidateDashboards(s.Store, mieterID, vermieterID)
	notifyAll(s.Notifications, []uint{vermieterID}, models.NotificationMeldungCreated,
		"Neue Meldung",
		fmt.Sprintf("%s (%s, %s)", m.Title, unit.Property.Name, unit.Designation),
		&m.ID)
	return s.GetMeldung(Actor{ID: mieterID, Role: models.RoleMieter}, m.ID)
}

// 2 ListMeldungen lists the Meldungen visible to the actor, newest first:
// own reports for a Mieter, assigned jobs for a Handwerker, all Meldungen of
// own properties for a Vermieter.
func (s *MeldungService) ListMeldungen(actor Actor, filter MeldungFilter) ([]MeldungView, int64, error) {
	filter.Normalize()
	query := s.DB.Model(&models.Meldung{})
	switch actor.Role {
	case models.RoleMieter:
		query = query.Where("meldungen.reporter_id = ?", actor.ID)
	case models.RoleHandwerker:
		query = query.Where("meldungen.handwerker_id = ?", actor.ID)
	case models.RoleVermieter:
		query = query.Joins("JOIN units ON units.id = meldungen.unit_id").
			Joins("JOIN properties ON properties.id = units.property_id").
			Where("properties.vermieter_id = ?", actor.ID)
		if filter.PropertyID != 0 {
			query = query.Where("units.property_id = ?", filter.PropertyID)
		}
	default:
		return nil, 0, errs.ErrForbidden
	}
	if filter.Status != "" {
		query = query.Where("meldungen.status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count meldungen")
	}
	var list []models.Meldung
	err := query.Preload("Unit.Property").Preload("Reporter").Preload("Handwerker").
		Order("meldungen.created_at DESC, meldungen.id DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&list).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list meldungen")
	}

	views := make([]MeldungView, 0, len(list))
	for i := range list {
		views = append(views, newMeldungView(&list[i], actor))
	}
	return views, total, nil
}

// 3 GetMeldung returns a Meldung with history. Meldungen the actor may not see
// are reported as not found.
func (s *MeldungService) GetMeldung(actor Actor, id uint) (*MeldungView, error) {
	m, err := s.load(s.DB, actor, id)
	if err != nil {
		return nil, err
	}
	v := newMeldungView(m, actor)
	return &v, nil
}

// 4 AssignHandwerker assigns an OFFEN Meldung (moving it to IN_BEARBEITUNG) or
// reassigns one that is IN_BEARBEITUNG
func (s *MeldungService) AssignHandwerker(actor Actor, id, handwerkerID uint, note string) (*MeldungView, error) {
	if actor.Role != models.RoleVermieter {
		return nil, errs.ErrForbidden
	}
	m, err := s.load(s.DB, actor, id)
	if err != nil {
		return nil, err
	}
	if models.IsTerminal(m.Status) {
		return nil, errs.ErrMeldungTerminal
	}
	if m.Status != models.StatusOffen && m.Status != models.StatusInBearbeitung {
		return nil, errs.ErrInvalidTransition
	}

	var hw models.User
	err = s.DB.Where("id = ? AND role = ? AND active = ?", handwerkerID, models.RoleHandwerker, true).First(&hw).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrHandwerkerNotFound
		}
		return nil, errors.Wrap(err, "get handwerker")
	}

	from := m.Status
	note = strings.TrimSpace(note)
	if note == "" {
		note = "Handwerker zugewiesen: " + hw.FullName()
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Meldung{}).
			Where("id = ? AND status = ?", m.ID, from).
			Updates(map[string]interface{}{"handwerker_id": hw.ID, "status": models.StatusInBearbeitung})
		if res.Error != nil {
			return errors.Wrap(res.Error, "assign handwerker")
		}
		if res.RowsAffected == 0 {
			return errs.ErrInvalidTransition
		}
		return addHistory(tx, m.ID, from, models.StatusInBearbeitung, actor, note)
	})
	if err != nil {
		return nil, err
	}

	previous := uint(0)
	if m.HandwerkerID != nil && *m.HandwerkerID != hw.ID {
		previous = *m.HandwerkerID
	}
	invalidateDashboards(s.Store, actor.ID, m.ReporterID, hw.ID, previous)
	notifyAll(s.Notifications, []uint{hw.ID}, models.NotificationMeldungAssigned,
		"Neuer Auftrag", fmt.Sprintf("Ihnen wurde die Meldung \"%s\" zugewiesen.", m.Title), &m.ID)
	if from == models.StatusOffen {
		notifyAll(s.Notifications, []uint{m.ReporterID}, models.NotificationMeldungStatus,
			"Meldung in Bearbeitung",
			fmt.Sprintf("Ihre Meldung \"%s\" wird von %s bearbeitet.", m.Title, hw.FullName()), &m.ID)
	}
	return s.GetMeldung(actor, m.ID)
}

// 5 ChangeStatus moves a Meldung along the lifecycle if the actor's role may take that edge
func (s *MeldungService) ChangeStatus(actor Actor, id uint, to models.MeldungStatus, note string) (*MeldungView, error) {
	m, err := s.load(s.DB, actor, id)
	if err != nil {
		return nil, err
	}
	from := m.Status
	if models.IsTerminal(from) {
		return nil, errs.ErrMeldungTerminal
	}
	if !models.CanTransition(from, to, actor.Role) {
		return nil, errs.ErrInvalidTransition
	}
	if from == models.StatusOffen && to == models.StatusInBearbeitung && m.HandwerkerID == nil {
		return nil, errs.ErrInvalidTransition
	}

	now := s.now()
	updates := map[string]interface{}{"status": to}
	switch to {
	case models.StatusHandwerkerErledigt:
		updates["completed_at"] = now
	case models.StatusInBearbeitung:
		updates["completed_at"] = nil
	case models.StatusAbgeschlossen, models.StatusStorniert:
		updates["closed_at"] = now
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Meldung{}).Where("id = ? AND status = ?", m.ID, from).Updates(updates)
		if res.Error != nil {
			return errors.Wrap(res.Error, "change status")
		}
		if res.RowsAffected == 0 {
			return errs.ErrInvalidTransition
		}
		return addHistory(tx, m.ID, from, to, actor, strings.TrimSpace(note))
	})
	if err != nil {
		return nil, err
	}

	parties := meldungParties(m)
	invalidateDashboards(s.Store, parties...)
	others := make([]uint, 0, len(parties))
	for _, pid := range parties {
		if pid != actor.ID {
			others = append(others, pid)
		}
	}
	notifyAll(s.Notifications, others, models.NotificationMeldungStatus,
		"Status geändert",
		fmt.Sprintf("Meldung \"%s\": %s", m.Title, StatusLabel(to)), &m.ID)
	return s.GetMeldung(actor, m.ID)
}

// load fetches a Meldung with its relations and checks that the actor may see it
func (s *MeldungService) load(db *gorm.DB, actor Actor, id uint) (*models.Meldung, error) {
	var m models.Meldung
	err := db.Preload("Unit.Property").Preload("Reporter").Preload("Handwerker").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrMeldungNotFound
		}
		return nil, errors.Wrap(err, "get meldung")
	}
	if !canSee(&m, actor) {
		return nil, errs.ErrMeldungNotFound
	}
	return &m, nil
}

func canSee(m *models.Meldung, actor Actor) bool {
	switch actor.Role {
	case models.RoleMieter:
		return m.ReporterID == actor.ID
	case models.RoleHandwerker:
		return m.HandwerkerID != nil && *m.HandwerkerID == actor.ID
	case models.RoleVermieter:
		return m.Unit != nil && m.Unit.Property != nil && m.Unit.Property.VermieterID == actor.ID
	}
	return false
}

// meldungParties returns Vermieter, reporter and Handwerker (if any) of m
func meldungParties(m *models.Meldung) []uint {
	var ids []uint
	if m.Unit != nil && m.Unit.Property != nil {
		ids = append(ids, m.Unit.Property.VermieterID)
	}
	ids = append(ids, m.ReporterID)
	if m.HandwerkerID != nil {
		ids = append(ids, *m.HandwerkerID)
	}
	return ids
}

func addHistory(tx *gorm.DB, meldungID uint, from, to models.MeldungStatus, actor Actor, note string) error {
	h := &models.MeldungHistory{
		MeldungID:  meldungID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Note:       note,
	}
	return errors.Wrap(tx.Create(h).Error, "write meldung history")
}

func newMeldungView(m *models.Meldung, actor Actor) MeldungView {
	v := MeldungView{Meldung: *m, AllowedActions: []models.MeldungStatus{}}
	if m.Unit != nil && m.Unit.Property != nil {
		p := *m.Unit.Property
		p.Units = nil
		v.Property = &p
		unit := *m.Unit
		unit.Property = nil
		v.Meldung.Unit = &unit
	}
	if m.Reporter != nil {
		r := m.Reporter.Summary()
		v.Reporter = &r
	}
	if m.Handwerker != nil {
		h := m.Handwerker.Summary()
		v.Handwerker = &h
	}

	for _, next := range models.NextStatuses(m.Status, actor.Role) {
		if next == models.StatusInBearbeitung && m.Status == models.StatusOffen {
			continue // OFFEN leaves through AssignHandwerker
		}
		v.AllowedActions = append(v.AllowedActions, next)
	}
	v.CanAssign = actor.Role == models.RoleVermieter &&
		(m.Status == models.StatusOffen || m.Status == models.StatusInBearbeitung)
	return v
}

var statusLabels = map[models.MeldungStatus]string{
	models.StatusOffen:              "Offen",
	models.StatusInBearbeitung:      "In Bearbeitung",
	models.StatusHandwerkerErledigt: "Vom Handwerker erledigt",
	models.StatusAbgeschlossen:      "Abgeschlossen",
	models.StatusStorniert:          "Storniert",
}

// StatusLabel returns the German display name of a status
func StatusLabel(st models.MeldungStatus) string {
	if l, ok := statusLabels[st]; ok {
		return l
	}
	return string(st)
}
