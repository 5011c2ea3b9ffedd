package services

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

// InterfaceTenantService manages the Mieter accounts of a Vermieter
type InterfaceTenantService interface {
	ListTenants(vermieterID uint, search string, q models.PaginationQuery) ([]TenantView, int64, error)
	GetTenant(vermieterID, id uint) (*TenantView, error)
	CreateTenant(vermieterID uint, in TenantInput) (*TenantView, error)
	UpdateTenant(vermieterID, id uint, in TenantUpdateInput) (*TenantView, error)
	DeleteTenant(vermieterID, id uint) error
}

// TenantInput creates a Mieter account, optionally moving them into UnitID
type TenantInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	UnitID     *uint
	MoveInDate *time.Time
}

// TenantUpdateInput holds the editable tenant fields; nil means unchanged
type TenantUpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Active    *bool
}

// TenantView is a Mieter with their current unit
type TenantView struct {
	models.User
	Unit *models.Unit `json:"unit,omitempty"`
}

// TenantService implements InterfaceTenantService
type TenantService struct {
	DB            *gorm.DB
	Store         InterfaceRedisService
	Notifications InterfaceNotificationService
	now           func() time.Time
}

// NewTenantService creates the tenant service
func NewTenantService(db *gorm.DB, store InterfaceRedisService, notifications InterfaceNotificationService) *TenantService {
	return &TenantService{DB: db, Store: store, Notifications: notifications, now: time.Now}
}

// 1 ListTenants lists the active Mieter of vermieterID
func (s *TenantService) ListTenants(vermieterID uint, search string, q models.PaginationQuery) ([]TenantView, int64, error) {
	q.Normalize()
	query := s.DB.Model(&models.User{}).
		Where("landlord_id = ? AND role = ? AND active = ?", vermieterID, models.RoleMieter, true)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count tenants")
	}
	var users []models.User
	if err := query.Order("last_name, first_name").Offset(q.Offset()).Limit(q.PageSize).Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list tenants")
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	units := map[uint]models.Unit{}
	if len(ids) > 0 {
		var rows []models.Unit
		if err := s.DB.Preload("Property").Where("mieter_id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, 0, errors.Wrap(err, "list tenant units")
		}
		for _, u := range rows {
			units[*u.MieterID] = u
		}
	}

	views := make([]TenantView, 0, len(users))
	for _, u := range users {
		v := TenantView{User: u}
		if unit, ok := units[u.ID]; ok {
			unit := unit
			v.Unit = &unit
		}
		views = append(views, v)
	}
	return views, total, nil
}

// 2 GetTenant returns one own Mieter with their unit
func (s *TenantService) GetTenant(vermieterID, id uint) (*TenantView, error) {
	user, err := findOwnTenant(s.DB, vermieterID, id)
	if err != nil {
		return nil, err
	}
	v := &TenantView{User: *user}
	var unit models.Unit
	err = s.DB.Preload("Property").Where("mieter_id = ?", id).First(&unit).Error
	switch {
	case err == nil:
		v.Unit = &unit
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errors.Wrap(err, "get tenant unit")
	}
	return v, nil
}

// 3 CreateTenant creates a Mieter account owned by vermieterID. With a UnitID
// the Mieter is moved in within the same transaction.
func (s *TenantService) CreateTenant(vermieterID uint, in TenantInput) (*TenantView, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return nil, errs.ErrValidation
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:      in.Email,
		Password:   hash,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Phone:      strings.TrimSpace(in.Phone),
		Role:       models.RoleMieter,
		Active:     true,
		LandlordID: &vermieterID,
	}
	var unit *models.Unit
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, in.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return errors.Wrap(err, "create tenant")
		}
		if in.UnitID != nil {
			var err error
			unit, err = assignTenantTx(tx, vermieterID, *in.UnitID, user.ID, in.MoveInDate, s.now())
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateDashboards(s.Store, vermieterID)
	if unit != nil {
		notifyAll(s.Notifications, []uint{user.ID}, models.NotificationTenantAssigned,
			"Wohnung zugeordnet", "Ihnen wurde die Wohneinheit "+unit.Designation+" zugeordnet.", &unit.ID)
	}
	return s.GetTenant(vermieterID, user.ID)
}

// 4 UpdateTenant changes contact data or deactivates the account
func (s *TenantService) UpdateTenant(vermieterID, id uint, in TenantUpdateInput) (*TenantView, error) {
	user, err := findOwnTenant(s.DB, vermieterID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, errs.ErrValidation
		}
		if err := ensureEmailFree(s.DB, email, user.ID); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	for col, val := range map[string]*string{"first_name": in.FirstName, "last_name": in.LastName} {
		if val == nil {
			continue
		}
		if strings.TrimSpace(*val) == "" {
			return nil, errs.ErrValidation
		}
		updates[col] = strings.TrimSpace(*val)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if len(updates) > 0 {
		if err := s.DB.Model(user).Updates(updates).Error; err != nil {
			return nil, errors.Wrap(err, "update tenant")
		}
	}
	return s.GetTenant(vermieterID, id)
}

// 5 DeleteTenant ends the tenancy: the unit is freed and the account deactivated.
// The user row stays so that Meldungen and chat history keep their reporter.
func (s *TenantService) DeleteTenant(vermieterID, id uint) error {
	user, err := findOwnTenant(s.DB, vermieterID, id)
	if err != nil {
		return err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Unit{}).Where("mieter_id = ?", user.ID).
			Updates(map[string]interface{}{"mieter_id": nil, "move_in_date": nil}).Error; err != nil {
			return errors.Wrap(err, "free unit")
		}
		return errors.Wrap(tx.Model(user).Updates(map[string]interface{}{"active": false, "landlord_id": nil}).Error, "deactivate tenant")
	})
	if err != nil {
		return err
	}
	invalidateDashboards(s.Store, vermieterID, user.ID)
	return nil
}

// findOwnTenant loads a Mieter whose landlord is vermieterID
func findOwnTenant(db *gorm.DB, vermieterID, id uint) (*models.User, error) {
	var user models.User
	err := db.Where("id = ? AND role = ? AND landlord_id = ?", id, models.RoleMieter, vermieterID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTenantNotFound
		}
		return nil, errors.Wrap(err, "get tenant")
	}
	return &user, nil
}
