package services

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

// InterfacePropertyService manages the properties of a Vermieter
type InterfacePropertyService interface {
	ListProperties(vermieterID uint, search string, q models.PaginationQuery) ([]models.Property, int64, error)
	GetProperty(vermieterID, id uint) (*models.Property, error)
	CreateProperty(vermieterID uint, in PropertyInput) (*models.Property, error)
	UpdateProperty(vermieterID, id uint, in PropertyInput) (*models.Property, error)
	DeleteProperty(vermieterID, id uint) error
}

// PropertyInput is the property form
type PropertyInput struct {
	Name        string
	Street      string
	ZipCode     string
	City        string
	Description string
}

func (in *PropertyInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Street = strings.TrimSpace(in.Street)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.City = strings.TrimSpace(in.City)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" || in.Street == "" || in.ZipCode == "" || in.City == "" {
		return errs.ErrValidation
	}
	return nil
}

// PropertyService implements InterfacePropertyService
type PropertyService struct {
	DB    *gorm.DB
	Store InterfaceRedisService
}

// NewPropertyService creates the property service
func NewPropertyService(db *gorm.DB, store InterfaceRedisService) *PropertyService {
	return &PropertyService{DB: db, Store: store}
}

// 1 ListProperties lists own properties with their units
func (s *PropertyService) ListProperties(vermieterID uint, search string, q models.PaginationQuery) ([]models.Property, int64, error) {
	q.Normalize()
	query := s.DB.Model(&models.Property{}).Where("vermieter_id = ?", vermieterID)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR street LIKE ? OR city LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count properties")
	}
	var properties []models.Property
	if err := query.Preload("Units").Order("name").Offset(q.Offset()).Limit(q.PageSize).Find(&properties).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list properties")
	}
	return properties, total, nil
}

// 2 GetProperty returns an own property with its units
func (s *PropertyService) GetProperty(vermieterID, id uint) (*models.Property, error) {
	return findOwnProperty(s.DB.Preload("Units"), vermieterID, id)
}

// 3 CreateProperty creates a property owned by vermieterID
func (s *PropertyService) CreateProperty(vermieterID uint, in PropertyInput) (*models.Property, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p := &models.Property{
		VermieterID: vermieterID,
		Name:        in.Name,
		Street:      in.Street,
		ZipCode:     in.ZipCode,
		City:        in.City,
		Description: in.Description,
	}
	if err := s.DB.Create(p).Error; err != nil {
		return nil, errors.Wrap(err, "create property")
	}
	invalidateDashboards(s.Store, vermieterID)
	return p, nil
}

// 4 UpdateProperty replaces the property form fields
func (s *PropertyService) UpdateProperty(vermieterID, id uint, in PropertyInput) (*models.Property, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p, err := findOwnProperty(s.DB, vermieterID, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.Model(p).Updates(map[string]interface{}{
		"name":        in.Name,
		"street":      in.Street,
		"zip_code":    in.ZipCode,
		"city":        in.City,
		"description": in.Description,
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "update property")
	}
	return s.GetProperty(vermieterID, id)
}

// 5 DeleteProperty deletes a property and its vacant units. Properties with
// occupied units cannot be deleted.
func (s *PropertyService) DeleteProperty(vermieterID, id uint) error {
	p, err := findOwnProperty(s.DB, vermieterID, id)
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var occupied int64
		if err := tx.Model(&models.Unit{}).Where("property_id = ? AND mieter_id IS NOT NULL", p.ID).Count(&occupied).Error; err != nil {
			return errors.Wrap(err, "count occupied units")
		}
		if occupied > 0 {
			return errs.ErrPropertyHasTenants
		}
		var unitIDs []uint
		if err := tx.Model(&models.Unit{}).Where("property_id = ?", p.ID).Pluck("id", &unitIDs).Error; err != nil {
			return errors.Wrap(err, "list units")
		}
		if len(unitIDs) > 0 {
			if err := deleteMeldungenOfUnits(tx, unitIDs); err != nil {
				return err
			}
			if err := tx.Where("property_id = ?", p.ID).Delete(&models.Unit{}).Error; err != nil {
				return errors.Wrap(err, "delete units")
			}
		}
		return errors.Wrap(tx.Delete(p).Error, "delete property")
	})
	if err != nil {
		return err
	}
	invalidateDashboards(s.Store, vermieterID)
	return nil
}

// findOwnProperty loads a property of vermieterID; foreign properties are reported as not found
func findOwnProperty(db *gorm.DB, vermieterID, id uint) (*models.Property, error) {
	var p models.Property
	if err := db.Where("id = ? AND vermieter_id = ?", id, vermieterID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPropertyNotFound
		}
		return nil, errors.Wrap(err, "get property")
	}
	return &p, nil
}

// deleteMeldungenOfUnits removes the Meldungen and their history for the given units
func deleteMeldungenOfUnits(tx *gorm.DB, unitIDs []uint) error {
	var meldungIDs []uint
	if err := tx.Model(&models.Meldung{}).Where("unit_id IN ?", unitIDs).Pluck("id", &meldungIDs).Error; err != nil {
		return errors.Wrap(err, "list meldungen")
	}
	if len(meldungIDs) == 0 {
		return nil
	}
	if err := tx.Where("meldung_id IN ?", meldungIDs).Delete(&models.MeldungHistory{}).Error; err != nil {
		return errors.Wrap(err, "delete meldung history")
	}
	return errors.Wrap(tx.Where("id IN ?", meldungIDs).Delete(&models.Meldung{}).Error, "delete meldungen")
}
