package services

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

// InterfaceUserService covers the own profile and the Handwerker directory
type InterfaceUserService interface {
	GetUserByID(id uint) (*models.User, error)
	UpdateProfile(id uint, in ProfileInput) (*models.User, error)
	ChangePassword(id uint, oldPassword, newPassword string) error
	ListHandwerker(trade string) ([]models.User, error)
}

// ProfileInput holds the editable profile fields; nil means unchanged
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Trade     *string
}

// UserService implements InterfaceUserService
type UserService struct {
	DB *gorm.DB
}

// NewUserService creates the user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// 1 GetUserByID returns an active or inactive user
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

// 2 UpdateProfile changes name, phone and (Handwerker only) trade
func (s *UserService) UpdateProfile(id uint, in ProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		if strings.TrimSpace(*in.FirstName) == "" {
			return nil, errs.ErrValidation
		}
		updates["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		if strings.TrimSpace(*in.LastName) == "" {
			return nil, errs.ErrValidation
		}
		updates["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Trade != nil && user.Role == models.RoleHandwerker {
		updates["trade"] = strings.TrimSpace(*in.Trade)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	return s.GetUserByID(id)
}

// 3 ChangePassword requires the current password
func (s *UserService) ChangePassword(id uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	if !CheckPassword(oldPassword, user.Password) {
		return errs.ErrUserPasswordIncorrect
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return errors.Wrap(s.DB.Model(user).Update("password", hashed).Error, "update password")
}

// 4 ListHandwerker lists active Handwerker, optionally filtered by trade
func (s *UserService) ListHandwerker(trade string) ([]models.User, error) {
	var users []models.User
	q := s.DB.Where("role = ? AND active = ?", models.RoleHandwerker, true)
	if trade = strings.TrimSpace(trade); trade != "" {
		q = q.Where("LOWER(trade) = ?", strings.ToLower(trade))
	}
	if err := q.Order("last_name, first_name").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list handwerker")
	}
	return users, nil
}
