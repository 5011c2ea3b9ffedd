package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
	"immofox-http-service/internal/infrastructure/config"
)

// InterfaceJWTService covers registration, login and token handling
type InterfaceJWTService interface {
	GenerateToken(user *models.User) (string, time.Time, error)
	ParseToken(tokenString string) (*JWTClaims, error)
	Register(in RegisterInput) (*models.User, error)
	Login(email, password string) (*LoginResult, error)
	Logout(claims *JWTClaims) error
}

// RegisterInput is the self-registration form
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      models.Role
	Trade     string
}

// LoginResult is returned after a successful login
type LoginResult struct {
	Token          string       `json:"token"`
	ExpiresAt      time.Time    `json:"expires_at"`
	User           *models.User `json:"user"`
	PollIntervalMS int64        `json:"poll_interval_ms"` // chat and notification polling interval
}

// JWTClaims are the claims of an Immofox access token
type JWTClaims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs HS256 tokens and keeps revoked token ids in the store
type JWTService struct {
	secretKey string
	issuer    string
	lifetime  time.Duration
	poll      time.Duration
	DB        *gorm.DB
	Store     InterfaceRedisService
	now       func() time.Time
}

// NewJWTService creates the auth service
func NewJWTService(cfg *config.Config, db *gorm.DB, store InterfaceRedisService) *JWTService {
	lifetime := cfg.JWTTokenLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "immofox-http-service",
		lifetime:  lifetime,
		poll:      poll,
		DB:        db,
		Store:     store,
		now:       time.Now,
	}
}

// 1 GenerateToken signs a token for user
func (s *JWTService) GenerateToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.lifetime)

	claims := &JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// 2 ParseToken validates signature, expiry, issuer and revocation
func (s *JWTService) ParseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Wrap(errs.ErrTokenInvalid, fmt.Sprint(err))
	}
	if claims.Issuer != s.issuer {
		return nil, errors.Wrap(errs.ErrTokenInvalid, "issuer")
	}
	if _, ok := models.ParseRole(string(claims.Role)); !ok {
		return nil, errors.Wrap(errs.ErrTokenInvalid, "role")
	}

	if s.Store != nil && claims.ID != "" {
		revoked, err := s.Store.IsTokenRevoked(claims.ID)
		if err != nil {
			return nil, errors.Wrap(err, "check token revocation")
		}
		if revoked {
			return nil, errors.Wrap(errs.ErrTokenInvalid, "revoked")
		}
	}

	// deactivated accounts lose access before their token expires
	var active []bool
	if err := s.DB.Model(&models.User{}).Where("id = ?", claims.UserID).Limit(1).Pluck("active", &active).Error; err != nil {
		return nil, errors.Wrap(err, "check user")
	}
	if len(active) == 0 || !active[0] {
		return nil, errors.Wrap(errs.ErrTokenInvalid, "user inactive")
	}
	return claims, nil
}

// 3 Register creates a Vermieter or Handwerker account. Mieter accounts are
// created by their Vermieter through the tenant service.
func (s *JWTService) Register(in RegisterInput) (*models.User, error) {
	if in.Role != models.RoleVermieter && in.Role != models.RoleHandwerker {
		return nil, errs.ErrRoleNotAllowed
	}
	email := normalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, errs.ErrValidation
	}
	if err := ensureEmailFree(s.DB, email, 0); err != nil {
		return nil, err
	}
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      in.Role,
		Active:    true,
	}
	if in.Role == models.RoleHandwerker {
		user.Trade = strings.TrimSpace(in.Trade)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return errors.Wrap(err, "create user")
		}
		if user.Role == models.RoleVermieter {
			sub := &models.Subscription{VermieterID: user.ID, Plan: models.PlanFree, Status: models.SubscriptionActive}
			if err := tx.Create(sub).Error; err != nil {
				return errors.Wrap(err, "create subscription")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// 4 Login checks the credentials and issues a token
func (s *JWTService) Login(email, password string) (*LoginResult, error) {
	var user models.User
	if err := s.DB.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserPasswordIncorrect
		}
		return nil, errors.Wrap(err, "find user")
	}
	if !CheckPassword(password, user.Password) {
		return nil, errs.ErrUserPasswordIncorrect
	}
	if !user.Active {
		return nil, errs.ErrUserInactive
	}

	token, expiresAt, err := s.GenerateToken(&user)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: &user, PollIntervalMS: s.poll.Milliseconds()}, nil
}

// 5 Logout revokes the token until it would have expired anyway
func (s *JWTService) Logout(claims *JWTClaims) error {
	if s.Store == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.Store.RevokeToken(claims.ID, claims.ExpiresAt.Time.Sub(s.now()))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ensureEmailFree fails with ErrUserAlreadyExist if another user (not exceptID) has email
func ensureEmailFree(db *gorm.DB, email string, exceptID uint) error {
	var count int64
	q := db.Model(&models.User{}).Where("email = ?", email)
	if exceptID > 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "check email")
	}
	if count > 0 {
		return errs.ErrUserAlreadyExist
	}
	return nil
}
