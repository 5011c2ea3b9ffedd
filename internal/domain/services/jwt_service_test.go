package services

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
	"immofox-http-service/internal/infrastructure/config"
	"immofox-http-service/internal/test/testdb"
)

func (e *env) auth() *JWTService {
	return NewJWTService(&config.Config{JWTSecretKey: "test-secret", JWTTokenLifetime: time.Hour}, e.db, e.store)
}

func TestRegister(t *testing.T) {
	e := newEnv(t)
	s := e.auth()

	user, err := s.Register(RegisterInput{
		Email: " Neu@Example.de ", Password: "sicher123", FirstName: "Nina", LastName: "Neu", Role: models.RoleVermieter,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "neu@example.de" {
		t.Fatalf("Email = %q", user.Email)
	}
	if user.Password == "sicher123" {
		t.Fatal("password stored in clear text")
	}
	var sub models.Subscription
	if err := e.db.Where("vermieter_id = ?", user.ID).First(&sub).Error; err != nil {
		t.Fatalf("FREE subscription missing: %v", err)
	}
	if sub.Plan != models.PlanFree {
		t.Fatalf("Plan = %s", sub.Plan)
	}

	hw, err := s.Register(RegisterInput{
		Email: "fliese@example.de", Password: "sicher123", FirstName: "Fritz", LastName: "Fliese", Role: models.RoleHandwerker, Trade: "Fliesenleger",
	})
	if err != nil {
		t.Fatalf("Register Handwerker: %v", err)
	}
	if hw.Trade != "Fliesenleger" {
		t.Fatalf("Trade = %q", hw.Trade)
	}

	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"mieter", RegisterInput{Email: "m@example.de", Password: "sicher123", FirstName: "M", LastName: "M", Role: models.RoleMieter}, errs.ErrRoleNotAllowed},
		{"duplicate", RegisterInput{Email: "NEU@example.de", Password: "sicher123", FirstName: "N", LastName: "N", Role: models.RoleVermieter}, errs.ErrUserAlreadyExist},
		{"weak", RegisterInput{Email: "w@example.de", Password: "kurz", FirstName: "W", LastName: "W", Role: models.RoleVermieter}, errs.ErrWeakPassword},
		{"no name", RegisterInput{Email: "x@example.de", Password: "sicher123", Role: models.RoleVermieter}, errs.ErrValidation},
	}
	for _, tc := range cases {
		if _, err := s.Register(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestLoginAndParseToken(t *testing.T) {
	e := newEnv(t)
	s := e.auth()

	res, err := s.Login("VERMIETER@example.de", testdb.Password)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != e.f.Vermieter.ID || res.Token == "" {
		t.Fatalf("LoginResult = %+v", res)
	}
	if res.PollIntervalMS != 5000 {
		t.Fatalf("PollIntervalMS = %d", res.PollIntervalMS)
	}
	claims, err := s.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != e.f.Vermieter.ID || claims.Role != models.RoleVermieter {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := s.Login("vermieter@example.de", "falsch"); !errors.Is(err, errs.ErrUserPasswordIncorrect) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := s.Login("niemand@example.de", testdb.Password); !errors.Is(err, errs.ErrUserPasswordIncorrect) {
		t.Fatalf("unknown user: %v", err)
	}

	other := NewJWTService(&config.Config{JWTSecretKey: "other-secret"}, e.db, e.store)
	if _, err := other.ParseToken(res.Token); !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("foreign secret: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	e := newEnv(t)
	s := e.auth()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := s.GenerateToken(e.f.Mieter)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ParseToken(token); !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newEnv(t)
	s := e.auth()

	res, err := s.Login("mieter@example.de", testdb.Password)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.ParseToken(res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := s.ParseToken(res.Token); !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("revoked token accepted: %v", err)
	}
}

func TestInactiveUser(t *testing.T) {
	e := newEnv(t)
	s := e.auth()

	res, err := s.Login("mieter@example.de", testdb.Password)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.db.Model(e.f.Mieter).Update("active", false).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := s.ParseToken(res.Token); !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("token of inactive user accepted: %v", err)
	}
	if _, err := s.Login("mieter@example.de", testdb.Password); !errors.Is(err, errs.ErrUserInactive) {
		t.Fatalf("inactive login: %v", err)
	}
}
