package models

import "strings"

// Role of a user account
type Role string

const (
	RoleVermieter  Role = "VERMIETER"
	RoleMieter     Role = "MIETER"
	RoleHandwerker Role = "HANDWERKER"
)

// ParseRole accepts any casing, returns false for unknown roles
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleVermieter, RoleMieter, RoleHandwerker:
		return r, true
	}
	return "", false
}

// User is an account of any role
type User struct {
	BaseModel
	Email     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password  string `gorm:"type:varchar(100);not null" json:"-"`
	FirstName string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(50);not null" json:"last_name"`
	Phone     string `gorm:"type:varchar(30)" json:"phone"`
	Role      Role   `gorm:"type:varchar(20);index;not null" json:"role"`
	Active    bool   `gorm:"default:true" json:"active"`
	Trade     string `gorm:"type:varchar(50)" json:"trade,omitempty"` // Handwerker only, e.g. Sanitär
	// LandlordID is set for Mieter accounts created by a Vermieter
	LandlordID *uint `gorm:"index" json:"landlord_id,omitempty"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserSummary is the public view of a user shown to other users
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  Role   `json:"role"`
	Trade string `json:"trade,omitempty"`
}

// Summary returns the public view of u
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:    u.ID,
		Name:  u.FullName(),
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
		Trade: u.Trade,
	}
}
