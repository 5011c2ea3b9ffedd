package models

import "time"

// Property is a building owned by a Vermieter
type Property struct {
	BaseModel
	VermieterID uint   `gorm:"index;not null" json:"vermieter_id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Street      string `gorm:"type:varchar(120);not null" json:"street"`
	ZipCode     string `gorm:"type:varchar(10);not null" json:"zip_code"`
	City        string `gorm:"type:varchar(80);not null" json:"city"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Vermieter *User  `gorm:"foreignKey:VermieterID" json:"-"`
	Units     []Unit `gorm:"foreignKey:PropertyID" json:"units,omitempty"`
}

// Unit is a rentable apartment (Wohneinheit) within a Property
type Unit struct {
	BaseModel
	PropertyID  uint       `gorm:"index;not null" json:"property_id"`
	Designation string     `gorm:"type:varchar(50);not null" json:"designation"` // e.g. "EG links"
	Floor       int        `json:"floor"`
	Area        float64    `json:"area"` // m²
	Rooms       float64    `json:"rooms"`
	RentCold    float64    `json:"rent_cold"`
	Utilities   float64    `json:"utilities"`
	MieterID    *uint      `gorm:"uniqueIndex" json:"mieter_id,omitempty"` // at most one active tenant
	MoveInDate  *time.Time `json:"move_in_date,omitempty"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Mieter   *User     `gorm:"foreignKey:MieterID" json:"-"`
}

// Occupied reports whether the unit has an active tenant
func (u *Unit) Occupied() bool {
	return u.MieterID != nil
}

// TotalRent is cold rent plus utilities
func (u *Unit) TotalRent() float64 {
	return u.RentCold + u.Utilities
}
