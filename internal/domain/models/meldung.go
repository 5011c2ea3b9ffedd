package models

import "time"

// MeldungStatus is the lifecycle state of a work order
type MeldungStatus string

const (
	StatusOffen              MeldungStatus = "OFFEN"
	StatusInBearbeitung      MeldungStatus = "IN_BEARBEITUNG"
	StatusHandwerkerErledigt MeldungStatus = "HANDWERKER_ERLEDIGT"
	StatusAbgeschlossen      MeldungStatus = "ABGESCHLOSSEN"
	StatusStorniert          MeldungStatus = "STORNIERT"
)

// MeldungPriority of a work order
type MeldungPriority string

const (
	PriorityNiedrig MeldungPriority = "NIEDRIG"
	PriorityMittel  MeldungPriority = "MITTEL"
	PriorityHoch    MeldungPriority = "HOCH"
	PriorityNotfall MeldungPriority = "NOTFALL"
)

// ParseMeldungPriority defaults to MITTEL for an empty string
func ParseMeldungPriority(s string) (MeldungPriority, bool) {
	switch p := MeldungPriority(s); p {
	case "":
		return PriorityMittel, true
	case PriorityNiedrig, PriorityMittel, PriorityHoch, PriorityNotfall:
		return p, true
	}
	return "", false
}

// Meldung is a maintenance ticket reported by a Mieter for their unit
type Meldung struct {
	BaseModel
	UnitID       uint            `gorm:"index;not null" json:"unit_id"`
	ReporterID   uint            `gorm:"index;not null" json:"reporter_id"`
	HandwerkerID *uint           `gorm:"index" json:"handwerker_id,omitempty"`
	Title        string          `gorm:"type:varchar(120);not null" json:"title"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Category     string          `gorm:"type:varchar(50)" json:"category,omitempty"` // Heizung, Sanitär, Elektrik, ...
	Priority     MeldungPriority `gorm:"type:varchar(20);default:'MITTEL'" json:"priority"`
	Status       MeldungStatus   `gorm:"type:varchar(30);index;default:'OFFEN'" json:"status"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"` // set when the Handwerker reports done
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`    // set on ABGESCHLOSSEN or STORNIERT

	Unit       *Unit            `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	Reporter   *User            `gorm:"foreignKey:ReporterID" json:"-"`
	Handwerker *User            `gorm:"foreignKey:HandwerkerID" json:"-"`
	History    []MeldungHistory `gorm:"foreignKey:MeldungID" json:"history,omitempty"`
}

// MeldungHistory records one status transition
type MeldungHistory struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	MeldungID  uint          `gorm:"index;not null" json:"meldung_id"`
	FromStatus MeldungStatus `gorm:"type:varchar(30)" json:"from_status"`
	ToStatus   MeldungStatus `gorm:"type:varchar(30);not null" json:"to_status"`
	ActorID    uint          `json:"actor_id"`
	ActorRole  Role          `gorm:"type:varchar(20)" json:"actor_role"`
	Note       string        `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// TableName keeps the history table name stable
func (MeldungHistory) TableName() string {
	return "meldung_histories"
}

// TableName uses the German plural
func (Meldung) TableName() string {
	return "meldungen"
}
