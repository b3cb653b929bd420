package model

import "time"

// SupplementCategory classifies catalog entries.
type SupplementCategory = string

const (
	SupplementVitamin SupplementCategory = "vitamin"
	SupplementMineral SupplementCategory = "mineral"
	SupplementProtein SupplementCategory = "protein"
	SupplementOmega   SupplementCategory = "omega"
	SupplementHerb    SupplementCategory = "herb"
	SupplementOther   SupplementCategory = "other"
)

// Supplement is a catalog entry users subscribe to.
type Supplement struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Category      string    `gorm:"size:20;not null" json:"category"`
	Description   string    `gorm:"type:text" json:"description"`
	DefaultDosage string    `gorm:"size:100" json:"default_dosage"`
	Precautions   string    `gorm:"type:text" json:"precautions"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserSupplement is a user's ongoing regimen for one catalog supplement.
type UserSupplement struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64      `gorm:"index:idx_user_supplement;not null" json:"user_id"`
	SupplementID  int64      `gorm:"not null" json:"supplement_id"`
	Dosage        string     `gorm:"size:100;not null" json:"dosage"`
	Frequency     string     `gorm:"size:100" json:"frequency"`
	Morning       bool       `gorm:"default:false" json:"morning"`
	Afternoon     bool       `gorm:"default:false" json:"afternoon"`
	Evening       bool       `gorm:"default:false" json:"evening"`
	PersonalNotes string     `gorm:"type:text" json:"personal_notes"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	StartedDate   time.Time  `gorm:"autoCreateTime" json:"started_date"`
	EndedDate     *time.Time `json:"ended_date,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SupplementLog records one intake of a user supplement.
type SupplementLog struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"index:idx_user_supplement_log;not null" json:"user_id"`
	UserSupplementID int64     `gorm:"not null" json:"user_supplement_id"`
	TakenAt          time.Time `gorm:"not null" json:"taken_at"`
	DosageTaken      string    `gorm:"size:100;not null" json:"dosage_taken"`
	TimeOfDay        string    `gorm:"size:20;not null" json:"time_of_day"` // morning|afternoon|evening|night
	Notes            string    `gorm:"type:text" json:"notes"`
	SideEffects      string    `gorm:"type:text" json:"side_effects"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
