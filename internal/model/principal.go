package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminRole string

const (
	AdminRoleAdmin     AdminRole = "ADMIN"
	AdminRoleCounselor AdminRole = "COUNSELOR"
)

func (r AdminRole) Valid() bool {
	return r == AdminRoleAdmin || r == AdminRoleCounselor
}

type Admin struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         AdminRole `gorm:"type:varchar(32);not null" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Principal is the authenticated admin attached to a request.
type Principal struct {
	AdminID uuid.UUID `json:"admin_id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    AdminRole `json:"role"`
}

// SystemPrincipal acts for background jobs such as the live dashboard feed,
// whose clients were authenticated when they connected.
var SystemPrincipal = Principal{Name: "Sistem", Role: AdminRoleCounselor}

func (p Principal) IsAdmin() bool {
	return p.Role == AdminRoleAdmin
}

func (p Principal) CanTriage() bool {
	return p.Role == AdminRoleAdmin || p.Role == AdminRoleCounselor
}
