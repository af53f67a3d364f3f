package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/pkg/enums"
)

// User is the identity projection consumed by the order core. Credential
// storage and profile management live in the identity service.
type User struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string     `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.Role `gorm:"column:role;not null;default:'customer'"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
