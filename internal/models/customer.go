// internal/models/customer.go
package models

import (
	"github.com/google/uuid"
)

type Customer struct {
	BaseModel
	OwnerID uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name    string    `json:"name" gorm:"size:255"`
	Phone   string    `json:"phone" gorm:"size:32;not null;index"`
	Address string    `json:"address" gorm:"type:text"`
}
