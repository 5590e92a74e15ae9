// internal/models/alert.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertRecord tracks when the last restock request went out for a product.
// It exists only to enforce the alert cooldown and is keyed by the product.
type AlertRecord struct {
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;primary_key"`
	OwnerID    uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	LastSentAt time.Time `json:"last_sent_at" gorm:"not null"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AppNotification is an entry in the owner's dashboard notification feed.
type AppNotification struct {
	BaseModel
	OwnerID uuid.UUID        `json:"owner_id" gorm:"type:uuid;not null;index"`
	Type    NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	Title   string           `json:"title" gorm:"size:255;not null"`
	Message string           `json:"message" gorm:"type:text"`
	Read    bool             `json:"read" gorm:"default:false;index"`
}
