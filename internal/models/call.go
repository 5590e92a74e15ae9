// internal/models/call.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ExtractedItem is one line of the order draft the AI service pulled out of a
// call transcript. Units are free text ("liters", "loaf") and are resolved
// against the catalog only at conversion time.
type ExtractedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

type ExtractedItems []ExtractedItem

func (items ExtractedItems) Value() (driver.Value, error) {
	if items == nil {
		return nil, nil
	}
	return json.Marshal(items)
}

func (items *ExtractedItems) Scan(value interface{}) error {
	if value == nil {
		*items = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("unsupported type %T for extracted items", value)
		}
	}

	return json.Unmarshal(bytes, items)
}

type CallRecord struct {
	BaseModel
	OwnerID        uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	CustomerPhone  string         `json:"customer_phone" gorm:"size:32;index"`
	Transcript     string         `json:"transcript" gorm:"type:text"`
	Summary        string         `json:"summary" gorm:"type:text"`
	ExtractedItems ExtractedItems `json:"extracted_items,omitempty" gorm:"type:jsonb"`
	Confidence     float64        `json:"confidence" gorm:"default:0"`
	Status         CallStatus     `json:"status" gorm:"type:varchar(20);default:'received';index"`
	LinkedOrderID  *uuid.UUID     `json:"linked_order_id,omitempty" gorm:"type:uuid"`
}
