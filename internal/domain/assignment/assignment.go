package assignment

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment is one giver→receiver edge of an event's draw. The
// giver/receiver graph is immutable once created; only the gift
// tracking fields (status, photo, note, timestamps) change afterwards.
type Assignment struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	EventID      uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_event_giver"`
	GiverID      uuid.UUID  `json:"giver_id" gorm:"type:uuid;not null;uniqueIndex:idx_event_giver"`
	ReceiverID   uuid.UUID  `json:"receiver_id" gorm:"type:uuid;not null"`
	GiftStatus   GiftStatus `json:"gift_status" gorm:"type:varchar(16);not null;default:'pending'"`
	GiftPhotoURL *string    `json:"gift_photo_url"`
	GiftNote     *string    `json:"gift_note"`
	PurchasedAt  *time.Time `json:"purchased_at"`
	DeliveredAt  *time.Time `json:"delivered_at"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Assignment) TableName() string {
	return "santa_assignments"
}

// BeforeCreate sets a UUID before creating the record
func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// CanTransitionTo checks whether the gift status may move to newStatus.
// Transitions go one adjacent step at a time, in either direction:
// pending ↔ purchased ↔ delivered.
func (a *Assignment) CanTransitionTo(newStatus GiftStatus) bool {
	switch a.GiftStatus {
	case GiftPending:
		return newStatus == GiftPurchased
	case GiftPurchased:
		return newStatus == GiftPending || newStatus == GiftDelivered
	case GiftDelivered:
		return newStatus == GiftPurchased
	}
	return false
}

// ApplyGiftStatus moves the gift status and keeps the stage timestamps
// consistent: entering a stage stamps it, stepping back clears the
// timestamp of the stage being left.
func (a *Assignment) ApplyGiftStatus(newStatus GiftStatus, now time.Time) error {
	if !a.CanTransitionTo(newStatus) {
		return fmt.Errorf("cannot transition gift status from %s to %s", a.GiftStatus, newStatus)
	}

	switch {
	case a.GiftStatus == GiftPending && newStatus == GiftPurchased:
		t := now
		a.PurchasedAt = &t
	case a.GiftStatus == GiftPurchased && newStatus == GiftDelivered:
		t := now
		a.DeliveredAt = &t
	case a.GiftStatus == GiftPurchased && newStatus == GiftPending:
		a.PurchasedAt = nil
	case a.GiftStatus == GiftDelivered && newStatus == GiftPurchased:
		a.DeliveredAt = nil
	}

	a.GiftStatus = newStatus
	return nil
}

// GiftStatus represents the fulfillment stage of one assignment
type GiftStatus byte

const (
	GiftPending GiftStatus = iota
	GiftPurchased
	GiftDelivered
)

func (s GiftStatus) String() string {
	switch s {
	case GiftPending:
		return "pending"
	case GiftPurchased:
		return "purchased"
	case GiftDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s GiftStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *GiftStatus) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	status, valid := GiftStatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid gift status: %s", str)
	}
	*s = status
	return nil
}

// GiftStatusFromString converts a string to a GiftStatus
func GiftStatusFromString(s string) (GiftStatus, bool) {
	switch s {
	case "pending":
		return GiftPending, true
	case "purchased":
		return GiftPurchased, true
	case "delivered":
		return GiftDelivered, true
	default:
		return GiftPending, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (s *GiftStatus) Scan(value interface{}) error {
	if value == nil {
		*s = GiftPending
		return nil
	}

	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into GiftStatus", value)
	}

	status, valid := GiftStatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid gift status value: %s", str)
	}
	*s = status
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (s GiftStatus) Value() (driver.Value, error) {
	return s.String(), nil
}
