package wishlist

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is one entry on a user's wishlist
type Item struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Privacy     Privacy   `json:"privacy" gorm:"type:varchar(16);not null;default:'all'"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Item) TableName() string {
	return "wishlist_items"
}

// BeforeCreate sets a UUID before creating the record
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Reservation marks a wishlist item as claimed by another user. The
// unique index on wishlist_item_id keeps it to a single claim per item.
type Reservation struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	WishlistItemID uuid.UUID `json:"wishlist_item_id" gorm:"type:uuid;not null;uniqueIndex"`
	ReservedBy     uuid.UUID `json:"reserved_by" gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Reservation) TableName() string {
	return "wishlist_reservations"
}

// BeforeCreate sets a UUID before creating the record
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Privacy controls who can see a wishlist item
type Privacy byte

const (
	PrivacyAll Privacy = iota
	PrivacyFriends
)

func (p Privacy) String() string {
	switch p {
	case PrivacyAll:
		return "all"
	case PrivacyFriends:
		return "friends"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (p Privacy) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (p *Privacy) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	privacy, valid := PrivacyFromString(str)
	if !valid {
		return fmt.Errorf("invalid privacy: %s", str)
	}
	*p = privacy
	return nil
}

// PrivacyFromString converts a string to a Privacy
func PrivacyFromString(s string) (Privacy, bool) {
	switch s {
	case "all":
		return PrivacyAll, true
	case "friends":
		return PrivacyFriends, true
	default:
		return PrivacyAll, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (p *Privacy) Scan(value interface{}) error {
	if value == nil {
		*p = PrivacyAll
		return nil
	}

	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Privacy", value)
	}

	privacy, valid := PrivacyFromString(str)
	if !valid {
		return fmt.Errorf("invalid privacy value: %s", str)
	}
	*p = privacy
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (p Privacy) Value() (driver.Value, error) {
	return p.String(), nil
}
