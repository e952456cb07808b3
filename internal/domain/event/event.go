package event

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event represents one Secret Santa gift exchange
type Event struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string     `json:"name" gorm:"not null"`
	MinBudget  *int       `json:"min_budget"`
	MaxBudget  *int       `json:"max_budget"`
	EventDate  *time.Time `json:"event_date"`
	Status     Status     `json:"status" gorm:"type:varchar(16);not null;default:'created'"`
	CreatorID  uuid.UUID  `json:"creator_id" gorm:"type:uuid;not null;index"`
	InviteCode string     `json:"invite_code" gorm:"uniqueIndex;size:32"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Event) TableName() string {
	return "santa_events"
}

// BeforeCreate sets a UUID before creating the record
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewEvent creates a new event in the initial status
func NewEvent(name string, creatorID uuid.UUID, minBudget, maxBudget *int, eventDate *time.Time, inviteCode string) *Event {
	return &Event{
		ID:         uuid.New(),
		Name:       name,
		MinBudget:  minBudget,
		MaxBudget:  maxBudget,
		EventDate:  eventDate,
		Status:     StatusCreated,
		CreatorID:  creatorID,
		InviteCode: inviteCode,
		CreatedAt:  time.Now(),
	}
}

// IsCreator checks if the given user ID created this event
func (e *Event) IsCreator(userID uuid.UUID) bool {
	return e.CreatorID == userID
}

// IsLocked reports whether the event left the mutable `created` status.
// Participant changes, budget/name/date edits and re-draws are illegal
// once locked.
func (e *Event) IsLocked() bool {
	return e.Status != StatusCreated
}

// CanTransitionTo checks if the event can transition to a new status
func (e *Event) CanTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusCreated:  {StatusAssigned},
		StatusAssigned: {}, // NOTE: assigned is terminal; "redo the draw" is not supported
	}

	allowed, exists := transitions[e.Status]
	if !exists {
		return false
	}

	return slices.Contains(allowed, newStatus)
}

// UpdateStatus updates the status if the transition is valid
func (e *Event) UpdateStatus(newStatus Status) error {
	if !e.CanTransitionTo(newStatus) {
		return fmt.Errorf("cannot transition from %s to %s", e.Status, newStatus)
	}
	e.Status = newStatus
	return nil
}

// Status represents the lifecycle status of an event
type Status byte

const (
	StatusCreated Status = iota
	StatusAssigned
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusAssigned:
		return "assigned"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Status) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	status, valid := StatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid status: %s", str)
	}
	*s = status
	return nil
}

// StatusFromString converts a string to a Status
func StatusFromString(s string) (Status, bool) {
	switch s {
	case "created":
		return StatusCreated, true
	case "assigned":
		return StatusAssigned, true
	default:
		return StatusCreated, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (s *Status) Scan(value interface{}) error {
	if value == nil {
		*s = StatusCreated
		return nil
	}

	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}

	status, valid := StatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid status value: %s", str)
	}
	*s = status
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}
