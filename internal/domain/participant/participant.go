package participant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant is one member of an event's exchange. UserID is nil for
// placeholder ("mock") entries the owner added by hand; real users keep
// a link back to their account. A real user may appear at most once per
// event, enforced by the unique (event_id, user_id) index; NULLs are
// distinct in Postgres, so mock entries never collide.
type Participant struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_event_user"`
	UserID    *uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_event_user"`
	Name      string     `json:"name" gorm:"not null"`
	InvitedBy *uuid.UUID `json:"invited_by" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Participant) TableName() string {
	return "event_participants"
}

// BeforeCreate sets a UUID before creating the record
func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewMock creates a placeholder participant without a linked user
func NewMock(eventID uuid.UUID, name string) *Participant {
	return &Participant{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// NewMember creates a participant linked to a real user account
func NewMember(eventID, userID uuid.UUID, name string, invitedBy *uuid.UUID) *Participant {
	id := userID
	return &Participant{
		ID:        uuid.New(),
		EventID:   eventID,
		UserID:    &id,
		Name:      name,
		InvitedBy: invitedBy,
		CreatedAt: time.Now(),
	}
}

// IsMock reports whether this entry has no linked user account
func (p *Participant) IsMock() bool {
	return p.UserID == nil
}
