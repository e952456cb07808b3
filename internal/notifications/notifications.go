// Package notifications defines the outbound notification seam. Actual
// delivery (Telegram bot messages) lives outside this service; the core
// only emits fire-and-forget events after its transactions commit, and
// a failed notification never affects the committed operation.
package notifications

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/logger"
)

// Notifier receives domain events worth telling users about. Methods
// must not block on external I/O from the caller's perspective and must
// never return an error into the calling flow.
type Notifier interface {
	// DrawCompleted tells a participant who they are gifting to
	DrawCompleted(ctx context.Context, userID uuid.UUID, eventName, receiverName string)
	// GiftReserved tells a wishlist owner one of their items was claimed
	GiftReserved(ctx context.Context, ownerID uuid.UUID, itemTitle, reservedByName string)
	// MemberJoined tells an event creator someone accepted their invite
	MemberJoined(ctx context.Context, creatorID uuid.UUID, eventName, memberName string)
}

// LogNotifier writes notifications to the structured log. It stands in
// for the bot-backed sender in development and tests.
type LogNotifier struct {
	log *log.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Notifications()}
}

func (n *LogNotifier) DrawCompleted(ctx context.Context, userID uuid.UUID, eventName, receiverName string) {
	n.log.Info("draw completed notification",
		"user_id", userID,
		"event", eventName,
		"receiver", receiverName)
}

func (n *LogNotifier) GiftReserved(ctx context.Context, ownerID uuid.UUID, itemTitle, reservedByName string) {
	n.log.Info("gift reserved notification",
		"owner_id", ownerID,
		"item", itemTitle,
		"reserved_by", reservedByName)
}

func (n *LogNotifier) MemberJoined(ctx context.Context, creatorID uuid.UUID, eventName, memberName string) {
	n.log.Info("member joined notification",
		"creator_id", creatorID,
		"event", eventName,
		"member", memberName)
}
