package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"teamfinder/internal/models"
	"teamfinder/internal/repositories"
)

var (
	ErrStoreUnavailable = errors.New("message store unavailable")
	ErrRecipientMissing = errors.New("recipient not found")
	ErrMessageInvalid   = errors.New("message content invalid")
)

const notifyPreviewLen = 50

// MessageService derives the conversation view from the flat message store
// and owns the read-state transition. The store is scanned on every call;
// there is no cached view to invalidate.
type MessageService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	notifier Notifier
}

func NewMessageService(
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	notifier Notifier,
) *MessageService {
	return &MessageService{messages: messages, users: users, notifier: notifier}
}

// ListConversations returns one summary per distinct partner, newest
// conversation first. Two independent passes over the store: the newest-first
// scan resolves each partner's last message, a grouped count query resolves
// unread totals. Equal created_at values resolve to the higher message id
// (the scan orders by id within a timestamp).
func (s *MessageService) ListConversations(userID int) ([]models.ConversationSummary, error) {
	msgs, err := s.messages.ListByParticipant(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	unread, err := s.messages.UnreadCountsByPartner(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	summaries := make([]models.ConversationSummary, 0, len(msgs))
	seen := make(map[int]bool)
	for _, msg := range msgs {
		partnerID := msg.FromID
		if partnerID == userID {
			partnerID = msg.ToID
		}
		if seen[partnerID] {
			continue
		}
		seen[partnerID] = true

		summary := models.ConversationSummary{
			PartnerID:     partnerID,
			LastMessage:   msg.Content,
			LastMessageAt: msg.CreatedAt,
			UnreadCount:   unread[partnerID],
		}
		if partner, err := s.users.GetByID(partnerID); err == nil && partner != nil {
			summary.Username = partner.Username
			summary.FirstName = partner.FirstName
			summary.LastName = partner.LastName
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// OpenConversation returns the full history with the partner, oldest first,
// and marks everything the partner sent as read. The returned slice is the
// pre-mark snapshot: the caller sees the read flags as they stood when the
// conversation was opened. The mark itself is a single predicate-scoped
// update, so a second concurrent open of the same conversation just matches
// zero rows.
func (s *MessageService) OpenConversation(userID, partnerID int) ([]*models.Message, error) {
	msgs, err := s.messages.ListBetween(userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, err := s.messages.MarkRead(partnerID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if n > 0 {
		log.Printf("[messages][read] userID=%d partnerID=%d marked=%d", userID, partnerID, n)
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return msgs, nil
}

// Send appends a message and pings the recipient's Telegram with a short
// preview. The notification is fire-and-forget.
func (s *MessageService) Send(fromID, toID int, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > models.MaxMessageLength {
		return nil, ErrMessageInvalid
	}

	recipient, err := s.users.GetByID(toID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if recipient == nil {
		return nil, ErrRecipientMissing
	}

	msg, err := s.messages.Create(fromID, toID, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if s.notifier != nil {
		senderName := fmt.Sprintf("user #%d", fromID)
		if sender, err := s.users.GetByID(fromID); err == nil && sender != nil {
			senderName = sender.Profile.Name
			if senderName == "" {
				senderName = sender.FirstName
			}
			if senderName == "" {
				senderName = sender.Username
			}
		}
		preview := content
		if r := []rune(preview); len(r) > notifyPreviewLen {
			preview = string(r[:notifyPreviewLen]) + "..."
		}
		s.notifier.NotifyNewMessage(recipient.TelegramID, senderName, preview)
	}
	return msg, nil
}

func (s *MessageService) UnreadCount(userID int) (int, error) {
	n, err := s.messages.CountUnread(userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}
