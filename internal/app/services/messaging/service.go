package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	domainmessaging "socialnet/internal/domain/messaging"
	domainuser "socialnet/internal/domain/user"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service implements direct messaging: sending, per-pair history, read-state
// transitions and the aggregated inbox.
type Service struct {
	Messages domainmessaging.Repository
	Users    domainuser.Repository
	Logger   *slog.Logger
}

type SendParams struct {
	SenderID    domainuser.ID
	RecipientID domainuser.ID
	Content     string
}

// Send validates and persists a new unread message. The recipient must be an
// existing user. Sending does not create a notification; pushes are a
// separate concern of the calling layer.
func (s *Service) Send(ctx context.Context, params SendParams) (*domainmessaging.Message, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	message, err := domainmessaging.NewMessage(domainmessaging.CreateParams{
		ID:          uuid.NewString(),
		SenderID:    params.SenderID,
		RecipientID: params.RecipientID,
		Content:     params.Content,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.Users.ByID(ctx, message.RecipientID); err != nil {
		return nil, err
	}
	if err := s.Messages.Insert(ctx, message); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("message sent",
			"sender_id", message.SenderID,
			"recipient_id", message.RecipientID,
			"conversation_key", message.ConversationKey,
		)
	}
	return message, nil
}

// History returns the messages exchanged between the caller and the other
// user, oldest first. The caller is a participant by construction of the
// conversation key.
func (s *Service) History(ctx context.Context, caller, other domainuser.ID, page, pageSize int) ([]domainmessaging.Message, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if other == "" {
		return nil, domainmessaging.ErrRecipientRequired
	}
	key := domainmessaging.ConversationKey(caller, other)
	offset, limit := pageWindow(page, pageSize)
	return s.Messages.History(ctx, key, offset, limit)
}

type MarkReadResult struct {
	Changed bool
	Updated int64
}

// MarkRead flips the read flag on the caller's unread inbound messages from
// the counterpart. When the most recent message in the conversation was sent
// by the caller there is nothing new to read and no state changes. The batch
// update is bounded by the most recent message's timestamp so a message
// arriving concurrently is not swept up.
func (s *Service) MarkRead(ctx context.Context, caller, counterpart domainuser.ID) (MarkReadResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return MarkReadResult{}, err
	}
	if counterpart == "" {
		return MarkReadResult{}, domainmessaging.ErrRecipientRequired
	}
	key := domainmessaging.ConversationKey(caller, counterpart)
	latest, err := s.Messages.Latest(ctx, key)
	if err != nil {
		return MarkReadResult{}, err
	}
	if latest.SenderID == caller {
		return MarkReadResult{Changed: false}, nil
	}
	updated, err := s.Messages.MarkReadUpTo(ctx, key, counterpart, caller, latest.CreatedAt)
	if err != nil {
		return MarkReadResult{}, err
	}
	if s.Logger != nil && updated > 0 {
		s.Logger.Info("conversation marked read",
			"reader_id", caller,
			"counterpart_id", counterpart,
			"messages", updated,
		)
	}
	return MarkReadResult{Changed: updated > 0, Updated: updated}, nil
}

// CounterpartProfile is the identity snippet attached to an inbox row.
type CounterpartProfile struct {
	ID       domainuser.ID
	Handle   string
	Email    string
	PhotoURL string
}

// InboxRow is one aggregated conversation entry for the viewing user.
type InboxRow struct {
	Counterpart   CounterpartProfile
	LastMessage   string
	LastSenderID  domainuser.ID
	LastRead      bool
	LastCreatedAt time.Time
}

// Inbox returns one row per counterpart the caller has exchanged messages
// with, most recent conversation first. Counterparts whose profile cannot be
// resolved are dropped from the result but logged, since a dangling
// reference points at a data-integrity problem.
func (s *Service) Inbox(ctx context.Context, caller domainuser.ID, page, pageSize int) ([]InboxRow, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	summaries, err := s.Messages.Summaries(ctx, caller)
	if err != nil {
		return nil, err
	}

	rows := make([]InboxRow, 0, len(summaries))
	for _, summary := range summaries {
		profile, err := s.Users.ByID(ctx, summary.CounterpartID)
		if err != nil {
			if errors.Is(err, domainuser.ErrNotFound) {
				if s.Logger != nil {
					s.Logger.Warn("dropping inbox row, counterpart profile missing",
						"viewer_id", caller,
						"counterpart_id", summary.CounterpartID,
					)
				}
				continue
			}
			return nil, err
		}
		rows = append(rows, InboxRow{
			Counterpart: CounterpartProfile{
				ID:       profile.ID,
				Handle:   profile.Handle,
				Email:    profile.Email,
				PhotoURL: profile.PhotoURL,
			},
			LastMessage:   summary.LastMessage,
			LastSenderID:  summary.LastSenderID,
			LastRead:      summary.LastRead,
			LastCreatedAt: summary.LastCreatedAt,
		})
	}

	// Grouping does not guarantee global order across conversations.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LastCreatedAt.After(rows[j].LastCreatedAt)
	})

	offset, limit := pageWindow(page, pageSize)
	if offset >= len(rows) {
		return []InboxRow{}, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Delete removes a message permanently. Only the original sender may delete;
// the recipient is rejected like any other caller.
func (s *Service) Delete(ctx context.Context, caller domainuser.ID, messageID string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	message, err := s.Messages.ByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != caller {
		return domainmessaging.ErrNotSender
	}
	if err := s.Messages.Delete(ctx, messageID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("message deleted", "message_id", messageID, "sender_id", caller)
	}
	return nil
}

func pageWindow(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Messages == nil:
		return errors.New("messaging: message repository required")
	case s.Users == nil:
		return errors.New("messaging: user repository required")
	default:
		return nil
	}
}
