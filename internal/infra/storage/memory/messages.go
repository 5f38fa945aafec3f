package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainmessaging "socialnet/internal/domain/messaging"
	domainuser "socialnet/internal/domain/user"
)

// MessageRepository keeps direct messages in memory, mirroring the grouping
// and ordering semantics of the Mongo aggregation pipeline.
type MessageRepository struct {
	mu   sync.RWMutex
	byID map[string]*domainmessaging.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{byID: make(map[string]*domainmessaging.Message)}
}

func (r *MessageRepository) Insert(ctx context.Context, message *domainmessaging.Message) error {
	if message == nil || message.ID == "" {
		return domainmessaging.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[message.ID] = cloneMessage(message)
	return nil
}

func (r *MessageRepository) ByID(ctx context.Context, id string) (*domainmessaging.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.byID[id]; ok {
		return cloneMessage(m), nil
	}
	return nil, domainmessaging.ErrMessageNotFound
}

func (r *MessageRepository) History(ctx context.Context, key string, offset, limit int) ([]domainmessaging.Message, error) {
	matches := r.byKey(key)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(matches) {
			return nil, nil
		}
		matches = matches[offset:]
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *MessageRepository) Latest(ctx context.Context, key string) (*domainmessaging.Message, error) {
	matches := r.byKey(key)
	if len(matches) == 0 {
		return nil, domainmessaging.ErrConversationNotFound
	}
	latest := matches[0]
	for _, m := range matches[1:] {
		if m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	return &latest, nil
}

func (r *MessageRepository) MarkReadUpTo(ctx context.Context, key string, senderID, recipientID domainuser.ID, until time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var modified int64
	for _, m := range r.byID {
		if m.ConversationKey != key || m.Read {
			continue
		}
		if m.SenderID != senderID || m.RecipientID != recipientID {
			continue
		}
		if m.CreatedAt.After(until) {
			continue
		}
		m.Read = true
		modified++
	}
	return modified, nil
}

func (r *MessageRepository) Summaries(ctx context.Context, viewer domainuser.ID) ([]domainmessaging.Summary, error) {
	r.mu.RLock()
	var involving []domainmessaging.Message
	for _, m := range r.byID {
		if m.SenderID == viewer || m.RecipientID == viewer {
			involving = append(involving, *m)
		}
	}
	r.mu.RUnlock()

	// Most recent first, so the first message seen per counterpart is the
	// one the inbox row reports.
	sort.SliceStable(involving, func(i, j int) bool {
		return involving[i].CreatedAt.After(involving[j].CreatedAt)
	})

	seen := make(map[domainuser.ID]struct{})
	var summaries []domainmessaging.Summary
	for _, m := range involving {
		counterpart := m.Counterpart(viewer)
		if _, ok := seen[counterpart]; ok {
			continue
		}
		seen[counterpart] = struct{}{}
		summaries = append(summaries, domainmessaging.Summary{
			CounterpartID: counterpart,
			LastMessage:   m.Content,
			LastSenderID:  m.SenderID,
			LastRead:      m.Read,
			LastCreatedAt: m.CreatedAt,
		})
	}
	return summaries, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domainmessaging.ErrMessageNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MessageRepository) byKey(key string) []domainmessaging.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []domainmessaging.Message
	for _, m := range r.byID {
		if m.ConversationKey == key {
			matches = append(matches, *m)
		}
	}
	return matches
}

func cloneMessage(m *domainmessaging.Message) *domainmessaging.Message {
	if m == nil {
		return nil
	}
	copyMessage := *m
	return &copyMessage
}
