package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "staycal/internal/app/outbox"
	infraoutbox "staycal/internal/infra/outbox"
)

const (
	outboxStateNew     = "NEW"
	outboxStateClaimed = "CLAIMED"
	outboxStateSent    = "SENT"
	outboxStateFailed  = "FAILED"
)

// OutboxStore is an in-memory outbox. It satisfies both the application
// Outbox (handlers append records) and the publisher worker's Source
// (the worker claims and drains them), so dev mode gets the same
// publish pipeline as Mongo mode.
type OutboxStore struct {
	mu    sync.Mutex
	order []string
	docs  map[string]*infraoutbox.EventDocument
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{docs: make(map[string]*infraoutbox.EventDocument)}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[record.ID]; ok {
		return nil
	}
	s.docs[record.ID] = &infraoutbox.EventDocument{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    record.Payload,
		OccurredAt: record.OccurredAt,
		Aggregate:  record.Aggregate,
		Headers:    record.Headers,
		State:      outboxStateNew,
	}
	s.order = append(s.order, record.ID)
	return nil
}

func (s *OutboxStore) Flush(ctx context.Context) error { return nil }

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range s.order {
		doc := s.docs[id]
		if doc.State != outboxStateNew && doc.State != outboxStateFailed {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = outboxStateClaimed
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		cp := *doc
		return &cp, nil
	}
	return nil, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		doc.State = outboxStateSent
		doc.SentAt = time.Now().UTC()
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		doc.State = outboxStateFailed
		doc.Attempts++
		doc.NextAttempt = next
		doc.LastError = errMsg
	}
	return nil
}
