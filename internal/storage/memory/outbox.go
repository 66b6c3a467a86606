package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	seq        int64
	status     string
	attemptCnt int
	updatedAt  time.Time
}

// Enqueue сохраняет событие со статусом `pending`.
func (st *state) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now()
	}
	st.outboxSeq++
	st.outbox[msg.ID] = outboxRecord{msg: msg, seq: st.outboxSeq, status: outboxStatusPending, updatedAt: msg.CreatedAt}
	return msg, nil
}

// PullPending возвращает до limit сообщений со статусом `pending` в порядке записи.
func (st *state) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	pending := st.pendingRecords()
	if len(pending) > limit {
		pending = pending[:limit]
	}
	result := make([]domain.OutboxMessage, 0, len(pending))
	for _, rec := range pending {
		result = append(result, rec.msg)
	}
	return result, nil
}

func (st *state) Stats(context.Context) (domain.OutboxStats, error) {
	pending := st.pendingRecords()
	stats := domain.OutboxStats{PendingCount: len(pending)}
	if len(pending) > 0 {
		stats.OldestPendingAt = pending[0].msg.CreatedAt
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (st *state) MarkSent(_ context.Context, id string) error {
	return st.mark(id, outboxStatusSent)
}

// MarkFailed фиксирует ошибку публикации.
func (st *state) MarkFailed(_ context.Context, id string) error {
	return st.mark(id, outboxStatusFailed)
}

func (st *state) mark(id, status string) error {
	record, ok := st.outbox[id]
	if !ok {
		return domain.ErrOutboxMessageNotFound
	}
	record.status = status
	record.attemptCnt++
	record.updatedAt = now()
	st.outbox[id] = record
	return nil
}

// PurgeSent удаляет самые старые отправленные сообщения.
func (st *state) PurgeSent(_ context.Context, before time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	sent := make([]outboxRecord, 0)
	for _, rec := range st.outbox {
		if rec.status == outboxStatusSent && !rec.updatedAt.After(before) {
			sent = append(sent, rec)
		}
	}
	sort.Slice(sent, func(i, j int) bool { return sent[i].seq < sent[j].seq })
	if len(sent) > limit {
		sent = sent[:limit]
	}
	for _, rec := range sent {
		delete(st.outbox, rec.msg.ID)
	}
	return len(sent), nil
}

func (st *state) pendingRecords() []outboxRecord {
	pending := make([]outboxRecord, 0)
	for _, rec := range st.outbox {
		if rec.status == outboxStatusPending {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })
	return pending
}

func (s *Store) Enqueue(ctx context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Enqueue(ctx, msg)
}

func (s *Store) PullPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.PullPending(ctx, limit)
}

func (s *Store) Stats(ctx context.Context) (domain.OutboxStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Stats(ctx)
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.MarkSent(ctx, id)
}

func (s *Store) MarkFailed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.MarkFailed(ctx, id)
}

func (s *Store) PurgeSent(ctx context.Context, before time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.PurgeSent(ctx, before, limit)
}

// AllPending возвращает копию всех сообщений со статусом `pending` (используется в тестах).
func (s *Store) AllPending() []domain.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, _ := s.st.PullPending(context.Background(), len(s.st.outbox)+1)
	return msgs
}
