// Package memory содержит in-memory реализацию domain.Store для локальной разработки и тестов.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Store хранит все таблицы в памяти. Транзакции сериализуются мьютексом:
// fn работает над копией состояния, и копия подменяет текущее состояние только при успехе.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{st: newState()}
}

// WithinTx выполняет fn над изолированной копией состояния.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(ctx, staged); err != nil {
		return err
	}
	s.st = staged
	return nil
}

// Ping всегда успешен для in-memory хранилища.
func (s *Store) Ping(context.Context) error { return nil }

// Close ничего не освобождает.
func (s *Store) Close() error { return nil }

// Counts возвращает число заказов и позиций (используется в тестах и seed-командах).
func (s *Store) Counts() (orders, items int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.st.orders), len(s.st.items)
}

// state — набор таблиц. Методы state не синхронизированы и вызываются под мьютексом Store.
type state struct {
	users    map[int64]domain.User
	vendors  map[int64]domain.Vendor
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	items    map[int64]domain.OrderItem
	reviews  map[int64]domain.Review
	outbox   map[string]outboxRecord

	nextUserID, nextVendorID, nextProductID int64
	nextOrderID, nextItemID, nextReviewID   int64
	outboxSeq                               int64
}

func newState() *state {
	return &state{
		users:    make(map[int64]domain.User),
		vendors:  make(map[int64]domain.Vendor),
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
		items:    make(map[int64]domain.OrderItem),
		reviews:  make(map[int64]domain.Review),
		outbox:   make(map[string]outboxRecord),
	}
}

func (st *state) clone() *state {
	c := *st
	c.users = cloneMap(st.users)
	c.vendors = cloneMap(st.vendors)
	c.products = cloneMap(st.products)
	c.orders = cloneMap(st.orders)
	c.items = cloneMap(st.items)
	c.reviews = cloneMap(st.reviews)
	c.outbox = cloneMap(st.outbox)
	return &c
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// sortedValues возвращает значения в порядке хранения (по возрастанию id).
func sortedValues[V any](src map[int64]V, keep func(V) bool) []V {
	keys := make([]int64, 0, len(src))
	for k, v := range src {
		if keep == nil || keep(v) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, src[k])
	}
	return out
}

func now() time.Time {
	return time.Now().UTC()
}

var (
	_ domain.Store        = (*Store)(nil)
	_ domain.Repositories = (*state)(nil)
)
