package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/achievehub/achievehub/pkg/metrics"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemoryStore is an in-process Store for tests and local runs. It keeps the
// same key, condition and ordering semantics as the DynamoDB store.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table]map[string]Item
	opts   options
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		tables: make(map[Table]map[string]Item),
		opts:   collectOptions(opts),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, table Table, key Item) (Item, error) {
	defer observe(m.opts.physical(table), "get", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := encodeKey(table, key)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.tables[table][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneItem(item), nil
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, table Table, item Item, opts ...PutOption) error {
	defer observe(m.opts.physical(table), "put", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := keyOf(table, item)
	if err != nil {
		return err
	}
	id, err := encodeKey(table, key)
	if err != nil {
		return err
	}
	po := collectPutOptions(opts)

	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	if rows == nil {
		rows = make(map[string]Item)
		m.tables[table] = rows
	}
	if _, exists := rows[id]; exists && po.ifNotExists {
		return ErrAlreadyExists
	}
	rows[id] = cloneItem(item)
	return nil
}

// Update implements Store.
func (m *MemoryStore) Update(ctx context.Context, table Table, key Item, changes map[string]any, conds ...Condition) (Item, error) {
	defer observe(m.opts.physical(table), "update", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := encodeKey(table, key)
	if err != nil {
		return nil, err
	}
	encoded := make(Item, len(changes))
	for name, v := range changes {
		if _, isKey := key[name]; isKey {
			return nil, fmt.Errorf("%w: cannot update key attribute %s", ErrInvalidKey, name)
		}
		av, err := marshalValue(v)
		if err != nil {
			return nil, err
		}
		encoded[name] = av
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.tables[table][id]
	if !ok {
		return nil, ErrNotFound
	}
	holds, err := matchAll(current, conds)
	if err != nil {
		return nil, err
	}
	if !holds {
		return nil, ErrConditionFailed
	}
	next := cloneItem(current)
	for name, av := range encoded {
		next[name] = av
	}
	m.tables[table][id] = next
	return cloneItem(next), nil
}

// Query implements Store.
func (m *MemoryStore) Query(ctx context.Context, table Table, partition string) ([]Item, error) {
	defer observe(m.opts.physical(table), "query", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := SchemaOf(table)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Item
	for _, item := range m.tables[table] {
		if v, ok := item[s.PartitionKey].(*types.AttributeValueMemberS); ok && v.Value == partition {
			out = append(out, cloneItem(item))
		}
	}
	if s.SortKey != "" {
		sort.Slice(out, func(i, j int) bool {
			return scalarString(out[i][s.SortKey]) < scalarString(out[j][s.SortKey])
		})
	}
	return out, nil
}

// Scan implements Store. Results are ordered by primary key.
func (m *MemoryStore) Scan(ctx context.Context, table Table, filters ...Condition) ([]Item, error) {
	defer observe(m.opts.physical(table), "scan", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := SchemaOf(table); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.tables[table]))
	for id := range m.tables[table] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Item
	for _, id := range ids {
		item := m.tables[table][id]
		ok, err := matchAll(item, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

// Len returns the number of records in table.
func (m *MemoryStore) Len(table Table) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}

func encodeKey(t Table, key Item) (string, error) {
	s, err := SchemaOf(t)
	if err != nil {
		return "", err
	}
	parts := []string{}
	for _, name := range []string{s.PartitionKey, s.SortKey} {
		if name == "" {
			continue
		}
		v, ok := key[name]
		if !ok {
			return "", fmt.Errorf("%w: %s.%s missing", ErrInvalidKey, t, name)
		}
		str := scalarString(v)
		if str == "" {
			return "", fmt.Errorf("%w: %s.%s must be a non-empty string or number", ErrInvalidKey, t, name)
		}
		parts = append(parts, str)
	}
	return strings.Join(parts, "\x00"), nil
}

func scalarString(v types.AttributeValue) string {
	switch av := v.(type) {
	case *types.AttributeValueMemberS:
		return av.Value
	case *types.AttributeValueMemberN:
		return av.Value
	}
	return ""
}

func cloneItem(item Item) Item {
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func observe(table, op string, start time.Time) {
	metrics.RecordStoreOperation(table, op, float64(time.Since(start).Microseconds())/1000)
}
