// Package store implements contracts.TableStore on top of memory, PostgreSQL and Redis.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wonny/pdcal/internal/contracts"
)

type memEntry struct {
	table     *contracts.Table
	updatedAt time.Time
}

// Memory is an in-process TableStore. Tables are deep-copied on every read and write.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]memEntry
	now    func() time.Time
}

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]memEntry), now: time.Now}
}

// Read returns a copy of a table
func (m *Memory) Read(ctx context.Context, name string) (*contracts.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrTableNotFound, name)
	}
	return e.table.Clone(), nil
}

// Write replaces a table
func (m *Memory) Write(ctx context.Context, t *contracts.Table) error {
	return m.WriteAll(ctx, t)
}

// WriteAll replaces every table under one lock. An invalid table leaves the store untouched.
func (m *Memory) WriteAll(ctx context.Context, tables ...*contracts.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copies := make([]*contracts.Table, len(tables))
	for i, t := range tables {
		if t == nil || t.Name == "" {
			return fmt.Errorf("%w: table %d has no name", contracts.ErrInvalidTable, i)
		}
		copies[i] = t.Clone()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for _, c := range copies {
		m.tables[c.Name] = memEntry{table: c, updatedAt: now}
	}
	return nil
}

// List describes every stored table, sorted by name
func (m *Memory) List(ctx context.Context) ([]contracts.TableInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contracts.TableInfo, 0, len(m.tables))
	for name, e := range m.tables {
		out = append(out, contracts.TableInfo{
			Name:      name,
			Rows:      e.table.Len(),
			Columns:   append([]contracts.Column(nil), e.table.Columns...),
			UpdatedAt: e.updatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
