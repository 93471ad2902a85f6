package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/logging"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// memSync keeps rows per table and user in memory.
type memSync struct {
	mu    sync.Mutex
	rows  map[string]map[string]fieldmap.Row
	since *time.Time
	err   error
	panic bool
}

func newMemSync() *memSync {
	return &memSync{rows: map[string]map[string]fieldmap.Row{}}
}

func (m *memSync) Select(ctx context.Context, userID, table string, since *time.Time) ([]fieldmap.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panic {
		panic("select exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	m.since = since
	var out []fieldmap.Row
	for _, r := range m.rows[table] {
		if r["user_id"] == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memSync) Upsert(ctx context.Context, userID, table string, row fieldmap.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.rows[table] == nil {
		m.rows[table] = map[string]fieldmap.Row{}
	}
	id, _ := row["id"].(string)
	if existing, ok := m.rows[table][id]; ok && existing["user_id"] != userID {
		return common.ErrorForbidden
	}
	stored := fieldmap.Row{}
	for k, v := range row {
		stored[k] = v
	}
	stored["user_id"] = userID
	m.rows[table][id] = stored
	return nil
}

func (m *memSync) Delete(ctx context.Context, userID, table string, row fieldmap.Row) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	id, _ := row["id"].(string)
	stored, ok := m.rows[table][id]
	if !ok || stored["user_id"] != userID {
		return false, nil
	}
	stored["deleted_at"] = row["deleted_at"]
	stored["updated_at"] = row["updated_at"]
	return true, nil
}
