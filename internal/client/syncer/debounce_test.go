package syncer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fireRecorder struct {
	mu    sync.Mutex
	users []string
	fired chan struct{}
}

func newFireRecorder() *fireRecorder {
	return &fireRecorder{fired: make(chan struct{}, 10)}
}

func (r *fireRecorder) fire(userID string) {
	r.mu.Lock()
	r.users = append(r.users, userID)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *fireRecorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.users...)
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	rec := newFireRecorder()
	d := NewDebouncer(30*time.Millisecond, rec.fire)
	defer d.Close()

	for range 5 {
		d.TriggerDebounced("user-1")
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-rec.fired:
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []string{"user-1"}, rec.calls())
}

func TestDebouncer_CancelPending(t *testing.T) {
	rec := newFireRecorder()
	d := NewDebouncer(30*time.Millisecond, rec.fire)
	defer d.Close()

	assert.False(t, d.CancelPending(), "nothing scheduled yet")

	d.Schedule("user-1")
	require.True(t, d.CancelPending())

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.calls())
}

func TestDebouncer_CloseStopsFurtherCalls(t *testing.T) {
	rec := newFireRecorder()
	d := NewDebouncer(20*time.Millisecond, rec.fire)

	d.Schedule("user-1")
	d.Close()
	d.Schedule("user-1")

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.calls())
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0, func(string) {})
	assert.Equal(t, DefaultDebounce, d.delay)
}
