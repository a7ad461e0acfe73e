package query

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, q)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDebouncer_OnlyLastQueryFires(t *testing.T) {
	var r recorder
	d := NewDebouncer(30*time.Millisecond, r.record)
	defer d.Stop()

	d.Trigger("r")
	d.Trigger("re")
	d.Trigger("rea")

	require.Eventually(t, func() bool { return len(r.get()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"rea"}, r.get())
}

func TestDebouncer_BlankQueryDeliversImmediately(t *testing.T) {
	var r recorder
	d := NewDebouncer(time.Hour, r.record)
	defer d.Stop()

	d.Trigger("react")
	d.Trigger("   ")

	// Delivered synchronously, and the pending "react" search is gone.
	assert.Equal(t, []string{""}, r.get())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var r recorder
	d := NewDebouncer(20*time.Millisecond, r.record)

	d.Trigger("react")
	d.Stop()
	d.Trigger("vue")
	d.Trigger("")

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, r.get())
}

func TestDebouncer_SeparateBurstsFireSeparately(t *testing.T) {
	var r recorder
	d := NewDebouncer(20*time.Millisecond, r.record)
	defer d.Stop()

	d.Trigger("go")
	require.Eventually(t, func() bool { return len(r.get()) == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger("rust")
	require.Eventually(t, func() bool { return len(r.get()) == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"go", "rust"}, r.get())
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0, func(string) {})
	assert.Equal(t, DefaultDebounce, d.Delay())
	assert.Equal(t, 500*time.Millisecond, DefaultDebounce)
}

func TestDebouncer_Flush(t *testing.T) {
	var r recorder
	d := NewDebouncer(time.Hour, r.record)
	defer d.Stop()

	assert.False(t, d.Flush(), "nothing pending")

	d.Trigger("go")
	d.Trigger("golang")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"golang"}, r.get())

	assert.False(t, d.Flush(), "flushed search is not repeated")
}
