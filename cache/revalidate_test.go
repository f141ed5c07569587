package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRevalidateZeroValueIsUnset(t *testing.T) {
	var r Revalidate
	assert.True(t, r.IsZero())
	assert.False(t, r.Never())
	_, ok := r.Window()
	assert.False(t, ok)
	assert.Equal(t, "unset", r.String())
}

func TestRevalidateAfter(t *testing.T) {
	r := RevalidateAfter(5 * time.Minute)
	assert.False(t, r.IsZero())
	assert.False(t, r.Never())
	w, ok := r.Window()
	assert.True(t, ok)
	assert.Equal(t, 5*time.Minute, w)
	assert.Equal(t, "5m0s", r.String())
}

func TestRevalidateNever(t *testing.T) {
	r := RevalidateNever()
	assert.False(t, r.IsZero())
	assert.True(t, r.Never())
	_, ok := r.Window()
	assert.False(t, ok)
	assert.Equal(t, "never", r.String())
}

func TestIsStale(t *testing.T) {
	now := time.Now()
	e := Entry{Revalidate: time.Minute, StoredAt: now.Add(-2 * time.Minute)}

	assert.True(t, isStale(e, Revalidate{}, now))
	assert.False(t, isStale(e, RevalidateNever(), now))
	assert.True(t, isStale(e, RevalidateAfter(time.Second), now))
	assert.False(t, isStale(e, RevalidateAfter(time.Hour), now))

	fresh := Entry{Revalidate: time.Minute, StoredAt: now.Add(-time.Second)}
	assert.False(t, isStale(fresh, Revalidate{}, now))
}

func TestDefaultBackendRegistration(t *testing.T) {
	assert.Nil(t, Default())
	c := newTestInMemory(t)
	SetDefault(c)
	t.Cleanup(func() { SetDefault(nil) })
	assert.Equal(t, Backend(c), Default())
}
