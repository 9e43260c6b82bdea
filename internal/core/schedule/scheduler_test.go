package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicksFor(t *testing.T) {
	s := New(20 * time.Millisecond)
	assert.Equal(t, uint64(1), s.TicksFor(0))
	assert.Equal(t, uint64(1), s.TicksFor(5*time.Millisecond))
	assert.Equal(t, uint64(5), s.TicksFor(100*time.Millisecond))
	assert.Equal(t, uint64(6), s.TicksFor(101*time.Millisecond))
}

func TestAfterRunsOnDueTick(t *testing.T) {
	s := New(10 * time.Millisecond)
	var order []string

	s.After(30*time.Millisecond, func() { order = append(order, "b") })
	s.After(10*time.Millisecond, func() { order = append(order, "a") })
	s.After(30*time.Millisecond, func() { order = append(order, "c") })

	assert.Equal(t, 1, s.Advance())
	assert.Equal(t, []string{"a"}, order)
	assert.Equal(t, 0, s.Advance())
	assert.Equal(t, 2, s.Advance())
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, uint64(3), s.Now())
}

func TestTaskCanScheduleFollowUp(t *testing.T) {
	s := New(time.Millisecond)
	var ran []uint64
	s.After(0, func() {
		ran = append(ran, s.Now())
		s.After(0, func() { ran = append(ran, s.Now()) })
	})
	s.Advance()
	s.Advance()
	assert.Equal(t, []uint64{1, 2}, ran)
}

func TestCancel(t *testing.T) {
	s := New(time.Millisecond)
	fired := false
	h := s.After(time.Millisecond, func() { fired = true })
	assert.True(t, h.Pending())
	assert.True(t, s.Cancel(h))
	assert.False(t, s.Cancel(h))
	s.Advance()
	assert.False(t, fired)
	assert.False(t, s.Cancel(Handle{}))
}

func TestCancelAll(t *testing.T) {
	s := New(time.Millisecond)
	h := s.After(time.Millisecond, func() { t.Fatal("cancelled task ran") })
	s.After(2*time.Millisecond, func() { t.Fatal("cancelled task ran") })
	assert.Equal(t, 2, s.CancelAll())
	assert.False(t, h.Pending())
	s.Advance()
	s.Advance()
	assert.Equal(t, 0, s.Pending())
}
