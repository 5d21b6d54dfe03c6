package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_RunsDueCallbacksInOrder(t *testing.T) {
	s := NewManualScheduler()
	var got []string
	s.AfterFunc(30*time.Millisecond, func() { got = append(got, "late") })
	s.AfterFunc(10*time.Millisecond, func() { got = append(got, "early") })
	s.AfterFunc(10*time.Millisecond, func() { got = append(got, "early2") })

	s.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"early", "early2"}, got)
	assert.Equal(t, 1, s.Pending())

	s.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"early", "early2", "late"}, got)
	assert.Equal(t, 0, s.Pending())
}

func TestManualScheduler_Stop(t *testing.T) {
	s := NewManualScheduler()
	var fired bool
	timer := s.AfterFunc(time.Millisecond, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports nothing pending")

	s.Advance(time.Second)
	assert.False(t, fired)
}

func TestManualScheduler_StopAfterFire(t *testing.T) {
	s := NewManualScheduler()
	timer := s.AfterFunc(0, func() {})

	s.Advance(0)

	assert.False(t, timer.Stop())
}

func TestManualScheduler_CallbackMaySchedule(t *testing.T) {
	s := NewManualScheduler()
	var n int
	s.AfterFunc(time.Millisecond, func() {
		n++
		s.AfterFunc(time.Millisecond, func() { n++ })
	})

	s.Advance(time.Millisecond)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Pending())

	s.Advance(time.Millisecond)
	assert.Equal(t, 2, n)
}
