package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/swipetrack/internal/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		offset   Vector
		velocity Vector
		want     domain.Direction
		ok       bool
	}{
		{"flick right", Vector{X: 30}, Vector{X: 600}, domain.DirectionRight, true},
		{"drag right", Vector{X: 101}, Vector{}, domain.DirectionRight, true},
		{"drag left", Vector{X: -150}, Vector{}, domain.DirectionLeft, true},
		{"flick left", Vector{X: 10}, Vector{X: -501}, domain.DirectionLeft, true},
		{"drag down", Vector{Y: 150}, Vector{}, domain.DirectionDown, true},
		{"drag up", Vector{Y: -101}, Vector{}, domain.DirectionUp, true},
		{"vertical wins over horizontal", Vector{X: 200, Y: -150}, Vector{X: 900}, domain.DirectionUp, true},
		{"exact threshold does not decide", Vector{X: 100, Y: 100}, Vector{X: 500}, "", false},
		{"small drag snaps back", Vector{X: 50}, Vector{X: 200}, "", false},
		{"vertical velocity alone never decides", Vector{Y: 20}, Vector{Y: 2000}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.offset, tt.velocity)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrackerSlowDrag(t *testing.T) {
	tr := NewTracker(10, 20)
	start := time.Unix(0, 0)

	tr.Press(10, 5, start)
	for i := 1; i <= 12; i++ {
		tr.Move(10+i, 5, start.Add(time.Duration(i)*200*time.Millisecond))
	}
	assert.Equal(t, Vector{X: 120, Y: 0}, tr.Offset())

	dir, ok := tr.Release(22, 5, start.Add(3*time.Second))
	assert.True(t, ok)
	assert.Equal(t, domain.DirectionRight, dir)
	assert.False(t, tr.Active())
}

func TestTrackerFlick(t *testing.T) {
	tr := NewTracker(10, 20)
	start := time.Unix(0, 0)

	tr.Press(40, 5, start)
	tr.Move(38, 5, start.Add(10*time.Millisecond))
	// 6 cells (60 units) in 50ms is 1200 units/s to the left
	dir, ok := tr.Release(34, 5, start.Add(50*time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, domain.DirectionLeft, dir)
}

func TestTrackerVertical(t *testing.T) {
	tr := NewTracker(0, 0)
	start := time.Unix(0, 0)
	tr.Press(10, 10, start)
	dir, ok := tr.Release(10, 15, start.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, domain.DirectionDown, dir)
}

func TestTrackerIgnoresEventsWithoutPress(t *testing.T) {
	tr := NewTracker(10, 20)
	tr.Move(50, 50, time.Now())
	_, ok := tr.Release(90, 50, time.Now())
	assert.False(t, ok)
	assert.Equal(t, Vector{}, tr.Offset())
}

func TestTrackerSnapBack(t *testing.T) {
	tr := NewTracker(10, 20)
	start := time.Unix(0, 0)
	tr.Press(10, 10, start)
	tr.Move(13, 10, start.Add(time.Second))
	_, ok := tr.Release(13, 10, start.Add(2*time.Second))
	assert.False(t, ok)
}
