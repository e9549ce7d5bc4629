package gesture

import (
	"time"

	"github.com/mmcdole/swipetrack/internal/domain"
)

// Decision thresholds: offset in drag units, velocity in units per second
const (
	OffsetThreshold   = 100
	VelocityThreshold = 500
)

// Vector is a 2D drag quantity. Positive Y points down.
type Vector struct {
	X, Y float64
}

// Resolve maps a released drag to a swipe direction. Vertical offset is
// checked first; a horizontal flick counts even with a short drag. Vertical
// velocity alone never decides. ok is false when the card should snap back.
func Resolve(offset, velocity Vector) (domain.Direction, bool) {
	switch {
	case offset.Y > OffsetThreshold:
		return domain.DirectionDown, true
	case offset.Y < -OffsetThreshold:
		return domain.DirectionUp, true
	case offset.X > OffsetThreshold || velocity.X > VelocityThreshold:
		return domain.DirectionRight, true
	case offset.X < -OffsetThreshold || velocity.X < -VelocityThreshold:
		return domain.DirectionLeft, true
	default:
		return "", false
	}
}

// Preview returns the direction the card is leaning toward mid-drag, used
// for the overlay label
func Preview(offset Vector) (domain.Direction, bool) {
	return Resolve(offset, Vector{})
}

// Default terminal cell size in drag units. Cells are roughly twice as
// tall as they are wide.
const (
	DefaultCellWidth  = 12.0
	DefaultCellHeight = 25.0
)

// velocityWindow bounds the samples used for release velocity
const velocityWindow = 100 * time.Millisecond

type sample struct {
	pos Vector
	at  time.Time
}

// Tracker turns mouse press/motion/release events in terminal cells into
// a drag offset and release velocity.
type Tracker struct {
	cellW, cellH float64
	active       bool
	origin       Vector
	current      Vector
	samples      []sample
}

// NewTracker creates a tracker. Non-positive sizes use the defaults.
func NewTracker(cellWidth, cellHeight float64) *Tracker {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	if cellHeight <= 0 {
		cellHeight = DefaultCellHeight
	}
	return &Tracker{cellW: cellWidth, cellH: cellHeight}
}

func (t *Tracker) toUnits(col, row int) Vector {
	return Vector{X: float64(col) * t.cellW, Y: float64(row) * t.cellH}
}

// Press starts a drag at a cell
func (t *Tracker) Press(col, row int, at time.Time) {
	p := t.toUnits(col, row)
	t.active = true
	t.origin = p
	t.current = p
	t.samples = append(t.samples[:0], sample{pos: p, at: at})
}

// Move records motion while dragging. Ignored when no drag is active.
func (t *Tracker) Move(col, row int, at time.Time) {
	if !t.active {
		return
	}
	t.current = t.toUnits(col, row)
	t.samples = append(t.samples, sample{pos: t.current, at: at})
	t.trim(at)
}

// Release ends the drag and resolves it. ok is false for no decision or
// when no drag was active.
func (t *Tracker) Release(col, row int, at time.Time) (domain.Direction, bool) {
	if !t.active {
		return "", false
	}
	t.Move(col, row, at)
	offset, velocity := t.Offset(), t.velocity()
	t.Cancel()
	return Resolve(offset, velocity)
}

// Cancel drops the active drag
func (t *Tracker) Cancel() {
	t.active = false
	t.origin, t.current = Vector{}, Vector{}
	t.samples = t.samples[:0]
}

// Active reports whether a drag is in progress
func (t *Tracker) Active() bool {
	return t.active
}

// Offset returns the current drag displacement
func (t *Tracker) Offset() Vector {
	if !t.active {
		return Vector{}
	}
	return Vector{X: t.current.X - t.origin.X, Y: t.current.Y - t.origin.Y}
}

func (t *Tracker) trim(now time.Time) {
	cut := 0
	for cut < len(t.samples)-1 && now.Sub(t.samples[cut].at) > velocityWindow {
		cut++
	}
	t.samples = t.samples[cut:]
}

func (t *Tracker) velocity() Vector {
	if len(t.samples) < 2 {
		return Vector{}
	}
	first, last := t.samples[0], t.samples[len(t.samples)-1]
	dt := last.at.Sub(first.at).Seconds()
	if dt <= 0 {
		return Vector{}
	}
	return Vector{
		X: (last.pos.X - first.pos.X) / dt,
		Y: (last.pos.Y - first.pos.Y) / dt,
	}
}
