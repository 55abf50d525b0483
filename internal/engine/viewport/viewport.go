// Package viewport tracks the size of the rendering area and fans resize
// events out to registered handlers.
package viewport

import (
	"go.uber.org/zap"

	"github.com/Faultbox/organism/internal/logger"
)

// Viewport is an immutable snapshot of the rendering area in pixels.
type Viewport struct {
	Width  int
	Height int
}

// AspectRatio returns Width/Height, or 1.0 when the height is not measurable.
func (v Viewport) AspectRatio() float64 {
	if v.Height <= 0 {
		return 1.0
	}
	return float64(v.Width) / float64(v.Height)
}

// SizeSource measures the live rendering area. ok is false when the area
// has not been laid out yet.
type SizeSource interface {
	RenderingAreaSize() (width, height int, ok bool)
}

// Handler receives the viewport snapshot of one resize event.
type Handler func(Viewport)

type subscription struct {
	id      uint64
	handler Handler
}

// Tracker is the single reader of the rendering area size.
//
// All calls happen on the render thread; the tracker is not safe for
// concurrent use.
type Tracker struct {
	source SizeSource
	subs   []subscription
	nextID uint64
}

// NewTracker creates a tracker reading from source.
func NewTracker(source SizeSource) *Tracker {
	return &Tracker{source: source}
}

// Current measures the rendering area. An unmeasurable area yields the
// zero Viewport, whose aspect ratio is 1.0.
func (t *Tracker) Current() Viewport {
	w, h, ok := t.source.RenderingAreaSize()
	if !ok || w < 0 || h < 0 {
		return Viewport{}
	}
	return Viewport{Width: w, Height: h}
}

// OnResize registers h for every subsequent resize event. The returned
// function unregisters it, taking effect even within an event already being
// delivered; calling it more than once is a no-op.
func (t *Tracker) OnResize(h Handler) (dispose func()) {
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscription{id: id, handler: h})

	return func() {
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// Handlers returns the number of registered handlers.
func (t *Tracker) Handlers() int {
	return len(t.subs)
}

// Notify is called by the windowing layer when the window changed size.
// The area is measured once and the same snapshot is pushed to every
// handler in registration order.
func (t *Tracker) Notify() {
	vp := t.Current()
	logger.Debug("viewport resized",
		zap.Int("width", vp.Width),
		zap.Int("height", vp.Height),
		zap.Float64("aspect", vp.AspectRatio()),
	)

	// Handlers may dispose themselves or others while running. A handler
	// disposed earlier in this event is skipped.
	subs := append([]subscription(nil), t.subs...)
	for _, s := range subs {
		if !t.live(s.id) {
			continue
		}
		s.handler(vp)
	}
}

func (t *Tracker) live(id uint64) bool {
	for _, s := range t.subs {
		if s.id == id {
			return true
		}
	}
	return false
}
