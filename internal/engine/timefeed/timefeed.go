// Package timefeed accumulates frame deltas into the elapsed-time uniform.
package timefeed

import (
	"fmt"
	gomath "math"
)

// Slot is the scalar the organism shader reads its clock from.
const Slot = "time"

// ScalarSink receives scalar uniform values. UpdateScalar reports false
// when the sink has no slot with that name.
type ScalarSink interface {
	UpdateScalar(name string, value float32) bool
}

// TimeFeed owns the elapsed-time accumulator, in milliseconds.
// The value never decreases and is never reset.
type TimeFeed struct {
	sink    ScalarSink
	slot    string
	elapsed float64
	ticks   uint64
}

// New binds a feed to a slot of sink and pushes the initial value of 0.
func New(sink ScalarSink, slot string) (*TimeFeed, error) {
	if !sink.UpdateScalar(slot, 0) {
		return nil, fmt.Errorf("timefeed: uniform slot %q not declared", slot)
	}
	return &TimeFeed{sink: sink, slot: slot}, nil
}

// Tick adds one frame's delta and pushes the new total. Negative and NaN
// deltas count as zero.
func (f *TimeFeed) Tick(deltaMs float64) {
	if deltaMs > 0 && !gomath.IsInf(deltaMs, 1) {
		f.elapsed += deltaMs
	}
	f.ticks++
	f.sink.UpdateScalar(f.slot, float32(f.elapsed))
}

// CurrentValue returns the elapsed milliseconds.
func (f *TimeFeed) CurrentValue() float64 {
	return f.elapsed
}

// Ticks returns how many frames have been fed.
func (f *TimeFeed) Ticks() uint64 {
	return f.ticks
}
