// Package gpio provides the discrete output lines driven by emulated
// devices: chip-selects and interrupt requests.
package gpio

import (
	"log"
)

// Line is a single wire. It remembers its level and queues every level
// change until drained.
type Line struct {
	Name      string          // Name used in verbose logs.
	ActiveLow bool            // Asserted when driven low.
	Verbose   bool            // If set, logs level changes.
	Notify    func(high bool) // Called on every level change, if set.
	Edges     []bool          // Queued levels, oldest first.

	high bool
	sets int
}

// NewLine creates a line at its idle (deasserted) level.
func NewLine(name string, activeLow bool) (line *Line) {
	line = &Line{
		Name:      name,
		ActiveLow: activeLow,
		high:      activeLow,
	}
	return
}

// SetLevel drives the line. Only level changes are queued.
func (line *Line) SetLevel(high bool) {
	line.sets++
	if high == line.high {
		return
	}

	line.high = high
	line.Edges = append(line.Edges, high)

	if line.Verbose {
		log.Printf("gpio: %v %v", line.Name, levelName(high))
	}

	if line.Notify != nil {
		line.Notify(high)
	}
}

// High returns the current level.
func (line *Line) High() bool {
	return line.high
}

// Asserted returns the logical state of the line.
func (line *Line) Asserted() bool {
	return line.high != line.ActiveLow
}

// Sets returns the number of times the line was driven, changed or not.
func (line *Line) Sets() int {
	return line.sets
}

// Next pops the oldest queued level.
func (line *Line) Next() (high bool, ok bool) {
	if len(line.Edges) > 0 {
		ok = true
		high = line.Edges[0]
		line.Edges = line.Edges[1:]
	}
	return
}

// Reset drops the queued edges and counters, keeping the level.
func (line *Line) Reset() {
	line.Edges = nil
	line.sets = 0
}

func levelName(high bool) string {
	if high {
		return "high"
	}
	return "low"
}
