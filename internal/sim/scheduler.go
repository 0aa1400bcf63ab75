// Package sim implements the thinker scheduler (§4.4/§5, C5): the per-tick
// driver that runs thinker advance, plane movers, particle generators, and
// ACS scripts in the ordering guarantee from §5, then performs the
// retain-sweep pass. Grounded on the teacher's
// nitro-core-dx/internal/clock.MasterClock, which drives CPU/PPU/APU off a
// single cycle counter via registered step callbacks; here the "cycle" is
// the game tick and the callbacks are the simulation phases instead of
// hardware components.
package sim

import (
	"github.com/skyjake/doomsday-core/internal/world"
)

// Scheduler drives one Arena's tick/sweep cycle and exposes the ordering
// guarantee from §5: network ingest → thinker advance → plane movers →
// particle step → ACS step → fix emission → snapshot publish. Since the
// source engine keeps movers/particles/scripts as thinkers in the same
// active list, Arena.Tick already interleaves them in spawn order (matching
// the original engine's single P_RunThinkers pass); Scheduler additionally
// exposes the named phase hooks below for callers (netsession, bias) that
// must run strictly before or after the thinker pass.
type Scheduler struct {
	Arena *world.Arena

	TickCount uint64

	// BeforeTick runs once per tick before thinkers advance (network
	// ingest). AfterTick runs once per tick after the sweep (fix emission,
	// bias update, snapshot publish).
	BeforeTick func()
	AfterTick  func()
}

// New creates a scheduler bound to arena.
func New(arena *world.Arena) *Scheduler {
	return &Scheduler{Arena: arena}
}

// Tick advances the simulation by exactly one sharp tick (§5: "tick
// boundaries are sharp, no fractional ticks").
func (s *Scheduler) Tick() {
	s.Arena.SetSharpTick(true)

	if s.BeforeTick != nil {
		s.BeforeTick()
	}

	s.Arena.Tick()
	s.Arena.Sweep()

	if s.AfterTick != nil {
		s.AfterTick()
	}

	s.TickCount++
	s.Arena.SetSharpTick(false)
}

// IsSharpTick reports whether a Tick() call is currently in progress.
func (s *Scheduler) IsSharpTick() bool { return s.Arena.IsSharpTick() }
