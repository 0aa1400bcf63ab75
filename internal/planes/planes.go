// Package planes implements the four plane-mover state machines (§4.7, C8):
// Ceiling, Door, Floor, Plat. Each is keyed to one sector via
// sector.SpecialData and steps once per tick toward a target height,
// clamping on arrival. Grounded on the teacher's internal/ppu scroll-plane
// registers, which advance a target offset by a fixed step each frame and
// clamp/wrap at the boundary; generalized here from a 2D scroll offset to a
// 1D plane height with a richer state machine (wait phases, crush/repeat
// behavior) layered on top.
package planes

import "github.com/skyjake/doomsday-core/internal/world"

// Direction is the plane's current travel direction.
type Direction int

const (
	DirDown Direction = -1
	DirStill Direction = 0
	DirUp    Direction = 1
)

// trySpawn is the shared "no-op or reuse" gate from §4.7: if the sector
// already has a live mover it is returned with true and the caller reuses
// it; otherwise (nil, false) tells the caller to spawn a new one. A stale
// handle in SpecialData is cleared first.
func trySpawn(arena *world.Arena, sectorIdx int) (*world.Thinker, bool) {
	sec := &arena.Sectors[sectorIdx]
	if !sec.SpecialData.IsNil() {
		if t, ok := arena.Lookup(sec.SpecialData); ok {
			return t, true
		}
		sec.SpecialData = world.Nil // stale handle, fall through to spawn
	}
	return nil, false
}

func finish(arena *world.Arena, sectorIdx int) {
	arena.Sectors[sectorIdx].SpecialData = world.Nil
}

// ---- Ceiling ----

type CeilingKind int

const (
	CeilingLowerToFloor CeilingKind = iota
	CeilingRaiseToHighest
	CeilingCrushAndRaise
)

type Ceiling struct {
	Sector  int
	Kind    CeilingKind
	Speed   world.Fixed
	Target  world.Fixed
	Dir     Direction
	OnStep  func(sectorIdx int, dir Direction) // sound hook
	OnDone  func(sectorIdx int)
}

// SpawnCeiling creates (or reuses) a ceiling mover on sectorIdx. Per §4.7,
// a ceiling re-use keeps the existing mover running with its own target.
func SpawnCeiling(arena *world.Arena, sectorIdx int, kind CeilingKind, target, speed world.Fixed, dir Direction) *world.Thinker {
	if t, reused := trySpawn(arena, sectorIdx); reused {
		return t
	}
	c := &Ceiling{Sector: sectorIdx, Kind: kind, Speed: speed, Target: target, Dir: dir}
	th := arena.Spawn(world.KindCeiling)
	th.Mover = &world.PlaneMover{SectorTag: arena.Sectors[sectorIdx].Tag, State: c}
	arena.Sectors[sectorIdx].SpecialData = th.ID()
	return th
}

// Step satisfies world.PlaneMoverState.
func (c *Ceiling) Step(arena *world.Arena) bool {
	sec := &arena.Sectors[c.Sector]
	if c.OnStep != nil {
		c.OnStep(c.Sector, c.Dir)
	}

	switch c.Dir {
	case DirUp:
		sec.CeilingHeight += c.Speed
		if sec.CeilingHeight >= c.Target {
			sec.CeilingHeight = c.Target
			return c.arrive(arena)
		}
	case DirDown:
		sec.CeilingHeight -= c.Speed
		if sec.CeilingHeight <= c.Target {
			sec.CeilingHeight = c.Target
			return c.arrive(arena)
		}
	}
	return false
}

func (c *Ceiling) arrive(arena *world.Arena) bool {
	if c.Kind == CeilingCrushAndRaise {
		// reverse and keep running: crush-and-raise never self-removes
		// here. On reaching the low target, Target becomes the current
		// height, so the ceiling stays there, reversing each step, until
		// the caller resets Target to the high position.
		if c.Dir == DirDown {
			c.Dir = DirUp
			c.Target = arena.Sectors[c.Sector].CeilingHeight // caller resets true high target externally
		} else {
			c.Dir = DirDown
		}
		return false
	}
	if c.OnDone != nil {
		c.OnDone(c.Sector)
	}
	finish(arena, c.Sector)
	return true
}

// ---- Door ----

type DoorState int

const (
	DoorOpening DoorState = iota
	DoorWaitingOpen
	DoorClosing
)

type Door struct {
	Sector    int
	State     DoorState
	Speed     world.Fixed
	OpenZ     world.Fixed
	CloseZ    world.Fixed
	WaitTicks int
	wait      int
	OnStep    func(sectorIdx int, state DoorState)
	OnDone    func(sectorIdx int)
}

// SpawnDoor creates (or reuses) a door mover. Re-spawning a door already in
// motion reuses it rather than starting a second one (§4.7).
func SpawnDoor(arena *world.Arena, sectorIdx int, openZ, closeZ, speed world.Fixed, waitTicks int) *world.Thinker {
	if t, reused := trySpawn(arena, sectorIdx); reused {
		return t
	}
	d := &Door{Sector: sectorIdx, State: DoorOpening, Speed: speed, OpenZ: openZ, CloseZ: closeZ, WaitTicks: waitTicks}
	th := arena.Spawn(world.KindDoor)
	th.Mover = &world.PlaneMover{SectorTag: arena.Sectors[sectorIdx].Tag, State: d}
	arena.Sectors[sectorIdx].SpecialData = th.ID()
	return th
}

func (d *Door) Step(arena *world.Arena) bool {
	sec := &arena.Sectors[d.Sector]
	if d.OnStep != nil {
		d.OnStep(d.Sector, d.State)
	}

	switch d.State {
	case DoorOpening:
		sec.CeilingHeight += d.Speed
		if sec.CeilingHeight >= d.OpenZ {
			sec.CeilingHeight = d.OpenZ
			d.State = DoorWaitingOpen
			d.wait = d.WaitTicks
		}
	case DoorWaitingOpen:
		d.wait--
		if d.wait <= 0 {
			d.State = DoorClosing
		}
	case DoorClosing:
		sec.CeilingHeight -= d.Speed
		if sec.CeilingHeight <= d.CloseZ {
			sec.CeilingHeight = d.CloseZ
			if d.OnDone != nil {
				d.OnDone(d.Sector)
			}
			finish(arena, d.Sector)
			return true
		}
	}
	return false
}

// ---- Floor ----

type Floor struct {
	Sector int
	Speed  world.Fixed
	Target world.Fixed
	Dir    Direction
	OnStep func(sectorIdx int, dir Direction)
	OnDone func(sectorIdx int)
}

func SpawnFloor(arena *world.Arena, sectorIdx int, target, speed world.Fixed, dir Direction) *world.Thinker {
	if t, reused := trySpawn(arena, sectorIdx); reused {
		return t
	}
	f := &Floor{Sector: sectorIdx, Speed: speed, Target: target, Dir: dir}
	th := arena.Spawn(world.KindFloor)
	th.Mover = &world.PlaneMover{SectorTag: arena.Sectors[sectorIdx].Tag, State: f}
	arena.Sectors[sectorIdx].SpecialData = th.ID()
	return th
}

func (f *Floor) Step(arena *world.Arena) bool {
	sec := &arena.Sectors[f.Sector]
	if f.OnStep != nil {
		f.OnStep(f.Sector, f.Dir)
	}

	switch f.Dir {
	case DirUp:
		sec.FloorHeight += f.Speed
		if sec.FloorHeight >= f.Target {
			sec.FloorHeight = f.Target
			if f.OnDone != nil {
				f.OnDone(f.Sector)
			}
			finish(arena, f.Sector)
			return true
		}
	case DirDown:
		sec.FloorHeight -= f.Speed
		if sec.FloorHeight <= f.Target {
			sec.FloorHeight = f.Target
			if f.OnDone != nil {
				f.OnDone(f.Sector)
			}
			finish(arena, f.Sector)
			return true
		}
	}
	return false
}

// ---- Plat ----

type PlatState int

const (
	PlatUp PlatState = iota
	PlatDown
	PlatWaiting
)

type Plat struct {
	Sector    int
	State     PlatState
	Speed     world.Fixed
	Low, High world.Fixed
	WaitTicks int
	Repeat    bool
	wait      int
	OnStep    func(sectorIdx int, state PlatState)
	OnDone    func(sectorIdx int)
}

// SpawnPlat creates (or reuses) a plat mover. Per §4.7, re-triggering a
// plat already running reuses it.
func SpawnPlat(arena *world.Arena, sectorIdx int, low, high, speed world.Fixed, waitTicks int, start PlatState, repeat bool) *world.Thinker {
	if t, reused := trySpawn(arena, sectorIdx); reused {
		return t
	}
	p := &Plat{Sector: sectorIdx, State: start, Speed: speed, Low: low, High: high, WaitTicks: waitTicks, Repeat: repeat}
	th := arena.Spawn(world.KindPlat)
	th.Mover = &world.PlaneMover{SectorTag: arena.Sectors[sectorIdx].Tag, State: p}
	arena.Sectors[sectorIdx].SpecialData = th.ID()
	return th
}

func (p *Plat) Step(arena *world.Arena) bool {
	sec := &arena.Sectors[p.Sector]
	if p.OnStep != nil {
		p.OnStep(p.Sector, p.State)
	}

	switch p.State {
	case PlatUp:
		sec.FloorHeight += p.Speed
		if sec.FloorHeight >= p.High {
			sec.FloorHeight = p.High
			p.State = PlatWaiting
			p.wait = p.WaitTicks
		}
	case PlatDown:
		sec.FloorHeight -= p.Speed
		if sec.FloorHeight <= p.Low {
			sec.FloorHeight = p.Low
			if !p.Repeat {
				if p.OnDone != nil {
					p.OnDone(p.Sector)
				}
				finish(arena, p.Sector)
				return true
			}
			p.State = PlatWaiting
			p.wait = p.WaitTicks
		}
	case PlatWaiting:
		p.wait--
		if p.wait <= 0 {
			if sec.FloorHeight >= p.High {
				p.State = PlatDown
			} else {
				p.State = PlatUp
			}
		}
	}
	return false
}
