package planes

import "github.com/skyjake/doomsday-core/internal/world"

// The four save DTOs below omit OnStep/OnDone (sound hooks are function
// values, not serializable); the caller rewires them after Restore*, the
// same way Generator's subspace-lookup hooks are rewired post-load.

type CeilingSave struct {
	Sector int
	Kind   CeilingKind
	Speed  world.Fixed
	Target world.Fixed
	Dir    Direction
}

func (c *Ceiling) Save() CeilingSave {
	return CeilingSave{Sector: c.Sector, Kind: c.Kind, Speed: c.Speed, Target: c.Target, Dir: c.Dir}
}

// RestoreCeiling reconstructs and links a ceiling mover without going
// through the trySpawn reuse gate, since this is establishing the only
// copy of state that existed at save time.
func RestoreCeiling(arena *world.Arena, sv CeilingSave) *world.Thinker {
	c := &Ceiling{Sector: sv.Sector, Kind: sv.Kind, Speed: sv.Speed, Target: sv.Target, Dir: sv.Dir}
	th := arena.Spawn(world.KindCeiling)
	th.Mover = &world.PlaneMover{SectorTag: arena.Sectors[sv.Sector].Tag, State: c}
	arena.Sectors[sv.Sector].SpecialData = th.ID()
	return th
}

type DoorSave struct {
	Sector    int
	State     DoorState
	Speed     world.Fixed
	OpenZ     world.Fixed
	CloseZ    world.Fixed
	WaitTicks int
	Wait      int
}

func (d *Door) Save() DoorSave {
	return DoorSave{Sector: d.Sector, State: d.State, Speed: d.Speed, OpenZ: d.OpenZ, CloseZ: d.CloseZ, WaitTicks: d.WaitTicks, Wait: d.wait}
}

func RestoreDoor(arena *world.Arena, sv DoorSave) *world.Thinker {
	d := &Door{Sector: sv.Sector, State: sv.State, Speed: sv.Speed, OpenZ: sv.OpenZ, CloseZ: sv.CloseZ, WaitTicks: sv.WaitTicks, wait: sv.Wait}
	th := arena.Spawn(world.KindDoor)
	th.Mover = &world.PlaneMover{SectorTag: arena.Sectors[sv.Sector].Tag, State: d}
	arena.Sectors[sv.Sector].SpecialData = th.ID()
	return th
}

type FloorSave struct {
	Sector int
	Speed  world.Fixed
	Target world.Fixed
	Dir    Direction
}

func (f *Floor) Save() FloorSave {
	return FloorSave{Sector: f.Sector, Speed: f.Speed, Target: f.Target, Dir: f.Dir}
}

func RestoreFloor(arena *world.Arena, sv FloorSave) *world.Thinker {
	f := &Floor{Sector: sv.Sector, Speed: sv.Speed, Target: sv.Target, Dir: sv.Dir}
	th := arena.Spawn(world.KindFloor)
	th.Mover = &world.PlaneMover{SectorTag: arena.Sectors[sv.Sector].Tag, State: f}
	arena.Sectors[sv.Sector].SpecialData = th.ID()
	return th
}

type PlatSave struct {
	Sector    int
	State     PlatState
	Speed     world.Fixed
	Low, High world.Fixed
	WaitTicks int
	Repeat    bool
	Wait      int
}

func (p *Plat) Save() PlatSave {
	return PlatSave{Sector: p.Sector, State: p.State, Speed: p.Speed, Low: p.Low, High: p.High, WaitTicks: p.WaitTicks, Repeat: p.Repeat, Wait: p.wait}
}

func RestorePlat(arena *world.Arena, sv PlatSave) *world.Thinker {
	p := &Plat{Sector: sv.Sector, State: sv.State, Speed: sv.Speed, Low: sv.Low, High: sv.High, WaitTicks: sv.WaitTicks, Repeat: sv.Repeat, wait: sv.Wait}
	th := arena.Spawn(world.KindPlat)
	th.Mover = &world.PlaneMover{SectorTag: arena.Sectors[sv.Sector].Tag, State: p}
	arena.Sectors[sv.Sector].SpecialData = th.ID()
	return th
}
