package bias

import "github.com/skyjake/doomsday-core/internal/world"

// Flash's Sectors pointer is an alias value, not serializable; the caller
// rewires it after RestoreFlash, as with the plane movers' OnStep/OnDone
// hooks. The rng hook is not saved either: RestoreFlash takes it as a
// parameter.

type FlashSave struct {
	Sector           int
	Min, Max         uint8
	MinTics, MaxTics int
	Tics             int
}

func (f *Flash) Save() FlashSave {
	return FlashSave{Sector: f.Sector, Min: f.Min, Max: f.Max, MinTics: f.MinTics, MaxTics: f.MaxTics, Tics: f.tics}
}

func RestoreFlash(arena *world.Arena, sv FlashSave, rng func(lo, hi int) int) *world.Thinker {
	f := &Flash{Sector: sv.Sector, Min: sv.Min, Max: sv.Max, MinTics: sv.MinTics, MaxTics: sv.MaxTics, tics: sv.Tics, rng: rng}
	th := arena.Spawn(world.KindFlash)
	th.Light = &world.LightFX{SectorTag: arena.Sectors[sv.Sector].Tag, State: f}
	return th
}

type StrobeSave struct {
	Sector              int
	Bright, Dim         uint8
	BrightTics, DimTics int
	Tics                int
	Lit                 bool
}

func (s *Strobe) Save() StrobeSave {
	return StrobeSave{Sector: s.Sector, Bright: s.Bright, Dim: s.Dim, BrightTics: s.BrightTics, DimTics: s.DimTics, Tics: s.tics, Lit: s.lit}
}

func RestoreStrobe(arena *world.Arena, sv StrobeSave) *world.Thinker {
	s := &Strobe{Sector: sv.Sector, Bright: sv.Bright, Dim: sv.Dim, BrightTics: sv.BrightTics, DimTics: sv.DimTics, tics: sv.Tics, lit: sv.Lit}
	th := arena.Spawn(world.KindStrobe)
	th.Light = &world.LightFX{SectorTag: arena.Sectors[sv.Sector].Tag, State: s}
	return th
}

type GlowSave struct {
	Sector     int
	Min, Max   uint8
	StepAmount uint8
	Rising     bool
}

func (g *Glow) Save() GlowSave {
	return GlowSave{Sector: g.Sector, Min: g.Min, Max: g.Max, StepAmount: g.StepAmount, Rising: g.rising}
}

func RestoreGlow(arena *world.Arena, sv GlowSave) *world.Thinker {
	g := &Glow{Sector: sv.Sector, Min: sv.Min, Max: sv.Max, StepAmount: sv.StepAmount, rising: sv.Rising}
	th := arena.Spawn(world.KindGlow)
	th.Light = &world.LightFX{SectorTag: arena.Sectors[sv.Sector].Tag, State: g}
	return th
}
