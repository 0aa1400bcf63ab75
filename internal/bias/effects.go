package bias

import "github.com/skyjake/doomsday-core/internal/world"

// Flash, Strobe, and Glow are the three light thinkers from §3's
// ThinkerKind enum, each driving a sector's Light byte rather than the
// bias vertex array (they model fixture flicker, not bounced bias
// lighting). Grounded on the teacher's internal/ppu brightness-register
// stepper, generalized from one global brightness register to one
// Light byte per sector.

// Flash randomly flickers a sector's light between two levels.
type Flash struct {
	Sector  int
	Sectors *[]world.Sector
	Min, Max uint8
	MinTics, MaxTics int

	tics int
	rng  func(lo, hi int) int
}

func NewFlash(sectorIdx int, min, max uint8, minTics, maxTics int, rng func(lo, hi int) int) *Flash {
	return &Flash{Sector: sectorIdx, Min: min, Max: max, MinTics: minTics, MaxTics: maxTics, rng: rng}
}

func (f *Flash) Step(arena *world.Arena) bool {
	if f.Sector < 0 || f.Sector >= len(arena.Sectors) {
		return true
	}
	f.tics--
	if f.tics > 0 {
		return false
	}
	sec := &arena.Sectors[f.Sector]
	if sec.Light == f.Max {
		sec.Light = f.Min
	} else {
		sec.Light = f.Max
	}
	f.tics = f.randTics()
	return false
}

func (f *Flash) randTics() int {
	if f.rng == nil || f.MaxTics <= f.MinTics {
		return f.MinTics
	}
	return f.rng(f.MinTics, f.MaxTics)
}

// Strobe alternates between bright and dim on fixed periods.
type Strobe struct {
	Sector         int
	Bright, Dim    uint8
	BrightTics, DimTics int

	tics int
	lit  bool
}

func NewStrobe(sectorIdx int, bright, dim uint8, brightTics, dimTics int) *Strobe {
	return &Strobe{Sector: sectorIdx, Bright: bright, Dim: dim, BrightTics: brightTics, DimTics: dimTics, lit: true, tics: brightTics}
}

func (s *Strobe) Step(arena *world.Arena) bool {
	if s.Sector < 0 || s.Sector >= len(arena.Sectors) {
		return true
	}
	s.tics--
	if s.tics > 0 {
		return false
	}
	sec := &arena.Sectors[s.Sector]
	s.lit = !s.lit
	if s.lit {
		sec.Light = s.Bright
		s.tics = s.BrightTics
	} else {
		sec.Light = s.Dim
		s.tics = s.DimTics
	}
	return false
}

// Glow ramps a sector's light smoothly between two levels and back.
type Glow struct {
	Sector     int
	Min, Max   uint8
	StepAmount uint8
	rising     bool
}

func NewGlow(sectorIdx int, min, max, step uint8) *Glow {
	return &Glow{Sector: sectorIdx, Min: min, Max: max, StepAmount: step, rising: true}
}

// Step satisfies world.LightFXState.
func (g *Glow) Step(arena *world.Arena) bool {
	if g.Sector < 0 || g.Sector >= len(arena.Sectors) {
		return true
	}
	sec := &arena.Sectors[g.Sector]
	if g.rising {
		if int(sec.Light)+int(g.StepAmount) >= int(g.Max) {
			sec.Light = g.Max
			g.rising = false
		} else {
			sec.Light += g.StepAmount
		}
	} else {
		if int(sec.Light)-int(g.StepAmount) <= int(g.Min) {
			sec.Light = g.Min
			g.rising = true
		} else {
			sec.Light -= g.StepAmount
		}
	}
	return false
}
