// Package particles implements particle generators (§4.6, C7): definition-
// driven spawners that accumulate a fractional spawn count per tick and
// step each live particle through gravity, vector/sphere force, resistance,
// and line-bounce integration. Grounded on the teacher's internal/apu
// voice-channel model, which advances N independent per-voice envelopes off
// one shared sample clock; here the "voices" are particles and the shared
// clock is the generator's tick.
package particles

import (
	"math/rand"

	"github.com/skyjake/doomsday-core/internal/world"
)

// StageFlags are per-stage behavior bits.
type StageFlags uint32

const (
	StageDieTouch StageFlags = 1 << iota
	StageTouchAdvance
	StageWallTouchAdvance
	StageFlatTouchAdvance
)

// Stage is one immutable keyframe of a generator's particle lifecycle.
type Stage struct {
	Radius     world.Fixed
	Gravity    world.Fixed
	Resistance world.Fixed // momentum multiplier applied each tick, 0..FixedUnit
	Bounce     world.Fixed
	Spin       uint32 // BAM delta per tick

	VectorForceX, VectorForceY, VectorForceZ world.Fixed
	SphereForce                              world.Fixed // radial force magnitude at unit distance
	Tics                                      int

	Flags StageFlags
}

// SourceKind selects where newly spawned particles originate.
type SourceKind int

const (
	SourceUntriggered SourceKind = iota
	SourceMobj
	SourcePlane
)

// Definition is the immutable configuration of one generator, analogous to
// the source engine's ded-file generator record.
type Definition struct {
	Stages []Stage

	SpawnRate    world.Fixed // particles per tick, before multiplier/variance
	SpawnVariance world.Fixed // 0..FixedUnit, fraction randomized away

	MaxAge int // ticks; <0 means unlimited

	Source SourceKind
}

// Particle is one live instance spawned by a Generator.
type Particle struct {
	Stage int
	Tics  int

	X, Y, Z          world.Fixed
	MomX, MomY, MomZ world.Fixed
	Angle            uint32

	Sector int
	dead   bool
}

// Generator implements world.GeneratorState. Its Tick method is called by
// Arena's dispatch once per tick for every KindGenerator thinker.
type Generator struct {
	Def *Definition

	Age        int
	SpawnCount world.Fixed

	SourceMobj world.ThinkerID // valid when Def.Source == SourceMobj
	SourceTag  int             // sector tag, valid when Def.Source == SourcePlane

	CenterX, CenterY, CenterZ world.Fixed

	Particles []*Particle

	rng  *rand.Rand
	seed int64 // retained for Save; math/rand exposes no state snapshot

	// SubspaceLookup resolves (x,y) to a containing subspace/sector index;
	// wired in by session construction since Arena has no BSP of its own.
	SubspaceLookup func(x, y world.Fixed) (sector int, ok bool)

	// RandomSubspace returns a uniformly chosen subspace/sector index for
	// the plane-wide spawn's candidate rejection loop.
	RandomSubspace func(rng *rand.Rand) (sector int, ok bool)

	// RandomPointIn returns a uniformly chosen interior point of the given
	// sector for the plane-wide spawn's retry loop.
	RandomPointIn func(rng *rand.Rand, sector int) (x, y world.Fixed, ok bool)
}

// New creates a generator bound to def, seeded deterministically so replays
// (and save/restore) are reproducible given the same seed.
func New(def *Definition, seed int64, centerX, centerY, centerZ world.Fixed) *Generator {
	return &Generator{
		Def:     def,
		CenterX: centerX, CenterY: centerY, CenterZ: centerZ,
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Tick advances the generator and all its particles by one tick, and
// reports whether the generator itself should be removed (age expired).
// This satisfies world.GeneratorState.
func (g *Generator) Tick(arena *world.Arena) bool {
	if g.Def.MaxAge >= 0 && g.Age > g.Def.MaxAge {
		return true
	}
	g.Age++

	g.accumulateSpawns(arena)
	g.stepParticles(arena)
	return false
}

func (g *Generator) accumulateSpawns(arena *world.Arena) {
	variance := world.FixedUnit - g.Def.SpawnVariance.Mul(world.FixedFromInt(int(g.rng.Int31n(1<<15))) / (1 << 15))
	g.SpawnCount += g.Def.SpawnRate.Mul(variance)
	for g.SpawnCount >= world.FixedUnit {
		g.SpawnCount -= world.FixedUnit
		g.spawnOne(arena)
	}
}

// maxSubspaceRejections and maxInteriorRetries are the §4.6 plane-wide spawn
// retry budget: try up to 5 candidate subspaces, then up to 10 interior
// points within whichever one succeeds before giving up silently.
const (
	maxSubspaceRejections = 5
	maxInteriorRetries    = 10
)

func (g *Generator) spawnOne(arena *world.Arena) {
	var x, y, z world.Fixed
	var sector int

	switch g.Def.Source {
	case SourceMobj:
		t, ok := arena.Lookup(g.SourceMobj)
		if !ok || t.Mobj == nil {
			return // source mobj gone: stop spawning, keep running (§4.6)
		}
		x, y, z = t.Mobj.X, t.Mobj.Y, t.Mobj.Z
		sector = t.Mobj.Sector

	case SourcePlane:
		found := false
		if g.RandomSubspace != nil && g.RandomPointIn != nil {
			for i := 0; i < maxSubspaceRejections && !found; i++ {
				candidate, ok := g.RandomSubspace(g.rng)
				if !ok {
					continue
				}
				for j := 0; j < maxInteriorRetries; j++ {
					px, py, ok := g.RandomPointIn(g.rng, candidate)
					if ok {
						x, y, sector = px, py, candidate
						found = true
						break
					}
				}
			}
		}
		if !found {
			return // silent drop on exhausted retries, per §4.6/§9
		}
		if sec := sectorOf(arena, sector); sec != nil {
			z = sec.FloorHeight
		}

	default: // SourceUntriggered
		x, y, z = g.CenterX, g.CenterY, g.CenterZ
		if g.SubspaceLookup != nil {
			if s, ok := g.SubspaceLookup(x, y); ok {
				sector = s
			}
		}
	}

	g.Particles = append(g.Particles, &Particle{
		Stage: 0,
		Tics:  g.stageTics(0),
		X: x, Y: y, Z: z,
		Sector: sector,
	})
}

func (g *Generator) stageTics(stage int) int {
	if stage < 0 || stage >= len(g.Def.Stages) {
		return 0
	}
	return g.Def.Stages[stage].Tics
}

func sectorOf(arena *world.Arena, idx int) *world.Sector {
	if idx < 0 || idx >= len(arena.Sectors) {
		return nil
	}
	return &arena.Sectors[idx]
}

func (g *Generator) stepParticles(arena *world.Arena) {
	live := g.Particles[:0]
	for _, p := range g.Particles {
		g.stepOne(arena, p)
		if !p.dead {
			live = append(live, p)
		}
	}
	g.Particles = live
}

func (g *Generator) stepOne(arena *world.Arena, p *Particle) {
	if p.Tics > 0 {
		p.Tics--
	}
	if p.Tics <= 0 {
		p.Stage++
		if p.Stage >= len(g.Def.Stages) {
			p.dead = true
			return
		}
		p.Tics = g.stageTics(p.Stage)
	}

	stage := g.Def.Stages[p.Stage]
	p.MomZ -= stage.Gravity
	p.MomX += stage.VectorForceX
	p.MomY += stage.VectorForceY
	p.MomZ += stage.VectorForceZ

	if stage.SphereForce != 0 {
		g.applySphereForce(p, stage)
	}

	p.MomX = p.MomX.Mul(stage.Resistance)
	p.MomY = p.MomY.Mul(stage.Resistance)
	p.Angle += stage.Spin

	nx := p.X + p.MomX
	ny := p.Y + p.MomY
	if line, hit := firstCrossedLine(arena, p.X, p.Y, nx, ny); hit {
		switch {
		case stage.Flags&StageDieTouch != 0:
			p.dead = true
			return
		case stage.Flags&(StageWallTouchAdvance|StageTouchAdvance) != 0:
			g.forceAdvance(p)
			return
		default:
			bouncePlanarMomentum(p, line, stage.Bounce)
		}
	} else {
		p.X, p.Y = nx, ny
	}

	p.Z += p.MomZ
	if sec := sectorOf(arena, p.Sector); sec != nil {
		if p.Z < sec.FloorHeight {
			p.Z = sec.FloorHeight
			switch {
			case stage.Flags&StageDieTouch != 0:
				p.dead = true
				return
			case stage.Flags&(StageFlatTouchAdvance|StageTouchAdvance) != 0:
				g.forceAdvance(p)
				return
			default:
				p.MomZ = -p.MomZ.Mul(stage.Bounce)
			}
		} else if sec.CeilingIsSky && p.Z > sec.CeilingHeight {
			p.dead = true // lost in sky, §4.5/§4.6
			return
		} else if p.Z > sec.CeilingHeight {
			p.Z = sec.CeilingHeight
			p.MomZ = -p.MomZ.Mul(stage.Bounce)
		}
	}
}

// applySphereForce pulls or pushes a particle radially from the generator's
// center, with a perpendicular (axial cross-product) torque component per
// §4.6's "radial + axial cross-product torque".
func (g *Generator) applySphereForce(p *Particle, stage Stage) {
	dx := p.X - g.CenterX
	dy := p.Y - g.CenterY
	dist := (dx.Mul(dx) + dy.Mul(dy))
	if dist == 0 {
		return
	}
	// No inverse-distance falloff (and no sqrt): the force is the offset from
	// the center scaled by SphereForce, so it grows with distance; scale by
	// SphereForce directly and let resistance bound runaway growth, the
	// same trade-off the teacher's APU envelope step makes for exp decay.
	fx := stage.SphereForce.Mul(dx)
	fy := stage.SphereForce.Mul(dy)
	p.MomX += fx
	p.MomY += fy
	// axial torque: perpendicular component proportional to force magnitude
	p.MomX += -fy.Mul(stage.Spin2Factor())
	p.MomY += fx.Mul(stage.Spin2Factor())
}

// Spin2Factor derives a small torque coefficient from Spin so sphere-force
// particles orbit rather than moving in a straight radial line, without
// introducing a second tunable field.
func (s Stage) Spin2Factor() world.Fixed {
	return world.Fixed(s.Spin>>16) / 64
}

func (g *Generator) forceAdvance(p *Particle) {
	p.Tics = 0
}

func bouncePlanarMomentum(p *Particle, l *world.Line, bounce world.Fixed) {
	dx := l.V2X - l.V1X
	dy := l.V2Y - l.V1Y
	nx, ny := -dy, dx
	nlen2 := nx.Mul(nx) + ny.Mul(ny)
	if nlen2 == 0 {
		p.MomX, p.MomY = -p.MomX, -p.MomY
		return
	}
	dot := (p.MomX.Mul(nx) + p.MomY.Mul(ny)).Div(nlen2)
	p.MomX = (p.MomX - 2*dot.Mul(nx)).Mul(bounce)
	p.MomY = (p.MomY - 2*dot.Mul(ny)).Mul(bounce)
}

func firstCrossedLine(arena *world.Arena, ax, ay, bx, by world.Fixed) (*world.Line, bool) {
	for i := range arena.Lines {
		l := &arena.Lines[i]
		if segmentsIntersect(ax, ay, bx, by, l.V1X, l.V1Y, l.V2X, l.V2Y) {
			return l, true
		}
	}
	return nil, false
}

func segmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy world.Fixed) bool {
	d1 := cross(dx-cx, dy-cy, ax-cx, ay-cy)
	d2 := cross(dx-cx, dy-cy, bx-cx, by-cy)
	d3 := cross(bx-ax, by-ay, cx-ax, cy-ay)
	d4 := cross(bx-ax, by-ay, dx-ax, dy-ay)
	return ((d1 > 0) != (d2 > 0)) && ((d3 > 0) != (d4 > 0))
}

func cross(ax, ay, bx, by world.Fixed) world.Fixed {
	return ax.Mul(by) - ay.Mul(bx)
}
