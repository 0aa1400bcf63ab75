// Package physics implements mobj physics (§4.5, C6): XY integration with
// line-cross wall bounce, friction, Z integration with plane clamping and
// bounce, and the fall-forward melee thrust and auto-weapon-change policies.
// Grounded on the teacher's per-tick step idiom (cpu.CPU.StepCPU /
// apu.APU.StepAPU), generalized from instruction/sample stepping to mobj
// integration, and wired into world.Arena the same way those steppers are
// wired into clock.MasterClock.
package physics

import (
	"github.com/skyjake/doomsday-core/internal/world"
)

// Tuning constants from §4.5.
const (
	WalkstopThreshold      world.Fixed = 256          // ~0.004 map unit in 16.16
	DropoffMomentumThresh  world.Fixed = 1 << 16 / 4 // 0.25
	FrictionNormal         world.Fixed = 0xE800      // ~0.90625
	FrictionLow            world.Fixed = 0xF900      // icy, ~0.97
	FrictionFly            world.Fixed = 0xEB00      // flying, ~0.918
	FallForwardDamageLimit              = 40
	FallForwardHeightLimit world.Fixed = 64 << 16
)

// Engine holds the geometry/gravity context physics needs beyond a single
// mobj, and is the thing whose Step method is registered as
// world.Arena.MobjStep.
type Engine struct {
	Arena   *world.Arena
	Gravity world.Fixed // per-tick downward momentum delta, positive
}

// New creates a physics engine bound to arena with the default gravity.
func New(arena *world.Arena, gravity world.Fixed) *Engine {
	return &Engine{Arena: arena, Gravity: gravity}
}

// Step performs one tick of mobj physics. It is registered as
// world.Arena.MobjStep by the session wiring.
func (e *Engine) Step(arena *world.Arena, m *world.Mobj) {
	e.stepXY(arena, m)
	e.stepZ(arena, m)
}

func (e *Engine) stepXY(arena *world.Arena, m *world.Mobj) {
	if m.MomX == 0 && m.MomY == 0 {
		return
	}

	nx := m.X + m.MomX
	ny := m.Y + m.MomY

	if line, hit := e.firstCrossedLine(arena, m, nx, ny); hit {
		e.resolveLineCross(arena, m, line)
	} else {
		m.X, m.Y = nx, ny
	}

	e.applyFriction(arena, m)
}

// firstCrossedLine finds a line whose segment the mobj's motion from
// (m.X,m.Y) to (nx,ny) crosses, using a simple segment-intersection test.
// Real BSP blockmap traversal is an optimization the source engine needs
// for scale; a direct scan is behavior-equivalent for the core's contract.
func (e *Engine) firstCrossedLine(arena *world.Arena, m *world.Mobj, nx, ny world.Fixed) (*world.Line, bool) {
	for i := range arena.Lines {
		l := &arena.Lines[i]
		if segmentsIntersect(m.X, m.Y, nx, ny, l.V1X, l.V1Y, l.V2X, l.V2Y) {
			return l, true
		}
	}
	return nil, false
}

func (e *Engine) resolveLineCross(arena *world.Arena, m *world.Mobj, l *world.Line) {
	if l.OneSided() {
		e.bounceOffWall(m, l)
		return
	}

	front := &arena.Sectors[l.Front]
	back := &arena.Sectors[l.Back]
	lo, hi := world.Opening(front, back)
	if m.Z < lo || m.Z+m.Info.Height > hi {
		e.bounceOffWall(m, l)
		return
	}

	// Opening fits: pass through, advance and let the caller re-resolve the
	// containing subspace/sector (tmcross in the source's terms).
	m.X += m.MomX
	m.Y += m.MomY
	m.Sector = l.Back
	if m.MomX == 0 { // crossed via the front side moving backward
		m.Sector = l.Front
	}
}

// bounceOffWall reflects momentum across the line normal scaled by the
// mobj's bounce factor and advances to (approximately) the contact point,
// matching Testable Property 6 / Scenario B.
func (e *Engine) bounceOffWall(m *world.Mobj, l *world.Line) {
	nx, ny := l.Normal()
	nlen2 := nx.Mul(nx) + ny.Mul(ny)
	if nlen2 == 0 {
		m.MomX, m.MomY = -m.MomX, -m.MomY
		return
	}

	// Advance to just short of the contact point along the pre-bounce motion.
	ex, ey := l.V2X-l.V1X, l.V2Y-l.V1Y
	if denom := cross(m.MomX, m.MomY, ex, ey); denom != 0 {
		t := cross(l.V1X-m.X, l.V1Y-m.Y, ex, ey).Div(denom) - 1
		m.X += m.MomX.Mul(t)
		m.Y += m.MomY.Mul(t)
	}

	dot := (m.MomX.Mul(nx) + m.MomY.Mul(ny)).Div(nlen2)
	rx := m.MomX - 2*dot.Mul(nx)
	ry := m.MomY - 2*dot.Mul(ny)

	bounce := world.FixedUnit
	if m.Info != nil {
		bounce = m.Info.BounceFactor
	}
	m.MomX = rx.Mul(bounce)
	m.MomY = ry.Mul(bounce)
}

// applyFriction zeroes horizontal momentum below the walkstop threshold,
// else scales it by the terrain friction of the mobj's current sector,
// except for sliding corpses (§4.5) which keep their momentum above the
// dropoff threshold so they can slide off ledges.
func (e *Engine) applyFriction(arena *world.Arena, m *world.Mobj) {
	speed := m.MomX.Abs() + m.MomY.Abs()
	if speed == 0 {
		return
	}

	isSlidingCorpse := m.Flags.Has(world.MFCorpse) && speed > DropoffMomentumThresh
	if isSlidingCorpse {
		return
	}

	if speed < WalkstopThreshold {
		m.MomX, m.MomY = 0, 0
		return
	}

	friction := FrictionNormal
	if m.Sector >= 0 && m.Sector < len(arena.Sectors) {
		switch arena.Sectors[m.Sector].Special {
		case SectorSpecialIcy:
			friction = FrictionLow
		case SectorSpecialFlying:
			friction = FrictionFly
		}
	}
	m.MomX = m.MomX.Mul(friction)
	m.MomY = m.MomY.Mul(friction)
}

// Sector specials consulted by applyFriction; a small, explicit subset —
// the full special table belongs to the definition-file layer out of scope
// per spec.md §1.
const (
	SectorSpecialNone = iota
	SectorSpecialIcy
	SectorSpecialFlying
)

func (e *Engine) stepZ(arena *world.Arena, m *world.Mobj) {
	if !m.Flags.Has(world.MFNoGravity) {
		m.MomZ -= e.Gravity
	}
	m.Z += m.MomZ

	if m.Sector < 0 || m.Sector >= len(arena.Sectors) {
		return
	}
	sec := &arena.Sectors[m.Sector]

	// §4.5/Testable Property 7 clamp the Z extent by hard_radius on both
	// ends, not by the full sprite height.
	floor := sec.FloorHeight + m.HardRadius()
	ceil := sec.CeilingHeight - m.HardRadius()

	if m.Z < floor {
		m.Z = floor
		e.bounceZ(m)
	} else if m.Z > ceil {
		m.Z = ceil
		e.bounceZ(m)
	}
}

// bounceZ multiplies momz by -bounce and, if the object is plane-flat and
// momentum settles to zero, pins Z to a sentinel meaning "use plane
// height" per §4.5.
func (e *Engine) bounceZ(m *world.Mobj) {
	bounce := world.FixedUnit
	if m.Info != nil {
		bounce = m.Info.BounceFactor
	}
	m.MomZ = -m.MomZ.Mul(bounce)

	if m.MomZ == 0 && m.Flags.Has(world.MFFloat) == false {
		if m.Z <= 0 {
			m.Z = world.MinZSentinel
		} else {
			m.Z = world.MaxZSentinel
		}
	}
}

// segmentsIntersect is a standard 2D segment-segment intersection test.
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
