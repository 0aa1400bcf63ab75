// Package bias implements the light bias engine (§4.8, C9): per-surface
// bias surfaces holding per-vertex illumination, a cached affect-set of
// nearby light sources, and the flash/strobe/glow light-effect thinkers
// that ride on top of it. Grounded on the teacher's internal/ppu palette
// and per-scanline brightness computation, which recomputes a small cached
// working set (palette indices in view) from a larger global table only
// when a dirty flag says the source data changed; generalized here from a
// palette cache to a per-surface affecting-lights cache.
package bias

import "github.com/skyjake/doomsday-core/internal/world"

// MaxBiasAffected bounds the cached affect-set per surface. A package-level
// var rather than a const so internal/config can apply a loaded override at
// startup, same as the teacher's devkit settings overriding compiled-in
// layout defaults.
var MaxBiasAffected = 6

// IgnoreLimit discards sources too weak/far to matter.
var IgnoreLimit world.Fixed = world.FixedUnit / 100

// LightSpeed is the number of ticks eval_point interpolates over to avoid
// popping when a surface's lighting changes.
var LightSpeed = 5

// Color is a simple RGB illumination color in fixed-point 0..FixedUnit
// channels.
type Color struct {
	R, G, B world.Fixed
}

func (c Color) Scale(f world.Fixed) Color {
	return Color{c.R.Mul(f), c.G.Mul(f), c.B.Mul(f)}
}

func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Source is one bias light source: a point with intensity/color that can
// move or change intensity over time.
type Source struct {
	ID        int
	X, Y, Z   world.Fixed
	NX, NY, NZ world.Fixed // source-facing normal, for the dot-product term
	Intensity world.Fixed
	Color     Color

	// changeGen is set by Engine.NoteChanged whenever position/intensity/
	// color changes, and consulted by surfaces to decide whether to recompute.
	changeGen uint64
}

// Vertex is one illumination record on a bias surface.
type Vertex struct {
	X, Y, Z world.Fixed
	NX, NY, NZ world.Fixed

	current Color
	target  Color
	ticksLeft int
}

// Surface is a bias surface: a polygon's worth of vertices plus its cached
// affect-set.
type Surface struct {
	Vertices []Vertex

	affecting    []int // indices into Engine.Sources
	lastSeenGen  uint64

	// LOS is an optional sight-test hook: true if point can see source.
	// Nil means "always visible" (LOS test disabled for this surface).
	LOS func(px, py, pz, sx, sy, sz world.Fixed) bool
}

// Engine owns every light source and surface for one map, and the global
// change tracker that lets update_affected skip surfaces unaffected by the
// most recent light change (§4.8).
type Engine struct {
	Sources  []*Source
	Surfaces []*Surface

	changeGen uint64

	// AmbientAt samples a coarse ambient-light grid at a point (§4.15
	// supplement, rend_bias.c); nil means zero ambient contribution.
	AmbientAt func(x, y, z world.Fixed) Color
}

func New() *Engine { return &Engine{} }

// NoteChanged flags that src's position, intensity, or color changed,
// bumping the global tracker so every surface whose affect-set includes
// src recomputes on its next UpdateAffected call.
func (e *Engine) NoteChanged(src *Source) {
	e.changeGen++
	src.changeGen = e.changeGen
}

// UpdateAffected recomputes surf's affect-set if any of its currently
// cached sources changed since the last recompute, implementing
// update_affected from §4.8: for each source, evaluate the minimum 2D
// distance to the surface's footprint and the source-normal dot product;
// drop sources below IgnoreLimit; keep the top MaxBiasAffected by
// intensity/distance, evicting the weakest on overflow.
func (e *Engine) UpdateAffected(surf *Surface) {
	dirty := surf.lastSeenGen == 0
	for _, idx := range surf.affecting {
		if idx < len(e.Sources) && e.Sources[idx].changeGen > surf.lastSeenGen {
			dirty = true
			break
		}
	}
	if !dirty && len(surf.affecting) > 0 {
		return
	}

	type scored struct {
		idx   int
		score world.Fixed
	}
	var candidates []scored
	for i, src := range e.Sources {
		dist := minDistanceToFootprint(surf, src)
		score := world.MaxZSentinel // coincident point gets max weight
		if dist > 0 {
			score = src.Intensity.Div(dist)
		}
		if score < IgnoreLimit {
			continue
		}
		candidates = append(candidates, scored{i, score})
	}

	// Keep the top MaxBiasAffected by score, simple insertion since the set
	// is small.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].score > candidates[j-1].score; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	if len(candidates) > MaxBiasAffected {
		candidates = candidates[:MaxBiasAffected]
	}

	surf.affecting = surf.affecting[:0]
	for _, c := range candidates {
		surf.affecting = append(surf.affecting, c.idx)
	}
	surf.lastSeenGen = e.changeGen
}

// minDistanceToFootprint approximates the minimum 2D distance from a
// source to the surface's vertex footprint (§4.8); a full point-in-polygon
// distance isn't needed for the bias weighting, only a representative
// closest-vertex distance is.
func minDistanceToFootprint(surf *Surface, src *Source) world.Fixed {
	if len(surf.Vertices) == 0 {
		return world.MaxZSentinel
	}
	best := world.MaxZSentinel
	for _, v := range surf.Vertices {
		dx := v.X - src.X
		dy := v.Y - src.Y
		d := dx.Abs() + dy.Abs() // Manhattan distance stands in for a sqrt
		if d < best {
			best = d
		}
	}
	return best
}

// EvalPoint computes eval_point from §4.8 for one vertex against surf's
// current affect-set: sum per-source color*intensity/distance*max(0,
// normal·light_dir), gated by an optional LOS test, plus the ambient term,
// interpolated over LightSpeed ticks toward the new target to avoid
// popping.
func (e *Engine) EvalPoint(surf *Surface, vi int) Color {
	v := &surf.Vertices[vi]

	target := Color{}
	for _, idx := range surf.affecting {
		if idx >= len(e.Sources) {
			continue
		}
		src := e.Sources[idx]

		if surf.LOS != nil && !surf.LOS(v.X, v.Y, v.Z, src.X, src.Y, src.Z) {
			continue
		}

		dx := src.X - v.X
		dy := src.Y - v.Y
		dz := src.Z - v.Z
		dist := dx.Abs() + dy.Abs() + dz.Abs()
		if dist <= 0 {
			dist = 1
		}

		lx, ly, lz := normalizeApprox(dx, dy, dz)
		dot := v.NX.Mul(lx) + v.NY.Mul(ly) + v.NZ.Mul(lz)
		if dot < 0 {
			dot = 0
		}

		contribution := src.Color.Scale(src.Intensity.Div(dist)).Scale(dot)
		target = target.Add(contribution)
	}

	if e.AmbientAt != nil {
		target = target.Add(e.AmbientAt(v.X, v.Y, v.Z))
	}

	if v.target != target {
		v.target = target
		v.ticksLeft = LightSpeed
	}
	v.current = stepTowards(v.current, v.target, v.ticksLeft)
	if v.ticksLeft > 0 {
		v.ticksLeft--
	}
	return v.current
}

func stepTowards(cur, target Color, ticksLeft int) Color {
	if ticksLeft <= 0 {
		return target
	}
	frac := world.FixedUnit.Div(world.FixedFromInt(ticksLeft + 1))
	return Color{
		R: cur.R + (target.R - cur.R).Mul(frac),
		G: cur.G + (target.G - cur.G).Mul(frac),
		B: cur.B + (target.B - cur.B).Mul(frac),
	}
}

// normalizeApprox returns a direction vector scaled to roughly unit length
// using a cheap L1-based approximation, avoiding an integer sqrt for what
// is only a dot-product weighting term.
func normalizeApprox(x, y, z world.Fixed) (nx, ny, nz world.Fixed) {
	sum := x.Abs() + y.Abs() + z.Abs()
	if sum == 0 {
		return 0, 0, 0
	}
	return x.Div(sum), y.Div(sum), z.Div(sum)
}
