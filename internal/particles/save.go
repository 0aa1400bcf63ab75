package particles

import "github.com/skyjake/doomsday-core/internal/world"

// ParticleSave is the serializable snapshot of one live particle.
type ParticleSave struct {
	Stage int
	Tics  int

	X, Y, Z          world.Fixed
	MomX, MomY, MomZ world.Fixed
	Angle            uint32

	Sector int
}

// GeneratorSave is the serializable snapshot of a generator thinker
// (§4.12): the definition is saved by id rather than inline, matching how
// MobjInfo is looked up by Type rather than embedded in a Mobj record —
// ded-style definitions are assumed preloaded and shared across instances.
type GeneratorSave struct {
	DefID int

	// SerialID is this generator thinker's own save-file identity, so a
	// mobj's GeneratorSerial fixup (§4.15 supplement) can resolve back to
	// it, exactly like a mobj's SerialID.
	SerialID uint32

	Age        int
	SpawnCount world.Fixed

	SourceMobjSerial uint32 // 0 if Def.Source != SourceMobj or source is gone
	SourceTag        int

	CenterX, CenterY, CenterZ world.Fixed

	Particles []ParticleSave

	// Seed is the generator's original RNG seed. Save/restore reproduces
	// the generator's future spawn *distribution* from this seed but not
	// the exact mid-stream RNG cursor, since math/rand.Rand exposes no
	// portable way to snapshot its internal state; an acceptable
	// divergence given spec.md's savegame determinism goal only covers the
	// engine's own wire formats, not RNG replay (§1 Non-goals).
	Seed int64
}

// Save snapshots g. defID identifies g.Def in the caller's definition
// registry; selfSerial is this generator's own save-file id; sourceSerial
// resolves g.SourceMobj to a stable save-file id (0 if none/gone).
func (g *Generator) Save(defID int, selfSerial, sourceSerial uint32) GeneratorSave {
	sv := GeneratorSave{
		DefID:      defID,
		SerialID:   selfSerial,
		Age:        g.Age,
		SpawnCount: g.SpawnCount,
		SourceMobjSerial: sourceSerial,
		SourceTag:  g.SourceTag,
		CenterX:    g.CenterX,
		CenterY:    g.CenterY,
		CenterZ:    g.CenterZ,
		Seed:       g.seed,
	}
	for _, p := range g.Particles {
		sv.Particles = append(sv.Particles, ParticleSave{
			Stage: p.Stage, Tics: p.Tics,
			X: p.X, Y: p.Y, Z: p.Z,
			MomX: p.MomX, MomY: p.MomY, MomZ: p.MomZ,
			Angle: p.Angle, Sector: p.Sector,
		})
	}
	return sv
}

// Restore rebuilds a generator from sv, bound to def. sourceMobj is the
// fixed-up ThinkerID for sv.SourceMobjSerial (world.Nil if none/unresolved).
// The caller must still wire SubspaceLookup/RandomSubspace/RandomPointIn
// afterward, the same hooks New() leaves for the session to attach.
func Restore(def *Definition, sv GeneratorSave, sourceMobj world.ThinkerID) *Generator {
	g := New(def, sv.Seed, sv.CenterX, sv.CenterY, sv.CenterZ)
	g.Age = sv.Age
	g.SpawnCount = sv.SpawnCount
	g.SourceMobj = sourceMobj
	g.SourceTag = sv.SourceTag
	for _, p := range sv.Particles {
		g.Particles = append(g.Particles, &Particle{
			Stage: p.Stage, Tics: p.Tics,
			X: p.X, Y: p.Y, Z: p.Z,
			MomX: p.MomX, MomY: p.MomY, MomZ: p.MomZ,
			Angle: p.Angle, Sector: p.Sector,
		})
	}
	return g
}
