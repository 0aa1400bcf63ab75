package world

// MobjFlags are the behavioral bits from §3 (solid, shootable, shadow, …).
type MobjFlags uint32

const (
	MFSolid MobjFlags = 1 << iota
	MFShootable
	MFShadow
	MFNoClip
	MFCountKill
	MFCorpse
	MFDropped
	MFNoGravity
	MFFloat
	MFSkullfly
	MFNoDmgThrust
)

func (f MobjFlags) Has(bit MobjFlags) bool { return f&bit != 0 }

// MobjInfo is the immutable per-type definition a Mobj's Type indexes into
// (assumed preloaded from definition files, which are out of scope per
// spec.md §1).
type MobjInfo struct {
	Name          string
	Radius        Fixed
	Height        Fixed
	Mass          int
	Speed         Fixed
	InitialHealth int
	Flags         MobjFlags
	BounceFactor  Fixed // 0..FixedUnit
}

// Mobj is a map object: any moving or interactable entity.
type Mobj struct {
	Thinker ThinkerID

	Type  int
	Info  *MobjInfo
	X, Y, Z Fixed
	MomX, MomY, MomZ Fixed
	Angle uint32 // binary angle measure, 0..2^32 wraps a full turn

	State  int
	Tics   int
	Health int
	Flags  MobjFlags

	Owner  ThinkerID // player mobj owner, if this is e.g. a weapon puff
	Target ThinkerID
	Tracer ThinkerID
	OnMobj ThinkerID

	// Generator is the §4.15 supplement: a mobj may itself own a particle
	// generator (e.g. a torch). Save/restore fixes this up exactly like
	// Target/Tracer/OnMobj.
	Generator ThinkerID

	Sector    int // containing sector index
	Subspace  int // containing BSP subspace index

	SerialID uint32 // stable id used only in save files (§3)
}

// HardRadius is the collision radius used for plane clamping (§4.5).
func (m *Mobj) HardRadius() Fixed {
	if m.Info == nil {
		return 0
	}
	return m.Info.Radius
}
