package save

import (
	"bytes"
	"fmt"

	"github.com/skyjake/doomsday-core/internal/acs"
	"github.com/skyjake/doomsday-core/internal/bias"
	"github.com/skyjake/doomsday-core/internal/coreerr"
	"github.com/skyjake/doomsday-core/internal/particles"
	"github.com/skyjake/doomsday-core/internal/planes"
	"github.com/skyjake/doomsday-core/internal/world"
)

// Hooks supplies the collaborators save.Save/Load need but that the world
// package itself has no notion of (preloaded definition tables, the ACS
// system, rng for restored light fixtures) — the same "inject what you
// can't import" seam used throughout the rest of the core (e.g.
// Generator.SubspaceLookup, Session.Smoother).
type Hooks struct {
	// MobjInfoByType resolves a Mobj's preloaded definition after load.
	MobjInfoByType func(mobjType int) *world.MobjInfo

	// DefID/DefByID round-trip a particle generator's definition through
	// a stable small integer, since definitions are preloaded content
	// shared across instances, not saved inline (analogous to MobjInfo).
	DefID     func(def *particles.Definition) (int, bool)
	DefByID   func(id int) (*particles.Definition, bool)

	// ACS is the running script system; required only if the arena has
	// any KindACScript thinkers.
	ACS *acs.System

	// BiasRNG is rewired onto any restored Flash light thinker.
	BiasRNG func(lo, hi int) int
}

// Save serializes arena's full map state: header, sector/side/line arrays,
// the thinker stream (class byte + gob payload per thinker, tc_end=0
// terminator), and the trailing consistency marker.
func Save(arena *world.Arena, header Header, hooks Hooks) ([]byte, error) {
	header.EngineVersion = EngineVersion

	var buf bytes.Buffer
	if err := writeHeader(&buf, header); err != nil {
		return nil, &coreerr.SaveError{Op: "Save", Err: err}
	}

	enc := newEncoder(&buf)

	sectors := make([]SectorSave, len(arena.Sectors))
	for i, s := range arena.Sectors {
		sectors[i] = SectorSave{
			Index: s.Index, Tag: s.Tag,
			FloorHeight: s.FloorHeight, CeilingHeight: s.CeilingHeight,
			FloorMaterial: s.FloorMaterial, CeilingMaterial: s.CeilingMaterial,
			Light: s.Light, Special: s.Special,
			FloorIsSky: s.FloorIsSky, CeilingIsSky: s.CeilingIsSky,
		}
	}
	if err := enc.Encode(sectors); err != nil {
		return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("sectors: %w", err)}
	}

	sides := make([]SideSave, len(arena.Sides))
	for i, sd := range arena.Sides {
		sides[i] = SideSave{
			Index: sd.Index, Sector: sd.Sector,
			TopMaterial: sd.TopMaterial, MidMaterial: sd.MidMaterial, BottomMaterial: sd.BottomMaterial,
			OffsetX: sd.OffsetX, OffsetY: sd.OffsetY,
		}
	}
	if err := enc.Encode(sides); err != nil {
		return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("sides: %w", err)}
	}

	lines := make([]LineSave, len(arena.Lines))
	for i, l := range arena.Lines {
		lines[i] = LineSave{
			Index: l.Index, Tag: l.Tag, Flags: l.Flags,
			V1X: l.V1X, V1Y: l.V1Y, V2X: l.V2X, V2Y: l.V2Y,
			Front: l.Front, Back: l.Back,
			Special: l.Special, Args: l.Args, Blocking: l.Blocking,
		}
	}
	if err := enc.Encode(lines); err != nil {
		return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("lines: %w", err)}
	}

	active := arena.Active()
	serialOf := make(map[world.ThinkerID]uint32, len(active))
	for i, t := range active {
		serialOf[t.ID()] = uint32(i + 1)
	}
	serial := func(id world.ThinkerID) uint32 {
		if id.IsNil() {
			return 0
		}
		return serialOf[id]
	}

	for _, t := range active {
		class := t.Kind.SaveClass()
		if class == 0 {
			return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("thinker has no save class (kind %d)", t.Kind)}
		}
		buf.WriteByte(class)

		switch t.Kind {
		case world.KindMobj:
			m := t.Mobj
			m.SerialID = serialOf[t.ID()]
			rec := MobjSave{
				Version: mobjSaveVersion, SerialID: m.SerialID,
				Type: m.Type,
				X: m.X, Y: m.Y, Z: m.Z,
				MomX: m.MomX, MomY: m.MomY, MomZ: m.MomZ,
				Angle: m.Angle,
				State: m.State, Tics: m.Tics, Health: m.Health, Flags: m.Flags,
				Sector: m.Sector, Subspace: m.Subspace,
				OwnerSerial: serial(m.Owner), TargetSerial: serial(m.Target),
				TracerSerial: serial(m.Tracer), OnMobjSerial: serial(m.OnMobj),
				GeneratorSerial: serial(m.Generator),
			}
			if err := enc.Encode(rec); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("mobj %d: %w", rec.SerialID, err)}
			}

		case world.KindGenerator:
			g, ok := t.Generator.State.(*particles.Generator)
			if !ok {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("generator thinker has unexpected state type")}
			}
			defID := 0
			if hooks.DefID != nil {
				if id, ok := hooks.DefID(g.Def); ok {
					defID = id
				}
			}
			rec := g.Save(defID, serialOf[t.ID()], serial(g.SourceMobj))
			if err := enc.Encode(rec); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("generator: %w", err)}
			}

		case world.KindCeiling:
			c := t.Mover.State.(*planes.Ceiling)
			if err := enc.Encode(c.Save()); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("ceiling: %w", err)}
			}
		case world.KindDoor:
			d := t.Mover.State.(*planes.Door)
			if err := enc.Encode(d.Save()); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("door: %w", err)}
			}
		case world.KindFloor:
			f := t.Mover.State.(*planes.Floor)
			if err := enc.Encode(f.Save()); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("floor: %w", err)}
			}
		case world.KindPlat:
			p := t.Mover.State.(*planes.Plat)
			if err := enc.Encode(p.Save()); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("plat: %w", err)}
			}

		case world.KindFlash:
			f := t.Light.State.(*bias.Flash)
			if err := enc.Encode(f.Save()); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("flash: %w", err)}
			}
		case world.KindStrobe:
			s := t.Light.State.(*bias.Strobe)
			if err := enc.Encode(s.Save()); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("strobe: %w", err)}
			}
		case world.KindGlow:
			g := t.Light.State.(*bias.Glow)
			if err := enc.Encode(g.Save()); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("glow: %w", err)}
			}

		case world.KindACScript:
			sc := t.Script.State.(*acs.Script)
			if err := enc.Encode(sc.Save(serial(sc.Activator()))); err != nil {
				return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("script: %w", err)}
			}

		default:
			return nil, &coreerr.SaveError{Op: "Save", Err: fmt.Errorf("unsupported thinker kind %d", t.Kind)}
		}
	}

	buf.WriteByte(ClassEnd)
	buf.WriteByte(ConsistencyMarker)

	return buf.Bytes(), nil
}

// pendingMobj carries a just-loaded mobj's serial back-references so the
// fixup pass can run after every thinker in the file has been created.
type pendingMobj struct {
	mobj *world.Mobj
	rec  MobjSave
}

// pendingScript carries a just-loaded script's recorded activator serial.
type pendingScript struct {
	script *acs.Script
	serial uint32
}

// pendingGenerator carries a just-loaded generator's recorded source-mobj
// serial, fixed up in the same pass as mobj back-references.
type pendingGenerator struct {
	gen          *particles.Generator
	sourceSerial uint32
}

// Load deserializes data into a fresh Arena plus the header that was
// saved alongside it. hooks.MobjInfoByType must be set if the file
// contains any mobjs; hooks.DefID/DefByID must be set if it contains any
// generators; hooks.ACS must be set if it contains any scripts.
func Load(data []byte, hooks Hooks) (*world.Arena, Header, error) {
	r := bytes.NewReader(data)

	header, err := readHeader(r)
	if err != nil {
		return nil, Header{}, err
	}

	dec := newDecoder(r)

	var sectors []SectorSave
	if err := dec.Decode(&sectors); err != nil {
		return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("sectors: %w", err)}
	}
	var sides []SideSave
	if err := dec.Decode(&sides); err != nil {
		return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("sides: %w", err)}
	}
	var lines []LineSave
	if err := dec.Decode(&lines); err != nil {
		return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("lines: %w", err)}
	}

	arena := world.NewArena()
	arena.Sectors = make([]world.Sector, len(sectors))
	for i, s := range sectors {
		arena.Sectors[i] = world.Sector{
			Index: s.Index, Tag: s.Tag,
			FloorHeight: s.FloorHeight, CeilingHeight: s.CeilingHeight,
			FloorMaterial: s.FloorMaterial, CeilingMaterial: s.CeilingMaterial,
			Light: s.Light, Special: s.Special,
			FloorIsSky: s.FloorIsSky, CeilingIsSky: s.CeilingIsSky,
		}
	}
	arena.Sides = make([]world.Side, len(sides))
	for i, sd := range sides {
		arena.Sides[i] = world.Side{
			Index: sd.Index, Sector: sd.Sector,
			TopMaterial: sd.TopMaterial, MidMaterial: sd.MidMaterial, BottomMaterial: sd.BottomMaterial,
			OffsetX: sd.OffsetX, OffsetY: sd.OffsetY,
		}
	}
	arena.Lines = make([]world.Line, len(lines))
	for i, l := range lines {
		arena.Lines[i] = world.Line{
			Index: l.Index, Tag: l.Tag, Flags: l.Flags,
			V1X: l.V1X, V1Y: l.V1Y, V2X: l.V2X, V2Y: l.V2Y,
			Front: l.Front, Back: l.Back,
			Special: l.Special, Args: l.Args, Blocking: l.Blocking,
		}
	}

	bySerial := make(map[uint32]world.ThinkerID)
	var pendingMobjs []pendingMobj
	var pendingScripts []pendingScript
	var pendingGenerators []pendingGenerator

	for {
		classByte, err := r.ReadByte()
		if err != nil {
			return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("truncated thinker stream: %w", err)}
		}
		if classByte == ClassEnd {
			break
		}

		switch classByte {
		case world.KindMobj.SaveClass():
			var rec MobjSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("mobj: %w", err)}
			}
			var info *world.MobjInfo
			if hooks.MobjInfoByType != nil {
				info = hooks.MobjInfoByType(rec.Type)
			}
			th := arena.Spawn(world.KindMobj)
			m := &world.Mobj{
				Thinker: th.ID(), Type: rec.Type, Info: info,
				X: rec.X, Y: rec.Y, Z: rec.Z,
				MomX: rec.MomX, MomY: rec.MomY, MomZ: rec.MomZ,
				Angle: rec.Angle,
				State: rec.State, Tics: rec.Tics, Health: rec.Health,
				Flags:  translateLegacyMobjFlags(rec.Version, rec.Flags),
				Sector: rec.Sector, Subspace: rec.Subspace,
				SerialID: rec.SerialID,
			}
			th.Mobj = m
			bySerial[rec.SerialID] = th.ID()
			pendingMobjs = append(pendingMobjs, pendingMobj{mobj: m, rec: rec})

		case world.KindGenerator.SaveClass():
			var rec particles.GeneratorSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("generator: %w", err)}
			}
			var def *particles.Definition
			if hooks.DefByID != nil {
				def, _ = hooks.DefByID(rec.DefID)
			}
			g := particles.Restore(def, rec, world.Nil) // source mobj fixed up below
			th := arena.Spawn(world.KindGenerator)
			th.Generator = &world.Generator{State: g}
			bySerial[rec.SerialID] = th.ID()
			if rec.SourceMobjSerial != 0 {
				pendingGenerators = append(pendingGenerators, pendingGenerator{gen: g, sourceSerial: rec.SourceMobjSerial})
			}

		case world.KindCeiling.SaveClass():
			var rec planes.CeilingSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("ceiling: %w", err)}
			}
			planes.RestoreCeiling(arena, rec)

		case world.KindDoor.SaveClass():
			var rec planes.DoorSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("door: %w", err)}
			}
			planes.RestoreDoor(arena, rec)

		case world.KindFloor.SaveClass():
			var rec planes.FloorSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("floor: %w", err)}
			}
			planes.RestoreFloor(arena, rec)

		case world.KindPlat.SaveClass():
			var rec planes.PlatSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("plat: %w", err)}
			}
			planes.RestorePlat(arena, rec)

		case world.KindFlash.SaveClass():
			var rec bias.FlashSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("flash: %w", err)}
			}
			bias.RestoreFlash(arena, rec, hooks.BiasRNG)

		case world.KindStrobe.SaveClass():
			var rec bias.StrobeSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("strobe: %w", err)}
			}
			bias.RestoreStrobe(arena, rec)

		case world.KindGlow.SaveClass():
			var rec bias.GlowSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("glow: %w", err)}
			}
			bias.RestoreGlow(arena, rec)

		case world.KindACScript.SaveClass():
			var rec acs.ScriptSave
			if err := dec.Decode(&rec); err != nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("script: %w", err)}
			}
			if hooks.ACS == nil {
				return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("save contains a script but no ACS system was supplied")}
			}
			sc := hooks.ACS.Restore(rec, world.Nil)
			th := arena.Spawn(world.KindACScript)
			th.Script = &world.ScriptRef{ScriptNumber: int(rec.Number), State: sc}
			if rec.ActivatorSerial != 0 {
				pendingScripts = append(pendingScripts, pendingScript{script: sc, serial: rec.ActivatorSerial})
			}

		default:
			return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("unknown thinker class byte %d", classByte)}
		}
	}

	marker, err := r.ReadByte()
	if err != nil || marker != ConsistencyMarker {
		return nil, header, &coreerr.SaveError{Op: "Load", Err: fmt.Errorf("missing or bad consistency marker")}
	}

	resolve := func(serial uint32) world.ThinkerID {
		if serial == 0 {
			return world.Nil
		}
		return bySerial[serial]
	}
	for _, pm := range pendingMobjs {
		pm.mobj.Owner = resolve(pm.rec.OwnerSerial)
		pm.mobj.Target = resolve(pm.rec.TargetSerial)
		pm.mobj.Tracer = resolve(pm.rec.TracerSerial)
		pm.mobj.OnMobj = resolve(pm.rec.OnMobjSerial)
		pm.mobj.Generator = resolve(pm.rec.GeneratorSerial)
	}
	for _, pg := range pendingGenerators {
		pg.gen.SourceMobj = resolve(pg.sourceSerial)
	}
	for _, ps := range pendingScripts {
		ps.script.SetActivator(resolve(ps.serial))
	}

	return arena, header, nil
}
