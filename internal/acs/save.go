package acs

import "github.com/skyjake/doomsday-core/internal/world"

// ScriptSave is the gob-serializable snapshot of one running script's
// interpreter state (§4.9/§4.12): pcode offset, stack contents, arg slots,
// delay counter, and activator reference (by serial id, resolved by the
// caller — acs has no notion of serial ids itself).
type ScriptSave struct {
	Number int32
	Args   [3]int32

	PC    int32
	Stack []int32

	Wait       int
	WaitTarget int32
	DelayCount int32

	ActivatorSerial uint32
}

// Save snapshots a running script for serialization. The caller supplies
// the activator's serial id (0 if none), since the VM only knows the
// activator as a ThinkerID.
func (sc *Script) Save(activatorSerial uint32) ScriptSave {
	return ScriptSave{
		Number:          sc.Number,
		Args:            sc.Args,
		PC:              sc.pc,
		Stack:           append([]int32(nil), sc.stack...),
		Wait:            int(sc.wait),
		WaitTarget:      sc.waitTarget,
		DelayCount:      sc.delayCount,
		ActivatorSerial: activatorSerial,
	}
}

// Restore reconstructs a running script from a save record and registers
// it with the system so script_wait/terminate bookkeeping works as if it
// had never stopped. The caller resolves ActivatorSerial to a live
// ThinkerID beforehand (or passes world.Nil if the activator is gone).
func (s *System) Restore(sv ScriptSave, activator world.ThinkerID) *Script {
	sc := &Script{
		Number:     sv.Number,
		Args:       sv.Args,
		sys:        s,
		pc:         sv.PC,
		stack:      append([]int32(nil), sv.Stack...),
		wait:       waitKind(sv.Wait),
		waitTarget: sv.WaitTarget,
		delayCount: sv.DelayCount,
		activator:  activator,
	}
	s.running[sc.Number] = append(s.running[sc.Number], sc)
	return sc
}

// Activator exposes the script's activator handle for the save package's
// serial-id lookup.
func (sc *Script) Activator() world.ThinkerID { return sc.activator }

// SetActivator is used by the post-load fixup pass once the activator's
// serial id has been resolved to a live handle.
func (sc *Script) SetActivator(id world.ThinkerID) { sc.activator = id }
