package acs

import (
	"fmt"

	"github.com/skyjake/doomsday-core/internal/world"
)

// Instr is one decoded bytecode instruction: an opcode plus one immediate
// operand, and any further immediates in ArgN (OpCaseGoto's jump target).
// Line-special args are popped from the stack, not read from ArgN.
type Instr struct {
	Op   Op
	Arg  int32
	ArgN []int32 // extra immediates, used by OpCaseGoto
}

// Program is one compiled ACS module: its instruction stream and string
// table (print builder literals).
type Program struct {
	Code    []Instr
	Strings []string
}

// Actuator performs the world-affecting side of ACS execution; the VM
// itself never touches world.Arena directly beyond looking up the
// activator, keeping the instruction set's side effects behind one seam.
type Actuator interface {
	ExecuteLineSpecial(special int32, args [5]int32)
	SpawnThing(thingType, x, y, z, angle int32)
	SectorSound(tag int32, sound string)
	SetLineTexture(lineTag, position, texture int32)
	SetLineBlocking(lineTag int32, blocking bool)
	SetLineSpecial(lineTag, special int32)
	ChangeFloorTexture(sectorTag, texture int32)
	ChangeCeilingTexture(sectorTag, texture int32)
	TagBusy(tag int32) bool
	PolyBusy(poly int32) bool
	Print(message string, bold bool)
}

// System owns a compiled Program, its map/world variable storage, and the
// table of currently running scripts (so script_wait can find its target
// and Terminate can wake anything waiting on a finished script's number).
type System struct {
	Program   *Program
	MapVars   []int32
	WorldVars []int32
	Actuator  Actuator

	running map[int32][]*Script
	catalog *Catalog
}

// NewSystem creates a script system bound to prog, sized map/world variable
// arrays, and an actuator for world-affecting opcodes.
func NewSystem(prog *Program, numMapVars, numWorldVars int, actuator Actuator) *System {
	return &System{
		Program:   prog,
		MapVars:   make([]int32, numMapVars),
		WorldVars: make([]int32, numWorldVars),
		Actuator:  actuator,
		running:   make(map[int32][]*Script),
	}
}

// waitKind is the cooperative suspend state set by OpDelay/OpTagWait/
// OpPolyWait/OpScriptWait.
type waitKind int

const (
	waitNone waitKind = iota
	waitDelay
	waitTag
	waitPoly
	waitScript
)

// Script is one running ACS script's interpreter state. It implements
// world.ScriptState so Arena dispatches it like any other thinker.
type Script struct {
	Number int32
	Args   [3]int32 // script activation args, per §4.9 script-local scope

	sys   *System
	pc    int32
	stack []int32

	wait       waitKind
	waitTarget int32
	delayCount int32

	activator world.ThinkerID

	printing bool
	printBuf []rune
	printBold bool
}

// Start creates and registers a new running script at pc 0, seeding its
// script-local args.
func (s *System) Start(number int32, args [3]int32, activator world.ThinkerID) *Script {
	sc := &Script{Number: number, Args: args, sys: s, activator: activator}
	s.running[number] = append(s.running[number], sc)
	return sc
}

func (s *System) deregister(sc *Script) {
	list := s.running[sc.Number]
	for i, c := range list {
		if c == sc {
			s.running[sc.Number] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

func (s *System) scriptBusy(number int32) bool {
	return len(s.running[number]) > 0
}

func (sc *Script) push(v int32) { sc.stack = append(sc.stack, v) }

func (sc *Script) pop() int32 {
	n := len(sc.stack)
	if n == 0 {
		return 0
	}
	v := sc.stack[n-1]
	sc.stack = sc.stack[:n-1]
	return v
}

func (sc *Script) peek() int32 {
	if len(sc.stack) == 0 {
		return 0
	}
	return sc.stack[len(sc.stack)-1]
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Step runs opcodes until the script suspends (Stop) or terminates. It
// satisfies world.ScriptState; a true return tells Arena to remove the
// thinker. delay_count, per §4.9, is decremented once per tick before any
// opcode resumes.
func (sc *Script) Step(arena *world.Arena) bool {
	switch sc.wait {
	case waitDelay:
		sc.delayCount--
		if sc.delayCount > 0 {
			return false
		}
		sc.wait = waitNone
	case waitTag:
		if sc.sys.Actuator != nil && sc.sys.Actuator.TagBusy(sc.waitTarget) {
			return false
		}
		sc.wait = waitNone
	case waitPoly:
		if sc.sys.Actuator != nil && sc.sys.Actuator.PolyBusy(sc.waitTarget) {
			return false
		}
		sc.wait = waitNone
	case waitScript:
		if sc.sys.scriptBusy(sc.waitTarget) {
			return false
		}
		sc.wait = waitNone
	}

	for {
		if int(sc.pc) >= len(sc.sys.Program.Code) {
			sc.sys.deregister(sc)
			return true
		}
		instr := sc.sys.Program.Code[sc.pc]
		sc.pc++

		stop, terminate := sc.exec(instr)
		if terminate {
			sc.sys.deregister(sc)
			return true
		}
		if stop {
			return false
		}
	}
}

// exec runs one instruction, returning (stop, terminate) for waits and
// program-end/Terminate respectively.
func (sc *Script) exec(instr Instr) (stop, terminate bool) {
	switch instr.Op {
	case OpPushByte, OpPushWord:
		sc.push(instr.Arg)
	case OpDrop:
		sc.pop()
	case OpDup:
		sc.push(sc.peek())

	case OpAdd:
		b, a := sc.pop(), sc.pop()
		sc.push(a + b)
	case OpSub:
		b, a := sc.pop(), sc.pop()
		sc.push(a - b)
	case OpMul:
		b, a := sc.pop(), sc.pop()
		sc.push(a * b)
	case OpDiv:
		b, a := sc.pop(), sc.pop()
		if b == 0 {
			sc.push(0)
		} else {
			sc.push(a / b)
		}
	case OpMod:
		b, a := sc.pop(), sc.pop()
		if b == 0 {
			sc.push(0)
		} else {
			sc.push(a % b)
		}
	case OpNegate:
		sc.push(-sc.pop())

	case OpEQ:
		b, a := sc.pop(), sc.pop()
		sc.push(b2i(a == b))
	case OpNE:
		b, a := sc.pop(), sc.pop()
		sc.push(b2i(a != b))
	case OpLT:
		b, a := sc.pop(), sc.pop()
		sc.push(b2i(a < b))
	case OpGT:
		b, a := sc.pop(), sc.pop()
		sc.push(b2i(a > b))
	case OpLE:
		b, a := sc.pop(), sc.pop()
		sc.push(b2i(a <= b))
	case OpGE:
		b, a := sc.pop(), sc.pop()
		sc.push(b2i(a >= b))

	case OpAndLogical:
		b, a := sc.pop(), sc.pop()
		sc.push(b2i(a != 0 && b != 0))
	case OpOrLogical:
		b, a := sc.pop(), sc.pop()
		sc.push(b2i(a != 0 || b != 0))
	case OpNotLogical:
		sc.push(b2i(sc.pop() == 0))

	case OpAndBitwise:
		b, a := sc.pop(), sc.pop()
		sc.push(a & b)
	case OpOrBitwise:
		b, a := sc.pop(), sc.pop()
		sc.push(a | b)
	case OpXorBitwise:
		b, a := sc.pop(), sc.pop()
		sc.push(a ^ b)
	case OpNotBitwise:
		sc.push(^sc.pop())
	case OpShiftLeft:
		b, a := sc.pop(), sc.pop()
		sc.push(a << uint32(b))
	case OpShiftRight:
		b, a := sc.pop(), sc.pop()
		sc.push(a >> uint32(b))

	case OpPushScriptVar:
		sc.push(sc.scriptVar(instr.Arg))
	case OpAssignScriptVar:
		sc.setScriptVar(instr.Arg, sc.pop())
	case OpAddScriptVar:
		sc.setScriptVar(instr.Arg, sc.scriptVar(instr.Arg)+sc.pop())
	case OpSubScriptVar:
		sc.setScriptVar(instr.Arg, sc.scriptVar(instr.Arg)-sc.pop())

	case OpPushMapVar:
		sc.push(sc.sys.MapVars[instr.Arg])
	case OpAssignMapVar:
		sc.sys.MapVars[instr.Arg] = sc.pop()
	case OpAddMapVar:
		sc.sys.MapVars[instr.Arg] += sc.pop()
	case OpSubMapVar:
		sc.sys.MapVars[instr.Arg] -= sc.pop()

	case OpPushWorldVar:
		sc.push(sc.sys.WorldVars[instr.Arg])
	case OpAssignWorldVar:
		sc.sys.WorldVars[instr.Arg] = sc.pop()
	case OpAddWorldVar:
		sc.sys.WorldVars[instr.Arg] += sc.pop()
	case OpSubWorldVar:
		sc.sys.WorldVars[instr.Arg] -= sc.pop()

	case OpGoto:
		sc.pc = instr.Arg
	case OpIfGoto:
		if sc.pop() != 0 {
			sc.pc = instr.Arg
		}
	case OpIfNotGoto:
		if sc.pop() == 0 {
			sc.pc = instr.Arg
		}
	case OpCaseGoto:
		// Nonstandard: only pops the compared value on match, leaving it on
		// the stack for the next CaseGoto in the chain otherwise (§4.9/§9).
		if sc.peek() == instr.Arg {
			sc.pop()
			sc.pc = instr.ArgN[0]
		}
	case OpRestart:
		sc.pc = 0
		sc.stack = sc.stack[:0]
	case OpTerminate:
		return false, true

	case OpDelay:
		sc.delayCount = sc.pop()
		sc.wait = waitDelay
		return true, false
	case OpTagWait:
		tag := sc.pop()
		if sc.sys.Actuator != nil && sc.sys.Actuator.TagBusy(tag) {
			sc.waitTarget = tag
			sc.wait = waitTag
			return true, false
		}
		// Already clear: fall through to the next opcode this same tick
		// instead of suspending for a tick that never needed to pass
		// (Scenario C / Testable Property 9).
	case OpPolyWait:
		poly := sc.pop()
		if sc.sys.Actuator != nil && sc.sys.Actuator.PolyBusy(poly) {
			sc.waitTarget = poly
			sc.wait = waitPoly
			return true, false
		}
	case OpScriptWait:
		target := sc.pop()
		if sc.sys.scriptBusy(target) {
			sc.waitTarget = target
			sc.wait = waitScript
			return true, false
		}

	case OpLineSpecial1, OpLineSpecial2, OpLineSpecial3, OpLineSpecial4, OpLineSpecial5:
		n := int(instr.Op-OpLineSpecial1) + 1
		var args [5]int32
		for i := n - 1; i >= 0; i-- {
			args[i] = sc.pop()
		}
		special := sc.pop()
		if sc.sys.Actuator != nil {
			sc.sys.Actuator.ExecuteLineSpecial(special, args)
		}

	case OpSpawn, OpSpawnSpot:
		angle := sc.pop()
		z := sc.pop()
		y := sc.pop()
		x := sc.pop()
		thingType := sc.pop()
		if sc.sys.Actuator != nil {
			sc.sys.Actuator.SpawnThing(thingType, x, y, z, angle)
		}
	case OpSectorSound:
		soundIdx := sc.pop()
		tag := sc.pop()
		if sc.sys.Actuator != nil {
			sc.sys.Actuator.SectorSound(tag, sc.stringAt(soundIdx))
		}
	case OpSetLineTexture:
		texture := sc.pop()
		position := sc.pop()
		lineTag := sc.pop()
		if sc.sys.Actuator != nil {
			sc.sys.Actuator.SetLineTexture(lineTag, position, texture)
		}
	case OpSetLineBlocking:
		blocking := sc.pop()
		lineTag := sc.pop()
		if sc.sys.Actuator != nil {
			sc.sys.Actuator.SetLineBlocking(lineTag, blocking != 0)
		}
	case OpSetLineSpecial:
		special := sc.pop()
		lineTag := sc.pop()
		if sc.sys.Actuator != nil {
			sc.sys.Actuator.SetLineSpecial(lineTag, special)
		}
	case OpChangeFloor:
		texture := sc.pop()
		sectorTag := sc.pop()
		if sc.sys.Actuator != nil {
			sc.sys.Actuator.ChangeFloorTexture(sectorTag, texture)
		}
	case OpChangeCeiling:
		texture := sc.pop()
		sectorTag := sc.pop()
		if sc.sys.Actuator != nil {
			sc.sys.Actuator.ChangeCeilingTexture(sectorTag, texture)
		}

	case OpBeginPrint:
		sc.printing = true
		sc.printBuf = sc.printBuf[:0]
		sc.printBold = false
	case OpPrintString:
		sc.printBuf = append(sc.printBuf, []rune(sc.stringAt(sc.pop()))...)
	case OpPrintNumber:
		sc.printBuf = append(sc.printBuf, []rune(fmt.Sprintf("%d", sc.pop()))...)
	case OpPrintCharacter:
		sc.printBuf = append(sc.printBuf, rune(sc.pop()))
	case OpEndPrint:
		sc.flushPrint(false)
	case OpEndPrintBold:
		sc.flushPrint(true)
	}
	return false, false
}

func (sc *Script) flushPrint(bold bool) {
	if sc.sys.Actuator != nil {
		sc.sys.Actuator.Print(string(sc.printBuf), bold)
	}
	sc.printing = false
	sc.printBuf = sc.printBuf[:0]
}

func (sc *Script) stringAt(idx int32) string {
	if idx < 0 || int(idx) >= len(sc.sys.Program.Strings) {
		return ""
	}
	s := sc.sys.Program.Strings[idx]
	if sc.sys.catalog != nil && len(s) > 4 && s[:4] == "msg:" {
		return sc.sys.catalog.Localize(s[4:])
	}
	return s
}

// scriptVar indexes into the script's activation args for indices 0..2
// (§4.9's script-local scope). Any other index reads as 0, and
// setScriptVar ignores writes to it.
func (sc *Script) scriptVar(idx int32) int32 {
	if idx >= 0 && int(idx) < len(sc.Args) {
		return sc.Args[idx]
	}
	return 0
}

func (sc *Script) setScriptVar(idx int32, v int32) {
	if idx >= 0 && int(idx) < len(sc.Args) {
		sc.Args[idx] = v
	}
}
