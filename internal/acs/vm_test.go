package acs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyjake/doomsday-core/internal/world"
)

type fakeActuator struct {
	specials  []int32
	lastArgs  [5]int32
	tagBusy   map[int32]bool
	polyBusy  map[int32]bool
	printed   []string
	printBold []bool
}

func (f *fakeActuator) ExecuteLineSpecial(special int32, args [5]int32) {
	f.specials = append(f.specials, special)
	f.lastArgs = args
}
func (f *fakeActuator) SpawnThing(thingType, x, y, z, angle int32)       {}
func (f *fakeActuator) SectorSound(tag int32, sound string)              {}
func (f *fakeActuator) SetLineTexture(lineTag, position, texture int32)  {}
func (f *fakeActuator) SetLineBlocking(lineTag int32, blocking bool)     {}
func (f *fakeActuator) SetLineSpecial(lineTag, special int32)            {}
func (f *fakeActuator) ChangeFloorTexture(sectorTag, texture int32)      {}
func (f *fakeActuator) ChangeCeilingTexture(sectorTag, texture int32)    {}
func (f *fakeActuator) TagBusy(tag int32) bool                          { return f.tagBusy[tag] }
func (f *fakeActuator) PolyBusy(poly int32) bool                        { return f.polyBusy[poly] }
func (f *fakeActuator) Print(message string, bold bool) {
	f.printed = append(f.printed, message)
	f.printBold = append(f.printBold, bold)
}

func TestArithmeticAndComparison(t *testing.T) {
	prog := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 3},
		{Op: OpPushByte, Arg: 4},
		{Op: OpAdd},
		{Op: OpPushByte, Arg: 7},
		{Op: OpEQ},
		{Op: OpTerminate},
	}}
	act := &fakeActuator{tagBusy: map[int32]bool{}}
	sys := NewSystem(prog, 0, 0, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)

	done := sc.Step(world.NewArena())
	assert.True(t, done)
	assert.Equal(t, int32(1), sc.stack[len(sc.stack)-1])
}

func TestDelayWaitSuspendsAndResumesAfterCountdown(t *testing.T) {
	prog := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 2},
		{Op: OpDelay},
		{Op: OpTerminate},
	}}
	act := &fakeActuator{tagBusy: map[int32]bool{}}
	sys := NewSystem(prog, 0, 0, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)
	arena := world.NewArena()

	require.False(t, sc.Step(arena)) // hits delay, suspends
	require.False(t, sc.Step(arena)) // delayCount 2->1
	assert.True(t, sc.Step(arena))   // delayCount 1->0, resumes, terminates
}

func TestTagWaitBlocksUntilActuatorClears(t *testing.T) {
	prog := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 5},
		{Op: OpTagWait},
		{Op: OpTerminate},
	}}
	act := &fakeActuator{tagBusy: map[int32]bool{5: true}}
	sys := NewSystem(prog, 0, 0, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)
	arena := world.NewArena()

	require.False(t, sc.Step(arena))
	require.False(t, sc.Step(arena), "still busy, should stay suspended")
	act.tagBusy[5] = false
	assert.True(t, sc.Step(arena))
}

func TestPolyWaitBlocksUntilActuatorClears(t *testing.T) {
	prog := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 3},
		{Op: OpPolyWait},
		{Op: OpTerminate},
	}}
	act := &fakeActuator{tagBusy: map[int32]bool{}, polyBusy: map[int32]bool{3: true}}
	sys := NewSystem(prog, 0, 0, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)
	arena := world.NewArena()

	require.False(t, sc.Step(arena))
	require.False(t, sc.Step(arena), "still busy, should stay suspended")
	act.polyBusy[3] = false
	assert.True(t, sc.Step(arena))
}

func TestScriptWaitResumesOnceTargetInactive(t *testing.T) {
	prog := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 2},
		{Op: OpScriptWait},
		{Op: OpTerminate},
	}}
	act := &fakeActuator{tagBusy: map[int32]bool{}}
	sys := NewSystem(prog, 0, 0, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)
	waited := sys.Start(2, [3]int32{}, world.Nil)
	arena := world.NewArena()

	require.False(t, sc.Step(arena), "script #2 is still running, so script_wait suspends")
	sys.deregister(waited) // script #2 goes Inactive
	assert.True(t, sc.Step(arena), "script #2 is now inactive, so script_wait resumes")
}

// TestScriptWaitAlreadySatisfiedFallsThroughSameTick encodes spec.md
// Scenario C: script #1 is `delay 5; script_wait 2; print "done"; terminate`,
// script #2 is `delay 3; terminate`. Both start at tick T; script #2 goes
// Inactive at T+3. Script #1's delay expires at T+5 and executes
// OpScriptWait the same tick — since script #2 is already inactive by
// then, OpScriptWait must not suspend at all, and script #1 must print and
// terminate in that same Step call (Testable Property 9: resumes on the
// same tick the condition transitions, not one tick later).
func TestScriptWaitAlreadySatisfiedFallsThroughSameTick(t *testing.T) {
	script2 := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 3},
		{Op: OpDelay},
		{Op: OpTerminate},
	}}
	script1 := &Program{
		Strings: []string{"done"},
		Code: []Instr{
			{Op: OpPushByte, Arg: 5},
			{Op: OpDelay},
			{Op: OpPushByte, Arg: 2},
			{Op: OpScriptWait},
			{Op: OpBeginPrint},
			{Op: OpPushByte, Arg: 0},
			{Op: OpPrintString},
			{Op: OpEndPrint},
			{Op: OpTerminate},
		},
	}
	act := &fakeActuator{tagBusy: map[int32]bool{}}

	sys2 := NewSystem(script2, 0, 0, act)
	sc2 := sys2.Start(2, [3]int32{}, world.Nil)

	sys1 := NewSystem(script1, 0, 0, act)
	sys1.running = sys2.running // share the script table so script_wait sees #2
	sc1 := sys1.Start(1, [3]int32{}, world.Nil)

	arena := world.NewArena()

	for tick := 0; tick < 3; tick++ {
		require.False(t, sc1.Step(arena), "script #1 still delaying at tick %d", tick)
		require.False(t, sc2.Step(arena), "script #2 still delaying at tick %d", tick)
	}
	// Tick T+3: script #2's delay expires and it terminates.
	assert.True(t, sc2.Step(arena))
	require.False(t, sc1.Step(arena), "script #1 still delaying at T+3")

	// T+4.
	require.False(t, sc1.Step(arena), "script #1 still delaying at T+4")

	// T+5: delay expires; script_wait's target is already inactive, so
	// script #1 must fall through and finish in this same call.
	assert.True(t, sc1.Step(arena), "script #1 should print and terminate at T+5, not T+6")
	require.Len(t, act.printed, 1)
	assert.Equal(t, "done", act.printed[0])
}

func TestCaseGotoOnlyPopsOnMatch(t *testing.T) {
	prog := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 9},    // pc0: push selector
		{Op: OpCaseGoto, Arg: 1, ArgN: []int32{5}}, // pc1: no match (1!=9), stack keeps 9
		{Op: OpCaseGoto, Arg: 9, ArgN: []int32{5}}, // pc2: match, pops and jumps to pc5
		{Op: OpPushByte, Arg: 111},  // pc3: skipped
		{Op: OpTerminate},           // pc4: skipped
		{Op: OpPushByte, Arg: 222},  // pc5: landed here
		{Op: OpTerminate},           // pc6
	}}
	act := &fakeActuator{tagBusy: map[int32]bool{}}
	sys := NewSystem(prog, 0, 0, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)

	sc.Step(world.NewArena())
	require.Len(t, sc.stack, 1)
	assert.Equal(t, int32(222), sc.stack[0])
}

func TestLineSpecialDispatchPopsArgsInOrder(t *testing.T) {
	prog := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 42}, // special
		{Op: OpPushByte, Arg: 1},
		{Op: OpPushByte, Arg: 2},
		{Op: OpPushByte, Arg: 3},
		{Op: OpLineSpecial3},
		{Op: OpTerminate},
	}}
	act := &fakeActuator{tagBusy: map[int32]bool{}}
	sys := NewSystem(prog, 0, 0, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)

	sc.Step(world.NewArena())
	require.Len(t, act.specials, 1)
	assert.Equal(t, int32(42), act.specials[0])
	assert.Equal(t, [5]int32{1, 2, 3, 0, 0}, act.lastArgs)
}

func TestPrintBuilderAssemblesAndFlushes(t *testing.T) {
	prog := &Program{
		Strings: []string{"hello "},
		Code: []Instr{
			{Op: OpBeginPrint},
			{Op: OpPushByte, Arg: 0},
			{Op: OpPrintString},
			{Op: OpPushByte, Arg: 7},
			{Op: OpPrintNumber},
			{Op: OpEndPrintBold},
			{Op: OpTerminate},
		},
	}
	act := &fakeActuator{tagBusy: map[int32]bool{}}
	sys := NewSystem(prog, 0, 0, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)

	sc.Step(world.NewArena())
	require.Len(t, act.printed, 1)
	assert.Equal(t, "hello 7", act.printed[0])
	assert.True(t, act.printBold[0])
}

func TestMapAndWorldVariableScopes(t *testing.T) {
	prog := &Program{Code: []Instr{
		{Op: OpPushByte, Arg: 10},
		{Op: OpAssignMapVar, Arg: 0},
		{Op: OpPushByte, Arg: 20},
		{Op: OpAssignWorldVar, Arg: 0},
		{Op: OpPushMapVar, Arg: 0},
		{Op: OpPushWorldVar, Arg: 0},
		{Op: OpAdd},
		{Op: OpTerminate},
	}}
	act := &fakeActuator{tagBusy: map[int32]bool{}}
	sys := NewSystem(prog, 1, 1, act)
	sc := sys.Start(1, [3]int32{}, world.Nil)

	sc.Step(world.NewArena())
	assert.Equal(t, int32(30), sc.stack[len(sc.stack)-1])
	assert.Equal(t, int32(10), sys.MapVars[0])
	assert.Equal(t, int32(20), sys.WorldVars[0])
}
