// Package bind implements the input binding engine (§4.10, C11): classed
// event-to-command bindings, event matching, active-class command
// selection, and the class-toggle release-consistency synthesis that
// guarantees every "pressed" command gets a paired "release" even as the
// active class changes mid-press. Grounded on the teacher's internal/input
// key-state table, which tracks per-key down/repeat/up transitions and
// dispatches to whichever UI panel currently owns focus; generalized here
// from a single focus owner to an ordered stack of simultaneously active
// binding classes.
package bind

import "sort"

// EventType discriminates how a binding's Datum is matched against an
// incoming event (§4.10).
type EventType int

const (
	EventKey EventType = iota
	EventPOV
	EventMouseButton
	EventJoyButton
	EventAxis
)

// Event is one input event: a type, a datum (key code / POV direction /
// button bitmask / axis value), and a down/up/repeat state. HasUseClass,
// when set, forces dispatch to that one class instead of the normal
// highest-active-class search (used both for real events carrying an
// explicit class override, and for the synthetic release events this
// package generates).
type Event struct {
	Type        EventType
	Datum       int32
	Down        bool
	Repeat      bool
	HasUseClass bool
	UseClass    int
}

// Binding maps one event pattern to a command string within a class.
type Binding struct {
	Class   int
	Type    EventType
	Datum   int32
	Command string
}

// matches reports whether ev triggers b. Key/POV match by datum equality;
// mouse/joy match by chord (every bit set in b.Datum must be set in
// ev.Datum); axis events never match any binding (§4.10).
func (b Binding) matches(ev Event) bool {
	if b.Type != ev.Type {
		return false
	}
	switch ev.Type {
	case EventAxis:
		return false
	case EventMouseButton, EventJoyButton:
		return b.Datum != 0 && ev.Datum&b.Datum == b.Datum
	default: // EventKey, EventPOV
		return b.Datum == ev.Datum
	}
}

// Engine owns the full binding table and which classes are currently
// active.
type Engine struct {
	Bindings []Binding
	active   map[int]bool
}

func New() *Engine {
	return &Engine{active: make(map[int]bool)}
}

// SetClassActive marks class active/inactive.
func (e *Engine) SetClassActive(class int, active bool) {
	e.active[class] = active
}

func (e *Engine) IsClassActive(class int) bool { return e.active[class] }

// commandFor returns the command bound to (class, type, datum), if any.
func (e *Engine) commandFor(class int, t EventType, datum int32) (string, bool) {
	for _, b := range e.Bindings {
		if b.Class == class && b.matches(Event{Type: t, Datum: datum}) {
			return b.Command, true
		}
	}
	return "", false
}

// classesDescending returns every class id referenced by Bindings or
// SetClassActive, sorted highest first, matching §4.10's "iterate classes
// from highest id downward" selection rule.
func (e *Engine) classesDescending() []int {
	seen := make(map[int]bool)
	for _, b := range e.Bindings {
		seen[b.Class] = true
	}
	for c := range e.active {
		seen[c] = true
	}
	out := make([]int, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Select implements command selection for an incoming event (§4.10): an
// explicit UseClass dispatches directly to that class; otherwise the
// highest active class with a matching command wins.
func (e *Engine) Select(ev Event) (string, bool) {
	if ev.Type == EventAxis {
		return "", false
	}
	if ev.HasUseClass {
		return e.commandFor(ev.UseClass, ev.Type, ev.Datum)
	}
	for _, c := range e.classesDescending() {
		if !e.active[c] {
			continue
		}
		if cmd, ok := e.commandFor(c, ev.Type, ev.Datum); ok {
			return cmd, true
		}
	}
	return "", false
}

// HeldTrigger is one currently-held key/button, used by ToggleClass to
// decide which synthetic release events are needed.
type HeldTrigger struct {
	Type  EventType
	Datum int32
}

// ToggleClass implements the class-toggle release-consistency rule
// (§4.10, Testable Property 12 / Scenario D). Call it *after* flipping the
// toggled class's active state via SetClassActive, passing every trigger
// currently held down. For each held trigger that has a command in the
// toggled class:
//   - if some still-active class with a higher id than toggledClass also
//     has a command for the same trigger, nothing is synthesized (that
//     higher command was already the one actually dispatched, and remains
//     so);
//   - otherwise, a synthetic "up" event with UseClass set is posted for
//     every active class with a lower id than toggledClass that has a
//     command for the trigger, so each such command's earlier "press"
//     gets a matching "release" even though the active class has moved on;
//   - additionally, toggledClass itself is handled depending on which way
//     it just flipped: if it is now active, it is the new winner for this
//     trigger, so its command is redispatched with a synthetic "down"
//     event (the "+zoom" half of Scenario D); if it is now inactive, it
//     was the previous winner (nothing higher pre-empted it, or this
//     synthesis wouldn't run at all), so it gets a self-release instead.
//
// Grounded on con_bind.c's D_CMD(EnableBindClass): its first loop (count
// active classes with a command, bailing to zero if a higher one is
// active) matches the lower-release synthesis above; its second loop
// (descending from the top class, stopping at the first active-and-higher
// hit or once it passes toggledClass) is what produces the self-release —
// it only fires for k == toggledClass, and only when that class is
// presently inactive.
//
// Open Question resolution (§9, NUMBINDCLASSES vs NUMBINDCLASSES-1
// ambiguity): classes compare strictly by id (toggledClass itself is
// never counted as "higher" or "lower" than itself for the lower-release
// loop), so that loop never synthesizes a release for toggledClass's own
// class — only the dedicated self-release/redispatch step below does.
func (e *Engine) ToggleClass(toggledClass int, held []HeldTrigger) []Event {
	var synth []Event
	classes := e.classesDescending()

	for _, h := range held {
		if _, ok := e.commandFor(toggledClass, h.Type, h.Datum); !ok {
			continue
		}

		higherHandled := false
		for _, c := range classes {
			if c <= toggledClass {
				continue
			}
			if !e.active[c] {
				continue
			}
			if _, ok := e.commandFor(c, h.Type, h.Datum); ok {
				higherHandled = true
				break
			}
		}
		if higherHandled {
			continue
		}

		for _, c := range classes {
			if c >= toggledClass {
				continue
			}
			if !e.active[c] {
				continue
			}
			if _, ok := e.commandFor(c, h.Type, h.Datum); ok {
				synth = append(synth, Event{
					Type: h.Type, Datum: h.Datum, Down: false,
					HasUseClass: true, UseClass: c,
				})
			}
		}

		if e.active[toggledClass] {
			synth = append(synth, Event{
				Type: h.Type, Datum: h.Datum, Down: true,
				HasUseClass: true, UseClass: toggledClass,
			})
		} else {
			synth = append(synth, Event{
				Type: h.Type, Datum: h.Datum, Down: false,
				HasUseClass: true, UseClass: toggledClass,
			})
		}
	}
	return synth
}
