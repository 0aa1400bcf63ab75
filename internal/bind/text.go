package bind

import (
	"fmt"
	"strconv"
	"strings"
)

// classNamer/className resolve a class id to/from its textual name for
// persistence; callers that don't care about human-readable class names
// can pass nil and get "class<N>" instead.
type classNamer interface {
	Name(class int) string
	ID(name string) (int, bool)
}

// eventPrefix textualizes an event's down/up/repeat state per §4.10: "+"
// (down), "-" (up), "*" (repeat).
func eventPrefix(ev Event) string {
	switch {
	case ev.Repeat:
		return "*"
	case ev.Down:
		return "+"
	default:
		return "-"
	}
}

func eventTypeName(t EventType) string {
	switch t {
	case EventKey:
		return "key"
	case EventPOV:
		return "pov"
	case EventMouseButton:
		return "mouse"
	case EventJoyButton:
		return "joy"
	case EventAxis:
		return "axis"
	default:
		return "unknown"
	}
}

func parseEventTypeName(s string) (EventType, bool) {
	switch s {
	case "key":
		return EventKey, true
	case "pov":
		return EventPOV, true
	case "mouse":
		return EventMouseButton, true
	case "joy":
		return EventJoyButton, true
	case "axis":
		return EventAxis, true
	default:
		return 0, false
	}
}

// eventText renders an event as "<prefix><type><datum>", e.g. "+key65".
func eventText(t EventType, datum int32, down bool) string {
	prefix := "+"
	if !down {
		prefix = "-"
	}
	return fmt.Sprintf("%s%s%d", prefix, eventTypeName(t), datum)
}

// FormatLine renders one binding as the persisted text line from §4.10:
// `bind <class> <event> "<command>"`.
func FormatLine(b Binding, className string) string {
	if className == "" {
		className = fmt.Sprintf("class%d", b.Class)
	}
	return fmt.Sprintf("bind %s +%s%d %q", className, eventTypeName(b.Type), b.Datum, b.Command)
}

// ParseLine parses one `bind <class> <event> "<command>"` line back into a
// Binding. classResolve maps a class name to its id; pass nil to parse
// `classN` fallback names directly.
func ParseLine(line string, classResolve func(name string) (int, bool)) (Binding, error) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 4)
	if len(fields) < 4 || fields[0] != "bind" {
		return Binding{}, fmt.Errorf("bind: malformed line %q", line)
	}

	class, ok := resolveClass(fields[1], classResolve)
	if !ok {
		return Binding{}, fmt.Errorf("bind: unknown class %q", fields[1])
	}

	evText := fields[2]
	if len(evText) < 2 {
		return Binding{}, fmt.Errorf("bind: malformed event %q", evText)
	}
	typeAndDatum := evText[1:]

	var typeName string
	var datumStr string
	for i, r := range typeAndDatum {
		if r >= '0' && r <= '9' {
			typeName = typeAndDatum[:i]
			datumStr = typeAndDatum[i:]
			break
		}
	}
	t, ok := parseEventTypeName(typeName)
	if !ok {
		return Binding{}, fmt.Errorf("bind: unknown event type %q", typeName)
	}
	datum, err := strconv.Atoi(datumStr)
	if err != nil {
		return Binding{}, fmt.Errorf("bind: bad datum in %q: %w", evText, err)
	}

	command := strings.Trim(fields[3], `"`)
	return Binding{Class: class, Type: t, Datum: int32(datum), Command: command}, nil
}

func resolveClass(name string, classResolve func(name string) (int, bool)) (int, bool) {
	if classResolve != nil {
		return classResolve(name)
	}
	if strings.HasPrefix(name, "class") {
		n, err := strconv.Atoi(strings.TrimPrefix(name, "class"))
		if err == nil {
			return n, true
		}
	}
	return 0, false
}
