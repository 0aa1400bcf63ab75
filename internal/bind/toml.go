package bind

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// tomlBinding is the on-disk shape for one binding in the TOML export
// format: a friendlier alternative to the `bind` text lines for tooling
// that wants structured config instead of a line protocol.
type tomlBinding struct {
	Class   string `toml:"class"`
	Type    string `toml:"type"`
	Datum   int32  `toml:"datum"`
	Command string `toml:"command"`
}

type tomlDocument struct {
	Bindings []tomlBinding `toml:"binding"`
}

// ExportTOML renders bindings as a TOML document, resolving each class id
// to a name via className (pass nil for "classN" fallback names).
func ExportTOML(bindings []Binding, className func(class int) string) ([]byte, error) {
	doc := tomlDocument{}
	for _, b := range bindings {
		name := ""
		if className != nil {
			name = className(b.Class)
		}
		if name == "" {
			name = fmt.Sprintf("class%d", b.Class)
		}
		doc.Bindings = append(doc.Bindings, tomlBinding{
			Class:   name,
			Type:    eventTypeName(b.Type),
			Datum:   b.Datum,
			Command: b.Command,
		})
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportTOML parses a TOML document produced by ExportTOML back into
// Bindings, resolving each class name to an id via classResolve.
func ImportTOML(data []byte, classResolve func(name string) (int, bool)) ([]Binding, error) {
	var doc tomlDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}

	out := make([]Binding, 0, len(doc.Bindings))
	for _, tb := range doc.Bindings {
		t, ok := parseEventTypeName(tb.Type)
		if !ok {
			continue
		}
		class, ok := resolveClass(tb.Class, classResolve)
		if !ok {
			continue
		}
		out = append(out, Binding{Class: class, Type: t, Datum: tb.Datum, Command: tb.Command})
	}
	return out, nil
}
