// Package save implements the save/restore pipeline (§4.12, C13):
// versioned serialization of mobjs, thinker subclasses, and per-sector/
// per-line map arrays, with serial-id fixups for cross-referencing
// pointers and a trailing consistency marker. Grounded on the teacher's
// internal/emulator/savestate.go, which builds one aggregate SaveState
// struct and round-trips it through encoding/gob over a bytes.Buffer;
// generalized here from one flat struct to a class-byte-prefixed thinker
// stream (§6) since thinkers are a tagged union rather than a fixed set of
// named subsystems, with gob still doing the per-record payload encoding
// as the engine's own same-version fast path.
package save

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/skyjake/doomsday-core/internal/coreerr"
)

// EngineVersion is the current save format version. Loading a file with a
// newer major version is a SaveError; older versions are accepted, with
// readHeader field-appending any header fields introduced after that
// version and Load applying translateLegacyMobjFlags to any mobj record
// whose own per-record Version predates the current bit layout. Grounded
// on doomv9gamestatereader.cpp's version-gated field reads and its call
// to SV_TranslateLegacyMobjFlags.
const EngineVersion byte = 1

// legacyHeaderVersion is the last header layout that did not carry a
// GameIdentity field; readHeader field-appends it as "" for files this
// old instead of failing to read past end of stream.
const legacyHeaderVersion byte = 0

// ClassEnd is the tc_end sentinel terminating the thinker record stream
// (§6: "terminator tc_end=0").
const ClassEnd byte = 0

// ConsistencyMarker is written once at the very end of the map data; a
// load that doesn't find it exactly here is corrupt (§4.12/§6).
const ConsistencyMarker byte = 0x1D

const descriptionLen = 24

// Header is the fixed-layout savegame header (§6): engine version, a
// user-facing description, a "version N" ASCII tag kept for legacy reader
// compatibility, the legacy game-rules/episode/map bytes, the in-game
// player-slot bitmap, big-endian 3-byte map time, and a game identity key
// used to reject saves from an incompatible content set.
type Header struct {
	EngineVersion byte
	Description   string // truncated/padded to descriptionLen on write
	GameRules     byte
	Episode       byte
	Map           byte
	PlayerPresent uint16
	MapTime       uint32 // only the low 24 bits are written
	GameIdentity  string
}

func writeHeader(buf *bytes.Buffer, h Header) error {
	buf.WriteByte(h.EngineVersion)

	var desc [descriptionLen]byte
	copy(desc[:], h.Description)
	buf.Write(desc[:])

	tag := fmt.Sprintf("version %d", h.EngineVersion)
	var tagBuf [16]byte
	copy(tagBuf[:], tag)
	buf.Write(tagBuf[:])

	buf.WriteByte(h.GameRules)
	buf.WriteByte(h.Episode)
	buf.WriteByte(h.Map)

	var presentBuf [2]byte
	binary.LittleEndian.PutUint16(presentBuf[:], h.PlayerPresent)
	buf.Write(presentBuf[:])

	buf.WriteByte(byte(h.MapTime >> 16))
	buf.WriteByte(byte(h.MapTime >> 8))
	buf.WriteByte(byte(h.MapTime))

	idBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(idBuf, uint32(len(h.GameIdentity)))
	buf.Write(idBuf)
	buf.WriteString(h.GameIdentity)

	return nil
}

const headerFixedLen = 1 + descriptionLen + 16 + 1 + 1 + 1 + 2 + 3

func readHeader(r *bytes.Reader) (Header, error) {
	var h Header

	fixed := make([]byte, headerFixedLen)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return h, &coreerr.SaveError{Op: "readHeader", Err: fmt.Errorf("short header: %w", err)}
	}

	h.EngineVersion = fixed[0]
	if h.EngineVersion > EngineVersion {
		return h, &coreerr.SaveError{Op: "readHeader", Err: fmt.Errorf("save version %d is newer than supported %d", h.EngineVersion, EngineVersion)}
	}

	desc := fixed[1 : 1+descriptionLen]
	h.Description = trimNulls(desc)

	off := 1 + descriptionLen + 16
	h.GameRules = fixed[off]
	h.Episode = fixed[off+1]
	h.Map = fixed[off+2]
	h.PlayerPresent = binary.LittleEndian.Uint16(fixed[off+3 : off+5])
	h.MapTime = uint32(fixed[off+5])<<16 | uint32(fixed[off+6])<<8 | uint32(fixed[off+7])

	// legacyHeaderVersion files were written before GameIdentity existed;
	// field-append it as empty rather than trying to read bytes that were
	// never written (§4.12's "accepts older versions by field-appending").
	if h.EngineVersion <= legacyHeaderVersion {
		return h, nil
	}

	var idLenBuf [4]byte
	if _, err := io.ReadFull(r, idLenBuf[:]); err != nil {
		return h, &coreerr.SaveError{Op: "readHeader", Err: fmt.Errorf("short identity length: %w", err)}
	}
	idLen := binary.LittleEndian.Uint32(idLenBuf[:])
	idBuf := make([]byte, idLen)
	if idLen > 0 {
		if _, err := io.ReadFull(r, idBuf); err != nil {
			return h, &coreerr.SaveError{Op: "readHeader", Err: fmt.Errorf("short identity: %w", err)}
		}
	}
	h.GameIdentity = string(idBuf)

	return h, nil
}

func trimNulls(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// gobCodec is shared by Save/Load so every record in the thinker stream is
// framed the same way: a raw class byte, immediately followed by one
// self-delimiting gob value. Multiple gob.Encode/Decode calls on the same
// Encoder/Decoder over the same stream compose safely because each gob
// value carries its own length, so interleaving raw bytes between whole
// values (never mid-value) is sound.
func newEncoder(buf *bytes.Buffer) *gob.Encoder { return gob.NewEncoder(buf) }
func newDecoder(r *bytes.Reader) *gob.Decoder   { return gob.NewDecoder(r) }
