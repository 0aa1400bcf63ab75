package netsession

import (
	"fmt"

	"github.com/skyjake/doomsday-core/internal/world"
)

// MaxPlayers bounds player slots to [1, MaxPlayers) per §4.11 (slot 0 is
// reserved, matching the source engine's console-player convention).
const MaxPlayers = 16

// WarpLimit is the position discrepancy, in map units, beyond which the
// server forces a new origin fix rather than trusting the client's
// reported coordinates (§4.11). A package variable, not a const, so a host
// can retune it from config.Config.WarpLimit without a rebuild, the same
// way internal/bias exposes its tunables.
var WarpLimit world.Fixed = world.Fixed(128 << 16)

// FixCounters is the §4.15 supplement: FIX_ANGLES/FIX_ORIGIN/FIX_MOM are
// three genuinely independent counters (a mover can correct origin
// without touching angles), not one combined counter.
type FixCounters struct {
	Angles, Origin, Mom uint32
}

// Ack is the client's most recently acknowledged counter triad.
type Ack struct {
	Angles, Origin, Mom uint32
}

// Player is one server-side connection slot.
type Player struct {
	Slot   int
	NodeID string
	Name   string

	Handshaking bool
	InGame      bool

	Fix FixCounters
	Ack Ack

	LastX, LastY, LastZ world.Fixed
	MobjID              world.ThinkerID
}

// OriginMatches reports whether the server and acknowledged origin
// counters agree, i.e. the server may trust this player's reported
// coordinates (§4.11, Testable Property 17).
func (p *Player) OriginMatches() bool { return p.Fix.Origin == p.Ack.Origin }

// Session is the server-side session: player slots, the coordinate and
// packet hooks below, and the single-remote-console authentication gate.
type Session struct {
	players [MaxPlayers]*Player

	consoleLoggedIn bool
	consoleNodeID   string

	// Smoother receives admitted client coordinates tagged with the
	// client's reported game time, for later interpolation; session
	// itself doesn't interpolate, it only gates admission.
	Smoother func(player *Player, x, y, z world.Fixed, clientGameTime uint32)

	Broadcast func(p Packet)
	SendTo    func(nodeID string, p Packet)
}

func New() *Session { return &Session{} }

// PlayerArrives allocates the first free slot in [1, MaxPlayers), per
// §4.11: initializes fix/ack counters to zero, marks handshake pending,
// and does not mark in_game until the client sends hello.
func (s *Session) PlayerArrives(nodeID, name string) (*Player, error) {
	for slot := 1; slot < MaxPlayers; slot++ {
		if s.players[slot] == nil {
			p := &Player{Slot: slot, NodeID: nodeID, Name: name, Handshaking: true}
			s.players[slot] = p
			return p, nil
		}
	}
	return nil, fmt.Errorf("netsession: no free player slot")
}

// HandleHello transitions a handshaking player to in_game, rejecting a
// duplicate nodeID already in game, and sends the handshake packet plus
// the material/thing-type/state id dictionaries (§4.11).
func (s *Session) HandleHello(nodeID string, gameKey string) (*Player, error) {
	p := s.findByNode(nodeID)
	if p == nil {
		return nil, fmt.Errorf("netsession: hello from unknown node %q", nodeID)
	}
	if p.InGame {
		return nil, fmt.Errorf("netsession: duplicate hello from node %q already in game", nodeID)
	}

	p.InGame = true
	p.Handshaking = false

	if s.SendTo != nil {
		s.SendTo(nodeID, Packet{Type: PsvHandshake, Payload: s.inGameBitmap()})
		s.SendTo(nodeID, Packet{Type: PsvMaterialArchive})
		s.SendTo(nodeID, Packet{Type: PsvMobjTypeIDList})
		s.SendTo(nodeID, Packet{Type: PsvMobjStateIDList})
	}
	if s.Broadcast != nil {
		s.Broadcast(Packet{Type: PktPlayerInfo, Payload: []byte(p.Name)})
	}
	return p, nil
}

func (s *Session) inGameBitmap() []byte {
	var bits uint16
	for i, p := range s.players {
		if p != nil && p.InGame {
			bits |= 1 << uint(i)
		}
	}
	return []byte{byte(bits), byte(bits >> 8)}
}

func (s *Session) findByNode(nodeID string) *Player {
	for _, p := range s.players {
		if p != nil && p.NodeID == nodeID {
			return p
		}
	}
	return nil
}

// PlayerLeaves clears a player's slot and emits an exit broadcast (§4.11).
func (s *Session) PlayerLeaves(nodeID string) {
	p := s.findByNode(nodeID)
	if p == nil {
		return
	}
	s.players[p.Slot] = nil
	if s.Broadcast != nil {
		s.Broadcast(Packet{Type: PsvPlayerExit, Payload: []byte{byte(p.Slot)}})
	}
	if s.consoleNodeID == nodeID {
		s.consoleLoggedIn = false
		s.consoleNodeID = ""
	}
}

// ApplyFix bumps whichever of the angle/origin/momentum counters are set
// in which, sends PSV_PLAYER_FIX, and marks the player's reported
// coordinates untrusted until the client's ack catches up.
type FixWhich struct{ Angles, Origin, Mom bool }

func (s *Session) ApplyFix(p *Player, which FixWhich) {
	if which.Angles {
		p.Fix.Angles++
	}
	if which.Origin {
		p.Fix.Origin++
	}
	if which.Mom {
		p.Fix.Mom++
	}
	if s.SendTo != nil {
		s.SendTo(p.NodeID, Packet{Type: PsvPlayerFix, Payload: encodeFix(p.Fix)})
	}
}

func encodeFix(f FixCounters) []byte {
	return []byte{
		byte(f.Angles), byte(f.Angles >> 8), byte(f.Angles >> 16), byte(f.Angles >> 24),
		byte(f.Origin), byte(f.Origin >> 8), byte(f.Origin >> 16), byte(f.Origin >> 24),
		byte(f.Mom), byte(f.Mom >> 8), byte(f.Mom >> 16), byte(f.Mom >> 24),
	}
}

// AckFix records a client's acknowledged counter triad.
func (s *Session) AckFix(p *Player, ack Ack) { p.Ack = ack }

// AdmitCoords implements §4.11's position reconciliation: client
// coordinates are admitted into the smoothing buffer only while the
// server's origin counter equals the client's acknowledged origin
// counter (Testable Property 17). A discrepancy beyond WarpLimit forces
// a fresh origin fix instead of admitting the report.
func (s *Session) AdmitCoords(p *Player, x, y, z world.Fixed, clientGameTime uint32) {
	if !p.OriginMatches() {
		return
	}

	dx := (x - p.LastX).Abs()
	dy := (y - p.LastY).Abs()
	dz := (z - p.LastZ).Abs()
	if dx > WarpLimit || dy > WarpLimit || dz > WarpLimit {
		s.ApplyFix(p, FixWhich{Origin: true})
		return
	}

	p.LastX, p.LastY, p.LastZ = x, y, z
	if s.Smoother != nil {
		s.Smoother(p, x, y, z, clientGameTime)
	}
}

// LoginConsole implements the single-remote-console-user gate (§4.11):
// login consumes a password and, on success, only that node's
// PKT_COMMAND2 packets are accepted until it disconnects.
func (s *Session) LoginConsole(nodeID, password, expected string) bool {
	if s.consoleLoggedIn {
		return false
	}
	if password != expected {
		return false
	}
	s.consoleLoggedIn = true
	s.consoleNodeID = nodeID
	return true
}

// AuthorizedCommand reports whether nodeID may issue PKT_COMMAND2 server
// commands right now.
func (s *Session) AuthorizedCommand(nodeID string) bool {
	return s.consoleLoggedIn && s.consoleNodeID == nodeID
}
