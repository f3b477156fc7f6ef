// Package snapshot serializes a point-in-time capture of VM state to
// canonical CBOR, mirroring the vm/dist/wire.go pattern in the teacher
// repo (cbor.CanonicalEncOptions().EncMode(), used there for gossiped
// chunks/announcements). This is a debugging/embedding affordance layered
// on top of the core: nothing in pkg/alu's opcode dispatch depends on it.
package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Register is a captured (index, value) pair from the register bank,
// keyed by its stable index rather than a map so encoding order is
// deterministic. Num carries the exact float64 payload for a Number
// register: Text alone is Value.String()'s display rounding (spec
// §4.8's six-fractional-digit rule) and is not precise enough to
// reconstruct the original bits on Restore.
type Register struct {
	Index uint32
	Tag   uint8
	Text  string // canonical string form, per Value.String()
	Num   float64
}

// State is the serializable capture of an alu.State: its stack (bottom to
// top), its registers, and the instruction cursor. It intentionally
// excludes host-only fields (trace sink, cache handle) — those are
// re-attached by the embedder on Restore, not part of the VM-level state.
type State struct {
	Stack      []StackValue
	Registers  []Register
	Cursor     int
	RNGSeed    int64
}

// StackValue is a captured operand-stack entry. See Register.Num.
type StackValue struct {
	Tag  uint8
	Text string
	Num  float64
}

// Marshal encodes s as canonical CBOR.
func Marshal(s *State) ([]byte, error) {
	return encMode.Marshal(s)
}

// Unmarshal decodes CBOR bytes produced by Marshal.
func Unmarshal(data []byte) (*State, error) {
	var s State
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &s, nil
}
