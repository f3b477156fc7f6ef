package alu

import (
	"fmt"

	"github.com/alu-lang/alu/internal/hostio"
)

// builtinEntry pairs a built-in's name with its implementation. Lookup is
// a linear scan by byte-equal name (spec §4.7) — order of declaration is
// never observable, so a slice is as good a home for this as a map; the
// teacher's chazu-maggie opcode table (pkg/alu/opcodes.go, grounded on
// pkg/bytecode/opcodes.go) uses the same "small static table, scan by
// value" shape for opcode metadata.
type builtinEntry struct {
	name string
	fn   Builtin
}

// defaultBuiltins is the table PUSHDEF resolves against by default. A
// State created with NewState always has this table available, unless a
// host config allowlist narrows it (see internal/hostconfig).
var defaultBuiltins = []builtinEntry{
	{"print", builtinPrint},
	{"wait", builtinWait},
}

// lookupBuiltin performs the linear scan spec §4.7 describes, returning
// the table index alongside the function so Value.Abstract can carry a
// stable, reproducible identity for String() (spec §4.8).
func lookupBuiltin(table []builtinEntry, name string) (int, Builtin, bool) {
	for i, e := range table {
		if e.name == name {
			return i, e.fn, true
		}
	}
	return 0, nil, false
}

// builtinPrint implements spec §4.7's print: while the stack is
// non-empty, convert the top to a string in place, write it followed by
// a newline, then pop. The stack ends up empty.
func builtinPrint(s *State) error {
	for !s.stack.empty() {
		v, _ := s.stack.detach()
		fmt.Fprintln(s.writer, v.String())
	}
	return nil
}

// builtinWait implements spec §4.7's wait(ms): its operand is popped
// from the stack after CALL has already popped the Abstract callee
// itself, per the spec's explicit routing instruction. ms must be a
// Number; any other tag is ErrTypes.
func builtinWait(s *State) error {
	v, ok := s.stack.detach()
	if !ok {
		return ErrStackDepth
	}
	if v.Tag() != TagNumber {
		return ErrTypes
	}
	ms := v.AsNumber()
	if ms < 0 {
		ms = 0
	}
	hostio.Sleep(uint32(ms))
	return nil
}
