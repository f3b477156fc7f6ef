package alu

import (
	"encoding/binary"
	"math"
)

// beF64 encodes n as the 8 big-endian bytes PUSHNUM expects.
func beF64(n float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(n))
	return b
}

// beI32 encodes n as the 4 big-endian bytes jump opcodes expect.
func beI32(n int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(n))
	return b
}

// beU32 encodes n as the 4 big-endian bytes LOAD/UNLOAD/DEFUNLOAD expect.
func beU32(n uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, n)
	return b
}

// cstr appends the NUL terminator PUSHSTR/PUSHDEF expect.
func cstr(s string) []byte {
	return append([]byte(s), 0)
}

func instr(op Opcode, operand []byte) Instruction {
	return Instruction{Op: op, Operand: operand}
}

// program builds a Program from bare Instructions, bypassing Feed. This
// lets VM-level tests assemble a bytecode sequence by instruction index
// (which is exactly the unit jump offsets are measured in) instead of
// hand-computing byte offsets.
func program(instrs ...Instruction) *Program {
	return &Program{Instructions: instrs}
}

// freshState returns a State positioned at cursor 0 over prog, with
// output captured so tests can assert on it.
func freshState(prog *Program) (*State, *stringWriter) {
	w := &stringWriter{}
	s := NewState(WithWriter(w))
	s.program = prog
	return s, w
}

type stringWriter struct {
	buf []byte
}

func (w *stringWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *stringWriter) String() string {
	return string(w.buf)
}
