package alu

import (
	"encoding/binary"
	"math"
)

// Signature is the fixed 3-byte magic that must prefix every compiled
// program: 0x1B 0xCA 0xCA.
var Signature = [3]byte{0x1B, 0xCA, 0xCA}

// Instruction is one decoded bytecode record: an opcode plus its inline
// operand bytes (verbatim, not yet interpreted). Spec §9 recommends a
// dense vector with a cursor over the original's doubly-linked list so
// that jumps are bounds-checked integer arithmetic instead of pointer
// walks; Program is exactly that vector.
type Instruction struct {
	Op      Opcode
	Operand []byte
}

// Program is the decoded instruction sequence produced by Feed.
type Program struct {
	Instructions []Instruction
}

// hasSignature reports whether buf begins with the 3-byte magic.
func hasSignature(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == Signature[0] && buf[1] == Signature[1] && buf[2] == Signature[2]
}

// Feed decodes buf (already positioned after the 3-byte signature) into a
// Program. Decoding stops cleanly, with no error, at HALT (0x00), at any
// opcode >= END, or at EOF; an operand (fixed-width or NUL-terminated)
// that runs past the end of buf is reported as ErrTruncated. This bounds the NUL scan that spec §4.2/§9 flags as an
// "open trust issue" in the original instead of reading past the buffer.
func Feed(buf []byte) (*Program, error) {
	prog := &Program{Instructions: make([]Instruction, 0, len(buf)/2)}
	pos := 0
	for pos < len(buf) {
		op := Opcode(buf[pos])
		if op == OpHalt {
			break
		}
		if op >= OpEnd {
			break
		}

		info, known := opcodeTable[op]
		if !known {
			// Unlisted opcodes carry no operand and are no-ops at
			// dispatch time (spec §4.3); the decoder still needs a
			// width to know how many bytes the record occupies, and
			// zero is the only safe assumption for an opcode nothing
			// in the table describes.
			info = opcodeInfo{operand: operandNone}
		}

		width, kind := 0, info.operand
		if op.IsJump() {
			kind = operandI32
		}

		switch kind {
		case operandNone:
			width = 0
		case operandU8:
			width = 1
		case operandI32, operandU32:
			width = 4
		case operandF64:
			width = 8
		case operandCString:
			nul := indexByte(buf[pos+1:], 0)
			if nul < 0 {
				return nil, ErrTruncated
			}
			width = nul + 1
		}

		if pos+1+width > len(buf) {
			return nil, ErrTruncated
		}

		rec := Instruction{
			Op:      op,
			Operand: append([]byte(nil), buf[pos+1:pos+1+width]...),
		}
		prog.Instructions = append(prog.Instructions, rec)
		pos += 1 + width
	}
	return prog, nil
}

// Encode reconstructs the verbatim byte buffer a Program decoded from
// (the signature-stripped form Feed itself consumes), satisfying spec
// §8's "encode(decode(buf)) = buf" round trip for any buffer Feed
// decoded without error. Feed stops at HALT or EOF without keeping a
// trailing HALT as an Instruction, so Encode never emits one; a caller
// round-tripping a buffer that used the optional explicit HALT
// terminator (spec §6) must append it back itself.
func Encode(prog *Program) []byte {
	buf := make([]byte, 0, len(prog.Instructions)*2)
	for _, instr := range prog.Instructions {
		buf = append(buf, byte(instr.Op))
		buf = append(buf, instr.Operand...)
	}
	return buf
}

// indexByte returns the index of the first byte in b equal to c, or -1.
func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func readI32(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b))
}

func readU32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

func readF64(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// cString returns the operand bytes with the trailing NUL removed.
func cString(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		return string(b[:n-1])
	}
	return string(b)
}
