package alu

import (
	"bytes"
	"errors"
	"testing"
)

func TestHasSignature(t *testing.T) {
	good := append([]byte{0x1B, 0xCA, 0xCA}, byte(OpHalt))
	if !hasSignature(good) {
		t.Error("expected a buffer starting with the magic to match")
	}
	bad := []byte{0x00, 0xCA, 0xCA}
	if hasSignature(bad) {
		t.Error("a buffer with the wrong first byte must not match")
	}
	if hasSignature([]byte{0x1B, 0xCA}) {
		t.Error("a buffer shorter than 3 bytes must not match")
	}
}

func TestFeedStopsAtHalt(t *testing.T) {
	buf := []byte{byte(OpPushBool), 1, byte(OpHalt), byte(OpPushBool), 0}
	prog, err := Feed(buf)
	if err != nil {
		t.Fatalf("Feed returned %v", err)
	}
	if len(prog.Instructions) != 1 {
		t.Fatalf("expected decoding to stop at HALT, got %d instructions", len(prog.Instructions))
	}
}

func TestFeedDecodesFixedAndVariableWidth(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(OpPushNum))
	buf.Write(beF64(3.5))
	buf.WriteByte(byte(OpPushStr))
	buf.Write(cstr("hi"))
	buf.WriteByte(byte(OpJmp))
	buf.Write(beI32(-2))

	prog, err := Feed(buf.Bytes())
	if err != nil {
		t.Fatalf("Feed returned %v", err)
	}
	if len(prog.Instructions) != 3 {
		t.Fatalf("got %d instructions, want 3", len(prog.Instructions))
	}
	if readF64(prog.Instructions[0].Operand) != 3.5 {
		t.Errorf("PUSHNUM operand decoded as %v, want 3.5", readF64(prog.Instructions[0].Operand))
	}
	if cString(prog.Instructions[1].Operand) != "hi" {
		t.Errorf("PUSHSTR operand decoded as %q, want %q", cString(prog.Instructions[1].Operand), "hi")
	}
	if readI32(prog.Instructions[2].Operand) != -2 {
		t.Errorf("JMP operand decoded as %d, want -2", readI32(prog.Instructions[2].Operand))
	}
}

func TestFeedTruncatedFixedWidthOperand(t *testing.T) {
	buf := []byte{byte(OpPushNum), 1, 2, 3} // needs 8 bytes, only has 3
	_, err := Feed(buf)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Feed returned %v, want ErrTruncated", err)
	}
}

func TestFeedTruncatedCString(t *testing.T) {
	buf := []byte{byte(OpPushStr), 'h', 'i'} // no NUL terminator anywhere
	_, err := Feed(buf)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Feed returned %v, want ErrTruncated", err)
	}
}

func TestFeedUnknownOpcodeAboveEndStopsDecoding(t *testing.T) {
	buf := []byte{byte(OpRet), 0x7F, byte(OpRet)}
	prog, err := Feed(buf)
	if err != nil {
		t.Fatalf("Feed returned %v", err)
	}
	if len(prog.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1 (decoding stops at 0x7F)", len(prog.Instructions))
	}
	if prog.Instructions[0].Op != OpRet {
		t.Errorf("first instruction = %v, want RET", prog.Instructions[0].Op)
	}
}

// TestEncodeEOFTerminatedRoundTrips pins spec §8's "encode(decode(buf)) =
// buf" invariant for a buffer that relies on running out of bytes
// instead of an explicit HALT (spec §6: the terminator is "optional if
// EOF reached").
func TestEncodeEOFTerminatedRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(OpPushNum))
	buf.Write(beF64(125.3))
	buf.WriteByte(byte(OpPushDef))
	buf.Write(cstr("print"))
	buf.WriteByte(byte(OpSuper))
	buf.WriteByte(byte(OpCall))

	prog, err := Feed(buf.Bytes())
	if err != nil {
		t.Fatalf("Feed returned %v", err)
	}
	if got := Encode(prog); !bytes.Equal(got, buf.Bytes()) {
		t.Fatalf("Encode(Feed(buf)) = %x, want %x", got, buf.Bytes())
	}
}

// TestEncodeHaltTerminatedRoundTrips covers the other legal terminator
// form: an explicit trailing HALT byte, which Feed deliberately excludes
// from Instructions and which Encode therefore does not reproduce on its
// own — the caller appends it back, as the doc comment on Encode says.
func TestEncodeHaltTerminatedRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(OpPushBool))
	buf.WriteByte(1)
	buf.WriteByte(byte(OpHalt))

	prog, err := Feed(buf.Bytes())
	if err != nil {
		t.Fatalf("Feed returned %v", err)
	}
	got := append(Encode(prog), byte(OpHalt))
	if !bytes.Equal(got, buf.Bytes()) {
		t.Fatalf("Encode(Feed(buf))+HALT = %x, want %x", got, buf.Bytes())
	}
}

// TestEncodeGoldenScenarioOneRoundTrips uses spec §8 scenario 1's literal
// bytes (arithmetic-and-print), the PUSHNUM operand given exactly as the
// spec's hex listing rather than re-derived from beF64, as a direct
// check against the documented wire format rather than our own helper.
func TestEncodeGoldenScenarioOneRoundTrips(t *testing.T) {
	buf := []byte{
		byte(OpPushNum), 0x40, 0x5F, 0x53, 0x33, 0x33, 0x33, 0x33, 0x34,
		byte(OpPushDef), 'p', 'r', 'i', 'n', 't', 0x00,
		byte(OpSuper),
		byte(OpCall),
		byte(OpHalt),
	}
	prog, err := Feed(buf)
	if err != nil {
		t.Fatalf("Feed returned %v", err)
	}
	got := append(Encode(prog), byte(OpHalt))
	if !bytes.Equal(got, buf) {
		t.Fatalf("Encode(Feed(buf))+HALT = %x, want %x", got, buf)
	}
}

func TestFeedOpcodeAtOrAboveEndStopsDecoding(t *testing.T) {
	buf := []byte{byte(OpRet), byte(OpEnd), byte(OpRet)}
	prog, err := Feed(buf)
	if err != nil {
		t.Fatalf("Feed returned %v", err)
	}
	if len(prog.Instructions) != 1 {
		t.Fatalf("got %d instructions, want decoding to stop at END", len(prog.Instructions))
	}
}
