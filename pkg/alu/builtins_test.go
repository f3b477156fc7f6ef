package alu

import (
	"errors"
	"testing"
	"time"
)

func TestBuiltinPrintEmptiesStack(t *testing.T) {
	s, w := freshState(program())
	s.stack.push(Number(1))
	s.stack.push(String("two"))

	if err := builtinPrint(s); err != nil {
		t.Fatalf("builtinPrint: %v", err)
	}
	if !s.stack.empty() {
		t.Error("print should empty the stack")
	}
	if w.String() != "two\n1\n" {
		t.Fatalf("output = %q, want %q", w.String(), "two\n1\n")
	}
}

func TestBuiltinWaitBlocks(t *testing.T) {
	s, _ := freshState(program())
	s.stack.push(Number(15))

	start := time.Now()
	if err := builtinWait(s); err != nil {
		t.Fatalf("builtinWait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("builtinWait returned after %v, want at least 15ms", elapsed)
	}
}

func TestBuiltinWaitRejectsNonNumber(t *testing.T) {
	s, _ := freshState(program())
	s.stack.push(String("not a number"))

	if err := builtinWait(s); !errors.Is(err, ErrTypes) {
		t.Fatalf("builtinWait = %v, want ErrTypes", err)
	}
}

func TestLookupBuiltin(t *testing.T) {
	idx, fn, ok := lookupBuiltin(defaultBuiltins, "print")
	if !ok || fn == nil || idx != 0 {
		t.Fatalf("lookupBuiltin(print) = %d, %v, %v", idx, fn, ok)
	}
	if _, _, ok := lookupBuiltin(defaultBuiltins, "nope"); ok {
		t.Error("lookupBuiltin should miss an unregistered name")
	}
}
