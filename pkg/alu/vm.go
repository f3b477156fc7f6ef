package alu

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Execute walks the decoded program from the current cursor, dispatching
// each instruction to its handler (spec §4.3). It stops when: the
// context is cancelled, RET is reached, the cursor walks off the end of
// the program, or a handler sets a non-nil error on the state. Execute
// is safe to call again after it returns (e.g. after Restore repositions
// the cursor) as long as Start decoded a program first.
func (s *State) Execute(ctx context.Context) error {
	if s.program == nil {
		return s.fail(ErrFileNotFound)
	}
	for s.cursor < len(s.program.Instructions) {
		if err := ctx.Err(); err != nil {
			return s.fail(err)
		}
		instr := s.program.Instructions[s.cursor]
		s.trace.Instruction(s.runID, s.cursor, instr.Op.String(), s.stack.len())

		if instr.Op == OpRet {
			return s.err
		}
		if instr.Op.IsJump() {
			if err := s.jump(instr); err != nil {
				return s.fail(err)
			}
			continue
		}

		if err := s.dispatch(instr); err != nil {
			return s.fail(err)
		}
		s.cursor++
	}
	return s.err
}

// dispatch runs the handler for one non-jump, non-RET instruction.
func (s *State) dispatch(instr Instruction) error {
	switch instr.Op {
	case OpHalt:
		return nil
	case OpPushNum:
		return s.push(Number(readF64(instr.Operand)))
	case OpPushStr:
		return s.push(String(cString(instr.Operand)))
	case OpPushBool:
		return s.push(Bool(instr.Operand[0] != 0))
	case OpPushDef:
		return s.pushDef(cString(instr.Operand))
	case OpSumStack:
		return s.SumStack()
	case OpStackClose:
		s.StackClose()
		return nil
	case OpEval:
		return s.Eval(instr.Operand[0])
	case OpSuper:
		s.stack.super()
		return nil
	case OpCall:
		return s.Call()
	case OpLoad:
		return s.Load(readU32(instr.Operand))
	case OpUnload:
		return s.Unload(readU32(instr.Operand))
	case OpDefunload:
		return s.Defunload(readU32(instr.Operand))
	default:
		// Unlisted opcodes are no-ops at dispatch time, per spec §4.3.
		return nil
	}
}

// push is the single push choke point, enforcing the host-configured
// max_stack_depth cap (SPEC_FULL §8 property 9) ahead of the underlying
// stack's unconditional append.
func (s *State) push(v Value) error {
	if limit := s.config.Alu.MaxStackDepth; limit > 0 && s.stack.len() >= limit {
		return s.fail(ErrStackDepth)
	}
	s.stack.push(v)
	return nil
}

func (s *State) pushDef(name string) error {
	idx, _, ok := lookupBuiltin(s.builtins, name)
	if !ok {
		return ErrNotFound
	}
	return s.push(Abstract(idx, name))
}

// jump implements spec §4.6's relative-branch logic: shouldJump decides
// whether to take the branch; the false path advances by one and drops
// the condition value; the true path drops the condition and moves the
// cursor by a fencepost that differs by sign.
//
// For n >= 0 (forward, including zero), spec §8's universal invariant is
// explicit: "Jumping by 0 skips exactly the next instruction; a taken
// jump by n, n≥0, is equivalent to executing n+1 instructions' worth of
// no-op advances" — n+1 instructions (the next one, plus n more) are
// skipped, and the cursor then lands one past the last skipped slot, so
// the total displacement is n+2.
//
// That invariant is scoped to n≥0; backward jumps keep §4.6's original
// "walk |n|+1 links" rule (displacement n-1, since n is already negative
// here), which a zero offset can never reach.
func (s *State) jump(instr Instruction) error {
	take, hasCond := s.shouldJump(instr.Op)
	if hasCond {
		s.stack.popk()
	}
	if !take {
		s.cursor++
		return nil
	}
	n := int(readI32(instr.Operand))
	target := s.cursor + n - 1
	if n >= 0 {
		target = s.cursor + n + 2
	}
	if target < 0 || target >= len(s.program.Instructions) {
		return ErrOutOfJump
	}
	s.cursor = target
	return nil
}

// shouldJump reports whether op's branch should be taken, and whether op
// consumes (pops) a condition value regardless of outcome. JMP always
// takes the branch and never consumes a condition. JEM/JNEM inspect the
// stack's emptiness without consuming anything. JTR/JFA inspect and
// consume the top Bool.
func (s *State) shouldJump(op Opcode) (take bool, hasCond bool) {
	switch op {
	case OpJmp:
		return true, false
	case OpJem:
		return s.stack.empty(), false
	case OpJnem:
		return !s.stack.empty(), false
	case OpJtr:
		v, ok := s.stack.peek(0)
		return ok && v.truthy(), true
	case OpJfa:
		v, ok := s.stack.peek(0)
		return ok && v.Tag() == TagBool && !v.AsBool(), true
	default:
		return false, false
	}
}

// SumStack implements spec §4.4: pop the top two, combine them by tag,
// clear whatever else remains on the stack, and push the single result.
func (s *State) SumStack() error {
	if s.stack.len() < 2 {
		return ErrStackDepth
	}
	a, _ := s.stack.peek(0)
	b, _ := s.stack.peek(1)
	if a.Tag() != b.Tag() {
		return ErrTypes
	}
	var result Value
	switch a.Tag() {
	case TagNumber:
		result = Number(a.AsNumber() + b.AsNumber())
	case TagBool:
		sum := 0.0
		if a.AsBool() {
			sum++
		}
		if b.AsBool() {
			sum++
		}
		result = Bool(sum != 0)
	case TagString:
		result = String(a.AsString() + b.AsString())
	default:
		return ErrTypes
	}
	s.stack.clear()
	return s.push(result)
}

// StackClose implements STACKCLOSE: discard everything on the stack.
func (s *State) StackClose() {
	s.stack.clear()
}

// eval bit masks, matching spec §4.5's "bit0 = equal, bit1 = a<b, bit2 = a>b".
const (
	evalEqual   = 1 << 0
	evalLess    = 1 << 1
	evalGreater = 1 << 2
)

// Eval implements spec §4.5: compare the top two values, clear the whole
// stack (both operands and anything beneath them) regardless of outcome,
// and push a Bool reporting whether the comparison result matches any bit
// set in mask.
func (s *State) Eval(mask byte) error {
	if s.stack.len() < 1 {
		return ErrStackDepth
	}
	a, _ := s.stack.peek(0)
	b, ok := s.stack.peek(1)
	if !ok || a.Tag() != b.Tag() {
		s.stack.clear()
		return s.push(Bool(false))
	}

	var sign int
	switch a.Tag() {
	case TagString:
		switch {
		case a.AsString() < b.AsString():
			sign = -1
		case a.AsString() > b.AsString():
			sign = 1
		}
	case TagNumber:
		sign = signOf(a.AsNumber() - b.AsNumber())
	case TagBool:
		sign = signOf(boolNum(a.AsBool()) - boolNum(b.AsBool()))
	default:
		s.stack.clear()
		return s.push(Bool(false))
	}

	var bits byte
	switch {
	case sign == 0:
		bits = evalEqual
	case sign < 0:
		bits = evalLess
	default:
		bits = evalGreater
	}

	s.stack.clear()
	return s.push(Bool(bits&mask != 0))
}

func signOf(n float64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Call implements spec §4.7's CALL: pop the top; if it is Abstract,
// invoke the referenced built-in with this state; any other tag is
// ErrTypes.
func (s *State) Call() error {
	v, ok := s.stack.detach()
	if !ok {
		return ErrStackDepth
	}
	s.garbage = append(s.garbage, v)
	if v.Tag() != TagAbstract {
		return ErrTypes
	}
	idx := v.AsAbstractIndex()
	if idx < 0 || idx >= len(s.builtins) {
		return ErrNotFound
	}
	return s.builtins[idx].fn(s)
}

// Load implements LOAD k: move the current top into register k, then
// clear the stack, per spec §3.
func (s *State) Load(k uint32) error {
	v, ok := s.stack.detach()
	if !ok {
		return ErrStackDepth
	}
	s.registers.load(k, v)
	s.stack.clear()
	return nil
}

// Unload implements UNLOAD k: push a copy of the value at register k;
// ErrNoRegister if absent.
func (s *State) Unload(k uint32) error {
	v, ok := s.registers.get(k)
	if !ok {
		return ErrNoRegister
	}
	return s.push(v)
}

// Defunload implements DEFUNLOAD k: move the value at register k onto
// the stack and delete the slot; ErrNoRegister if absent.
func (s *State) Defunload(k uint32) error {
	v, ok := s.registers.get(k)
	if !ok {
		return ErrNoRegister
	}
	s.registers.delete(k)
	return s.push(v)
}

// PushNumber, PushBool, and PushString let an embedder build a stack by
// hand (e.g. from a REPL or a test) using the same depth-capped push
// path the dispatcher uses.
func (s *State) PushNumber(n float64) error  { return s.push(Number(n)) }
func (s *State) PushBool(b bool) error       { return s.push(Bool(b)) }
func (s *State) PushString(str string) error { return s.push(String(str)) }

// Pop detaches and returns the top value.
func (s *State) Pop() (Value, bool) {
	return s.stack.detach()
}

// Peek returns the value i slots from the top (0 = top).
func (s *State) Peek(i int) (Value, bool) {
	return s.stack.peek(i)
}

// At is Peek's error-returning form, for embedders that want ErrNoStack
// (spec §7's NOSTK) rather than a bare bool when the requested slot
// doesn't exist.
func (s *State) At(i int) (Value, error) {
	v, ok := s.stack.peek(i)
	if !ok {
		return Value{}, ErrNoStack
	}
	return v, nil
}

// StackLen reports the current operand stack depth.
func (s *State) StackLen() int {
	return s.stack.len()
}

// NewInterruptible returns a State plus a context cancelled on SIGINT,
// reproducing the original's single-process "ctrl-C stops the VM"
// behavior (spec §5) for CLI-style embedding. The returned cancel func
// must be called (typically via defer) to stop listening for SIGINT.
func NewInterruptible(opts ...Option) (*State, context.Context, context.CancelFunc) {
	s := NewState(opts...)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, os.Interrupt)
	return s, ctx, stop
}
