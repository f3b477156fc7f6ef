package alu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/alu-lang/alu/internal/hostconfig"
	"github.com/alu-lang/alu/internal/hostio"
	"github.com/alu-lang/alu/internal/progcache"
	"github.com/alu-lang/alu/internal/snapshot"
	"github.com/alu-lang/alu/internal/trace"
)

// State holds everything one VM run needs: the operand stack, the
// garbage list, the register bank, the decoded program, and the ambient
// resources (trace sink, host config, optional program cache) spec §3
// calls out under "State". Create with NewState; release with Close.
type State struct {
	err error

	stack     *stack
	garbage   []Value
	registers *registers
	program   *Program
	cursor    int

	builtins []builtinEntry

	rngSeed int64
	verbose bool
	writer  io.Writer

	runID  string
	trace  *trace.Sink
	cache  *progcache.Cache
	config hostconfig.Config
}

// Option configures a State at construction time.
type Option func(*State)

// WithConfig applies a loaded host config (internal/hostconfig), honoring
// its verbose default, built-in allowlist, and program-cache toggle.
func WithConfig(cfg hostconfig.Config) Option {
	return func(s *State) {
		s.config = cfg
		s.verbose = cfg.Alu.Verbose
		s.rngSeed = cfg.Alu.RNGSeed
		if len(cfg.Alu.Builtins) > 0 {
			filtered := make([]builtinEntry, 0, len(cfg.Alu.Builtins))
			for _, e := range defaultBuiltins {
				if cfg.BuiltinAllowed(e.name) {
					filtered = append(filtered, e)
				}
			}
			s.builtins = filtered
		}
	}
}

// WithWriter overrides the destination print writes to (default os.Stdout).
func WithWriter(w io.Writer) Option {
	return func(s *State) { s.writer = w }
}

// WithVerbose forces verbose tracing on or off, overriding any config.
func WithVerbose(v bool) Option {
	return func(s *State) { s.verbose = v }
}

// WithProgramCache attaches a program-metadata cache (internal/progcache).
// The State does not own the cache's lifetime; the caller closes it.
func WithProgramCache(c *progcache.Cache) Option {
	return func(s *State) { s.cache = c }
}

// NewState constructs an empty, ready-to-feed State.
func NewState(opts ...Option) *State {
	s := &State{
		stack:     newStack(),
		registers: newRegisters(),
		builtins:  defaultBuiltins,
		writer:    os.Stdout,
		runID:     uuid.New().String(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.trace = trace.New("alu", s.verbose)
	return s
}

// Err returns the state's current error, if any (spec §3's "error
// string (optional)").
func (s *State) Err() error {
	return s.err
}

// fail records err as the state's terminal error, if one is not already
// set (the first error wins, matching the original's "errors... none are
// recoverable within the VM" policy), and logs it.
func (s *State) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	s.trace.Errorf("run=%s error=%v", s.runID, err)
	return err
}

// Start decodes buf (which must begin with the 3-byte signature) and
// positions the state to execute it. It is the entry point spec §4.2
// describes: "the entry point start skips those bytes before calling
// the decoder."
func (s *State) Start(buf []byte) error {
	if !hasSignature(buf) {
		return s.fail(ErrBadSignature)
	}
	prog, err := Feed(buf[3:])
	if err != nil {
		return s.fail(err)
	}
	s.program = prog
	s.cursor = 0
	if s.cache != nil && s.config.Alu.CachePrograms {
		_ = s.cache.RecordRun(progcache.Hash(buf), len(buf))
	}
	return nil
}

// StartFile reads path via internal/hostio and calls Start on its
// contents, mapping a missing file to ErrFileNotFound and any other
// read failure to ErrIO (spec §7's NOFIL and collapsed CREAD/CSTAT).
func (s *State) StartFile(path string) error {
	buf, err := hostio.ReadFile(path)
	if err != nil {
		if errors.Is(err, hostio.ErrNotFound) {
			return s.fail(fmt.Errorf("%w: %s", ErrFileNotFound, path))
		}
		return s.fail(fmt.Errorf("%w: %w", ErrIO, err))
	}
	return s.Start(buf)
}

// Close releases the state's resources in the fixed order spec §3/§5
// specify: stack → garbage → instructions → registers → ambient
// resources → state. In Go, "releasing" the stack/garbage/instructions/
// registers is simply dropping the references (the garbage collector
// does the rest); Close's job is the ambient resources that do need an
// explicit release (nothing currently held per-State — the program cache
// is owned and closed by the embedder, per WithProgramCache's doc comment)
// and returning any terminal error. Close itself prints nothing; the error
// was already logged through the trace sink by fail when it was recorded.
func (s *State) Close() error {
	s.stack = nil
	s.garbage = nil
	s.program = nil
	s.registers = nil
	return s.err
}

// Snapshot captures the current stack/register/cursor state as portable
// CBOR bytes (internal/snapshot), for checkpointing or debugging. It does
// not capture the decoded program itself — Restore operates against a
// State that has already called Start/Feed on the same bytecode.
func (s *State) Snapshot() ([]byte, error) {
	snap := &snapshot.State{Cursor: s.cursor, RNGSeed: s.rngSeed}
	for i := s.stack.len() - 1; i >= 0; i-- {
		v, _ := s.stack.peek(i)
		snap.Stack = append(snap.Stack, snapshotValue(v))
	}
	for idx, v := range s.registers.slots {
		sv := snapshotValue(v)
		snap.Registers = append(snap.Registers, snapshot.Register{Index: idx, Tag: sv.Tag, Text: sv.Text, Num: sv.Num})
	}
	return snapshot.Marshal(snap)
}

// snapshotValue captures v's tag plus whichever payload field round-trips
// it exactly: Num for Number (Text alone is the display-rounded String()
// form and would lose precision), Text for Bool/String.
func snapshotValue(v Value) snapshot.StackValue {
	sv := snapshot.StackValue{Tag: uint8(v.Tag())}
	switch v.Tag() {
	case TagNumber:
		sv.Num = v.AsNumber()
	default:
		sv.Text = v.String()
	}
	return sv
}

// Restore re-populates the stack/register/cursor state from bytes
// produced by Snapshot. Values are restored from their exact payload
// (String/Number/Bool survive round-trip exactly; Abstract/Null are
// restored as Null, since a function-table identity is not portable
// across snapshot boundaries).
func (s *State) Restore(data []byte) error {
	snap, err := snapshot.Unmarshal(data)
	if err != nil {
		return s.fail(err)
	}
	s.stack.clear()
	for _, sv := range snap.Stack {
		s.stack.push(restoreValue(sv.Tag, sv.Text, sv.Num))
	}
	s.registers = newRegisters()
	for _, r := range snap.Registers {
		s.registers.load(r.Index, restoreValue(r.Tag, r.Text, r.Num))
	}
	s.cursor = snap.Cursor
	s.rngSeed = snap.RNGSeed
	return nil
}

func restoreValue(tag uint8, text string, num float64) Value {
	switch Tag(tag) {
	case TagNumber:
		return Number(num)
	case TagBool:
		return Bool(text == "true")
	case TagString:
		return String(text)
	default:
		return Null()
	}
}
