package alu

import "errors"

// Sentinel errors, one per kind from the original error taxonomy. Compare
// with errors.Is; Execute and Close never return anything else for VM-level
// failures.
var (
	// ErrStackDepth is raised when an operation needs more operands than
	// the stack currently holds, or when a host-configured depth cap
	// would be exceeded by a push.
	ErrStackDepth = errors.New("alu: stack depth")

	// ErrNoRegister is raised by UNLOAD/DEFUNLOAD against an absent index.
	ErrNoRegister = errors.New("alu: no such register")

	// ErrNoStack is raised by a peek index beyond the current stack depth.
	ErrNoStack = errors.New("alu: no such stack slot")

	// ErrNotFound is raised when PUSHDEF names an unregistered built-in.
	ErrNotFound = errors.New("alu: built-in not found")

	// ErrTypes is raised on a tag mismatch or an illegal tag for an
	// operation (SUMSTACK, CALL on a non-Abstract value, ...).
	ErrTypes = errors.New("alu: type mismatch")

	// ErrOutOfJump is raised when a relative jump would walk off either
	// end of the instruction list.
	ErrOutOfJump = errors.New("alu: jump out of range")

	// ErrFileNotFound is raised by StartFile when the path does not exist.
	ErrFileNotFound = errors.New("alu: file not found")

	// ErrTruncated is raised by the decoder when an instruction's operand
	// (fixed-width, or a NUL-terminated string) runs past the end of the
	// buffer. This is the bounded-scan redesign of the original's open
	// trust issue (spec §4.2/§9): a malformed buffer is a decode error,
	// never an out-of-bounds read.
	ErrTruncated = errors.New("alu: truncated bytecode")

	// ErrBadSignature is raised when a buffer does not begin with the
	// 3-byte magic 0x1B 0xCA 0xCA.
	ErrBadSignature = errors.New("alu: bad signature")

	// ErrIO wraps a host I/O failure (file read or stat). The underlying
	// *os.PathError is wrapped alongside it and available via errors.As.
	ErrIO = errors.New("alu: host I/O error")
)
