package alu

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag identifies the variant carried by a Value.
type Tag uint8

const (
	// TagNull carries no payload.
	TagNull Tag = iota
	// TagNumber carries a 64-bit IEEE-754 double.
	TagNumber
	// TagBool carries a boolean.
	TagBool
	// TagString carries a byte string.
	TagString
	// TagAbstract carries an unowned handle to a built-in function.
	TagAbstract
	// TagInstructionRef is reserved; no opcode in this bytecode format
	// emits it.
	TagInstructionRef
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagNumber:
		return "number"
	case TagBool:
		return "bool"
	case TagString:
		return "string"
	case TagAbstract:
		return "abstract"
	case TagInstructionRef:
		return "instructionref"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Builtin is the signature every host function registered in the built-in
// table must satisfy. It receives the State so it can operate through the
// same stack/register API opcode handlers use.
type Builtin func(*State) error

// Value is alu's tagged union. The zero Value is TagNull. Value is a plain
// Go struct (not a pointer), so "copy" throughout this package — required
// by LOAD/UNLOAD/peek semantics — is simply Go's ordinary value-copy
// semantics; there is no separate owning/freeing step.
type Value struct {
	tag   Tag
	num   float64
	boo   bool
	str   string
	absIdx int // index into the built-in table, for TagAbstract
	absName string
}

// Null returns the Null value.
func Null() Value { return Value{tag: TagNull} }

// Number returns a Number value wrapping n.
func Number(n float64) Value { return Value{tag: TagNumber, num: n} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{tag: TagBool, boo: b} }

// String returns a String value. The payload is an ordinary Go string;
// Go's string immutability gives SUMSTACK/EVAL's value semantics for free.
func String(s string) Value { return Value{tag: TagString, str: s} }

// Abstract returns an Abstract value referencing built-in table entry idx
// under name. Abstract values do not own any memory.
func Abstract(idx int, name string) Value {
	return Value{tag: TagAbstract, absIdx: idx, absName: name}
}

// Tag reports the value's variant.
func (v Value) Tag() Tag { return v.tag }

// AsNumber returns the Number payload. The caller must have checked Tag().
func (v Value) AsNumber() float64 { return v.num }

// AsBool returns the Bool payload. The caller must have checked Tag().
func (v Value) AsBool() bool { return v.boo }

// AsString returns the String payload. The caller must have checked Tag().
func (v Value) AsString() string { return v.str }

// AsAbstractIndex returns the built-in table index. The caller must have
// checked Tag().
func (v Value) AsAbstractIndex() int { return v.absIdx }

// Equal implements the value-equality rule from spec §3: mismatched tags
// compare unequal and yield false without error; String is byte-wise;
// Number/Bool compare their payloads directly.
func (v Value) Equal(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case TagNull:
		return true
	case TagNumber:
		return v.num == other.num
	case TagBool:
		return v.boo == other.boo
	case TagString:
		return v.str == other.str
	case TagAbstract:
		return v.absIdx == other.absIdx
	default:
		return false
	}
}

// String renders the canonical textual form for every tag, per spec §4.8.
func (v Value) String() string {
	switch v.tag {
	case TagNull:
		return "null"
	case TagBool:
		if v.boo {
			return "true"
		}
		return "false"
	case TagNumber:
		return formatNumber(v.num)
	case TagString:
		return v.str
	case TagAbstract:
		return "0x" + strconv.FormatInt(int64(v.absIdx), 16)
	case TagInstructionRef:
		return "instructionref"
	default:
		return ""
	}
}

// formatNumber implements spec §4.8's precise number format: a sign
// prefix for negatives, the integer part, and — unless the fractional
// part rounds to zero at six digits, in which case nothing further is
// printed — exactly six fractional digits with no trailing-zero
// stripping. This resolves the "trailing fractional digits are not
// stripped... zero fraction values are emitted without the decimal point"
// ambiguity in spec §4.8/§9 by treating "fraction rounds to zero" and
// "everything else" as the only two cases.
func formatNumber(n float64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	scaled := n * 1e6
	rounded := int64(scaled + 0.5)
	intPart := rounded / 1_000_000
	fracPart := rounded % 1_000_000
	if fracPart == 0 {
		return sign + strconv.FormatInt(intPart, 10)
	}
	frac := strconv.FormatInt(fracPart, 10)
	if pad := 6 - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	return sign + strconv.FormatInt(intPart, 10) + "." + frac
}

// truthy reports whether a Bool value coerces to true. Used by JTR/JFA's
// predicate evaluation (spec §4.6 requires the top to be a Bool; a
// non-Bool top simply never satisfies JTR/JFA's predicate).
func (v Value) truthy() bool {
	return v.tag == TagBool && v.boo
}
