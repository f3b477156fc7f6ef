package alu

// registers is the sparse (index -> Value) register bank (spec §3).
// Indices are uint32 as the wire format specifies for LOAD/UNLOAD/
// DEFUNLOAD operands.
type registers struct {
	slots map[uint32]Value
}

func newRegisters() *registers {
	return &registers{slots: make(map[uint32]Value)}
}

// load replaces any existing value at k with v (spec: "LOAD k replaces any
// pair with index k... using a copy of the current top").
func (r *registers) load(k uint32, v Value) {
	r.slots[k] = v
}

// get returns the value at k, if present.
func (r *registers) get(k uint32) (Value, bool) {
	v, ok := r.slots[k]
	return v, ok
}

// delete removes the slot at k (used by DEFUNLOAD).
func (r *registers) delete(k uint32) {
	delete(r.slots, k)
}
