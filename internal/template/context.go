package template

// varSlot is one bucket of the closed-addressed variable table. An empty
// slot (name == "") ends a probe sequence, per §4.8's O(1)-amortized lookup
// invariant.
type varSlot struct {
    hash  uint64
    name  string
    value []byte
}

// VarContext is the render-time variable binding set: a closed-hashing
// table keyed by the variable's pre-hashed name, probed linearly. Lookup by
// a compiled segment's precomputed hash is a single probe sequence, never a
// string search over the bound names.
type VarContext struct {
    slots []varSlot
    mask  uint64
    count int
}

// NewVarContext constructs a variable context sized for at least
// capacityHint bindings.
func NewVarContext(capacityHint int) *VarContext {
    size := 8
    for size < capacityHint*2 {
        size *= 2
    }
    return &VarContext{
        slots: make([]varSlot, size),
        mask:  uint64(size - 1),
    }
}

// Count returns the number of distinct variable names currently bound.
func (c *VarContext) Count() int { return c.count }

// Set binds name to value, overwriting any prior binding for the same
// name. Growth doubles the table at a 75% load factor.
func (c *VarContext) Set(name string, value []byte) {
    if c.count*4 >= len(c.slots)*3 {
        c.grow()
    }
    h := fnv1a64([]byte(name))
    c.insert(h, name, value)
}

func (c *VarContext) insert(h uint64, name string, value []byte) {
    idx := h & c.mask
    for {
        s := &c.slots[idx]
        if s.name == "" {
            *s = varSlot{hash: h, name: name, value: value}
            c.count++
            return
        }
        if s.hash == h && s.name == name {
            s.value = value
            return
        }
        idx = (idx + 1) & c.mask
    }
}

func (c *VarContext) grow() {
    old := c.slots
    c.slots = make([]varSlot, len(old)*2)
    c.mask = uint64(len(c.slots) - 1)
    c.count = 0
    for _, s := range old {
        if s.name != "" {
            c.insert(s.hash, s.name, s.value)
        }
    }
}

// Lookup resolves a variable's bound value by name, for callers (such as
// the engine facade's variable-limit check) that need to ask "is this name
// already bound?" without going through a compiled template segment.
func (c *VarContext) Lookup(name string) ([]byte, bool) {
    return c.lookup(fnv1a64([]byte(name)), name)
}

// lookup resolves name by its precomputed hash first, falling back to a
// byte comparison only to disambiguate a hash collision within the probe
// sequence. An empty slot ends the probe; unknown names report ok == false
// and Render treats that as the empty string.
func (c *VarContext) lookup(h uint64, name string) ([]byte, bool) {
    idx := h & c.mask
    for {
        s := &c.slots[idx]
        if s.name == "" {
            return nil, false
        }
        if s.hash == h && s.name == name {
            return s.value, true
        }
        idx = (idx + 1) & c.mask
    }
}
