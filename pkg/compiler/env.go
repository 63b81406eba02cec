package compiler

// Env maps variable names to 1-based stack-slot indexes. It is an
// append-only vector threaded functionally through the code generator:
// Extend returns a new value and never modifies the receiver, so sibling
// scopes (if branches, let bounds) cannot see each other's bindings.
//
// Rebinding a name appends a fresh slot rather than reusing the old one;
// Lookup scans newest-first, which is what makes the inner binding shadow
// the outer. Slots are never reclaimed.
type Env struct {
	names []string
}

// EmptyEnv returns an environment with no bindings.
func EmptyEnv() Env {
	return Env{}
}

// Size returns the number of bound slots, shadowed ones included.
func (e Env) Size() int {
	return len(e.names)
}

// Extend binds name to the next free slot and returns the extended
// environment together with the assigned slot (always Size()+1 of the
// receiver).
func (e Env) Extend(name string) (Env, int) {
	extended := make([]string, len(e.names), len(e.names)+1)
	copy(extended, e.names)
	extended = append(extended, name)
	return Env{names: extended}, len(extended)
}

// Lookup returns the slot bound to name. The newest binding wins.
func (e Env) Lookup(name string) (int, error) {
	for i := len(e.names) - 1; i >= 0; i-- {
		if e.names[i] == name {
			return i + 1, nil
		}
	}
	return 0, &UnboundVarError{Name: name}
}
