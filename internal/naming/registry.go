package naming

import (
	"fmt"
	"strconv"
)

// Collision records two sources within one scope that derived the same name.
type Collision struct {
	// Scope is the class (or file set) in which the names clashed.
	Scope string `json:"scope"`
	// Identifier is the name both sources derived.
	Identifier string `json:"identifier"`
	// First is the source that kept Identifier.
	First string `json:"first"`
	// Second is the source that was renamed.
	Second string `json:"second"`
	// Resolved is the name assigned to Second.
	Resolved string `json:"resolved"`
}

// String returns a human-readable description of the collision.
func (c Collision) String() string {
	return fmt.Sprintf("%s: %q and %q both map to %q, using %q for the latter",
		c.Scope, c.First, c.Second, c.Identifier, c.Resolved)
}

// Registry hands out unique names within a single scope. Duplicate claims are
// resolved by appending the smallest free numeric suffix starting at 2.
type Registry struct {
	scope  string
	owners map[string]string
}

// NewRegistry creates an empty registry for scope.
func NewRegistry(scope string) *Registry {
	return &Registry{
		scope:  scope,
		owners: make(map[string]string),
	}
}

// Claim reserves name for source. When name is already taken the returned
// name carries a numeric suffix and the collision is reported.
func (r *Registry) Claim(name, source string) (string, *Collision) {
	owner, taken := r.owners[name]
	if !taken {
		r.owners[name] = source
		return name, nil
	}

	resolved := name
	for n := 2; ; n++ {
		resolved = name + strconv.Itoa(n)
		if _, ok := r.owners[resolved]; !ok {
			break
		}
	}

	r.owners[resolved] = source

	return resolved, &Collision{
		Scope:      r.scope,
		Identifier: name,
		First:      owner,
		Second:     source,
		Resolved:   resolved,
	}
}

// Len returns the number of claimed names.
func (r *Registry) Len() int {
	return len(r.owners)
}
