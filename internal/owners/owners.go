package owners

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Ref is a tagged reference to an owning content object.
type Ref struct {
	Kind string
	ID   int64
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Owner is the minimal view of an owning content object.
type Owner interface {
	Ref() Ref
	Title() string
}

// GenderHinter is implemented by owners that can supply a speaker gender
// hint directly.
type GenderHinter interface {
	SpeakerGenderHint() string
}

// Profiled is implemented by owners whose speaker attributes live one
// indirection away, on a profile or member record.
type Profiled interface {
	SpeakerProfile() any
}

// Resolver loads owners of a single kind by identifier.
type Resolver interface {
	Resolve(ctx context.Context, id int64) (Owner, error)
}

// Registry maps owner kinds to their typed resolvers.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]Resolver)}
}

// Register installs a resolver for a kind, replacing any previous one.
func (reg *Registry) Register(kind string, resolver Resolver) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.resolvers[kind] = resolver
}

// Resolve loads the owner behind a reference.
func (reg *Registry) Resolve(ctx context.Context, ref Ref) (Owner, error) {
	reg.mu.RLock()
	resolver, ok := reg.resolvers[ref.Kind]
	reg.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no resolver registered for owner kind %q", ref.Kind)
	}
	return resolver.Resolve(ctx, ref.ID)
}

// SpeakerGenderHint extracts a gender-like attribute from the owner behind a
// reference. It checks the owner directly, then one level of indirection
// through a profile record. Any failure yields an empty hint; the pipeline
// treats the hint as soft and never blocks on it.
func (reg *Registry) SpeakerGenderHint(ctx context.Context, ref Ref) string {
	owner, err := reg.Resolve(ctx, ref)
	if err != nil || owner == nil {
		return ""
	}
	if hint := hintFrom(owner); hint != "" {
		return hint
	}
	if profiled, ok := owner.(Profiled); ok {
		if hint := hintFrom(profiled.SpeakerProfile()); hint != "" {
			return hint
		}
	}
	return ""
}

func hintFrom(value any) string {
	hinter, ok := value.(GenderHinter)
	if !ok {
		return ""
	}
	return normalizeGender(hinter.SpeakerGenderHint())
}

// normalizeGender collapses common spellings to "male"/"female". Anything
// else is treated as unknown rather than guessed at.
func normalizeGender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m", "man":
		return "male"
	case "female", "f", "woman":
		return "female"
	default:
		return ""
	}
}
