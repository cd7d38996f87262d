// Package elements interns the element types used to tag Qute tokens and syntax nodes.
//
// An element type is compared by identity: two lookups of the same node name always
// return the same *ElementType for the lifetime of the registry, so consumers can
// dispatch with == instead of comparing names.
package elements

import (
	"sort"
	"sync"
)

const (
	// ContentName is the node name of raw text outside any template construct.
	ContentName = "#text"
	// CommentName is the node name of a {! ... !} comment.
	CommentName = "#comment"

	outerLanguageBlockName = "#outer-language-block"
	templateDataName       = "#template-data"
)

// ElementType is an interned syntactic category.
type ElementType struct {
	name  string
	index uint32
}

// Name returns the node name the type was registered under.
func (t *ElementType) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Index is the registration order of the type, starting at 1 in its registry.
func (t *ElementType) Index() uint32 {
	if t == nil {
		return 0
	}
	return t.index
}

func (t *ElementType) String() string {
	if t == nil {
		return "<none>"
	}
	return "QUTE:" + t.name
}

// Registry maps node names to element types with get-or-create semantics.
type Registry struct {
	types sync.Map // map[string]*ElementType

	mu    sync.Mutex
	count uint32
}

// NewRegistry returns a registry with no pre-seeded types.
func NewRegistry() *Registry {
	return &Registry{}
}

// TypeFor returns the element type for name, creating it on first use.
// Lookups of known names never take the lock.
func (r *Registry) TypeFor(name string) *ElementType {
	if existing, ok := r.types.Load(name); ok {
		return existing.(*ElementType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types.Load(name); ok {
		return existing.(*ElementType)
	}

	r.count++
	created := &ElementType{name: name, index: r.count}
	r.types.Store(name, created)
	return created
}

// Lookup returns the element type for name without creating it.
func (r *Registry) Lookup(name string) (*ElementType, bool) {
	existing, ok := r.types.Load(name)
	if !ok {
		return nil, false
	}
	return existing.(*ElementType), true
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	n := 0
	r.types.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Names returns the registered node names, sorted.
func (r *Registry) Names() []string {
	var names []string
	r.types.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

var (
	// Content is the type of raw text and of synthetic gap leaves.
	Content = defaultRegistry.TypeFor(ContentName)
	// Comment is the type of {! ... !} comments.
	Comment = defaultRegistry.TypeFor(CommentName)

	// OuterLanguageBlock marks a zone of the template tree holding host-language text.
	OuterLanguageBlock = defaultRegistry.TypeFor(outerLanguageBlockName)
	// TemplateData marks a zone of the host-language tree holding template content.
	TemplateData = defaultRegistry.TypeFor(templateDataName)
)

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// TypeFor returns the process-wide element type for name.
func TypeFor(name string) *ElementType {
	return defaultRegistry.TypeFor(name)
}
