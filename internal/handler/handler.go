package handler

import (
	"context"
	"maps"
	"slices"

	"workbook-loader/internal/api"
	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
)

// SourceSetKey is the attribute stamped with the upload's source set id.
const SourceSetKey = "sourceSet"

// LinkFunc resolves the attribute at fieldPath of res.
type LinkFunc func(ctx context.Context, res map[string]any, cm columnmap.ColumnMap, fieldPath, group string) error

// Selection carries user choices and pending candidates across pauses.
type Selection struct {
	// Existing is the user-selected record a resource should update.
	Existing resource.Draft `json:"existing,omitempty"`
	// ExistingCandidates are the records sharing the resource's name.
	ExistingCandidates []resource.Draft `json:"existingCandidates,omitempty"`
	// Parent is the user-selected parent record.
	Parent resource.Draft `json:"parent,omitempty"`
	// ParentCandidates are the possible parents sharing the parent's name.
	ParentCandidates []resource.Draft `json:"parentCandidates,omitempty"`
	// Updated counts resources turned into updates of existing records.
	Updated int `json:"updated"`
}

// Pending reports whether a choice is awaited.
func (s *Selection) Pending() bool {
	return len(s.ExistingCandidates) > 0 || len(s.ParentCandidates) > 0
}

// SaveContext is the input of a Handler.
type SaveContext struct {
	Resource   resource.Draft
	Group      string
	APIBaseURL string
	Backend    api.Backend
	ColumnMap  columnmap.ColumnMap
	AppendData bool
	SourceSet  string
	Link       LinkFunc
	Selection  *Selection
}

// Result tells the caller how to continue.
type Result struct {
	ShouldPause bool
}

// Handler processes one resource before it is saved.
type Handler interface {
	ProcessResource(ctx context.Context, sc *SaveContext) (Result, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, sc *SaveContext) (Result, error)

// ProcessResource calls f.
func (f HandlerFunc) ProcessResource(ctx context.Context, sc *SaveContext) (Result, error) {
	return f(ctx, sc)
}

// Registry maps resource types to handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry. Every type falls back to
// DefaultHandler.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Default returns a registry with every built-in handler registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(schema.MaterialSample, MaterialSample{})

	return r
}

// Register sets the handler of typ.
func (r *Registry) Register(typ string, h Handler) {
	r.handlers[typ] = h
}

// For returns the handler of typ.
func (r *Registry) For(typ string) Handler {
	if h, ok := r.handlers[typ]; ok {
		return h
	}

	return DefaultHandler{}
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []string {
	return slices.Sorted(maps.Keys(r.handlers))
}

// DefaultHandler stamps the source set and links every attribute.
type DefaultHandler struct{}

// ProcessResource implements Handler.
func (DefaultHandler) ProcessResource(ctx context.Context, sc *SaveContext) (Result, error) {
	sc.Resource[SourceSetKey] = sc.SourceSet

	return Result{}, linkAll(ctx, sc)
}

func linkAll(ctx context.Context, sc *SaveContext) error {
	if sc.Link == nil {
		return nil
	}

	for _, key := range resource.Keys(sc.Resource) {
		if err := sc.Link(ctx, sc.Resource, sc.ColumnMap, key, sc.Group); err != nil {
			return err
		}
	}

	return nil
}
