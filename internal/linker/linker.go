package linker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"workbook-loader/internal/api"
	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/common"
	"workbook-loader/internal/convert"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
)

// ErrCreateFailed is returned when the backend accepts a create but returns
// no record.
var ErrCreateFailed = errors.New("backend returned no created record")

// Linker resolves relationship nodes against a backend.
type Linker struct {
	backend api.Backend
	cache   *Cache
	hooks   []Hook
	logger  *slog.Logger
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(lk *Linker) {
		lk.logger = l
	}
}

// WithHook adds a before-create hook, run after the built-in ones.
func WithHook(h Hook) Option {
	return func(lk *Linker) {
		lk.hooks = append(lk.hooks, h)
	}
}

// New returns a linker. A nil cache gets a fresh one.
func New(backend api.Backend, cache *Cache, opts ...Option) *Linker {
	if cache == nil {
		cache = NewCache()
	}

	lk := &Linker{
		backend: backend,
		cache:   cache,
		hooks:   []Hook{StorageUnitUsage},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(lk)
	}

	return lk
}

// Cache returns the session cache.
func (lk *Linker) Cache() *Cache {
	return lk.cache
}

// LinkAll links every top-level attribute of res, in sorted key order.
func (lk *Linker) LinkAll(ctx context.Context, res map[string]any, cm columnmap.ColumnMap, group string) error {
	for _, key := range resource.Keys(res) {
		if err := lk.Link(ctx, res, cm, key, group); err != nil {
			return err
		}
	}

	return nil
}

// Link resolves the attribute at fieldPath, whose last segment is a key of
// res. Resolved nodes move into res's relationships; the raw attribute is
// deleted.
func (lk *Linker) Link(ctx context.Context, res map[string]any, cm columnmap.ColumnMap, fieldPath, group string) error {
	attr := common.LastSegment(fieldPath)

	if attr == resource.RelationshipsKey {
		return nil
	}

	value := res[attr]

	if resource.IsEmptyValue(value) {
		delete(res, attr)
		return nil
	}

	if rc, ok := value.(*schema.RelationshipConfig); ok && attr == resource.MarkerKey {
		stamp(res, rc, group)
		return nil
	}

	if node, ok := resource.AsObject(value); ok {
		rc, marked := resource.Marker(node)
		if !marked {
			return lk.linkChildren(ctx, node, cm, fieldPath, group)
		}

		return lk.linkObject(ctx, res, attr, node, rc, cm, fieldPath, group)
	}

	if arr, ok := resource.AsArray(value); ok {
		return lk.linkArray(ctx, res, attr, arr, cm, fieldPath, group)
	}

	return nil
}

func stamp(res map[string]any, rc *schema.RelationshipConfig, group string) {
	res["type"] = rc.Type
	if rc.HasGroup {
		res["group"] = group
	}

	resource.EnsureRelationships(res)
	delete(res, resource.MarkerKey)
}

func (lk *Linker) linkChildren(ctx context.Context, node map[string]any, cm columnmap.ColumnMap, fieldPath, group string) error {
	for _, key := range resource.Keys(node) {
		if err := lk.Link(ctx, node, cm, fieldPath+"."+key, group); err != nil {
			return err
		}
	}

	return nil
}

func (lk *Linker) linkObject(ctx context.Context, res map[string]any, attr string, node map[string]any,
	rc *schema.RelationshipConfig, cm columnmap.ColumnMap, fieldPath, group string,
) error {
	refs, out, err := lk.resolve(ctx, res, attr, node, rc, cm, fieldPath, group)
	if err != nil {
		return err
	}

	switch out {
	case resolved:
		resource.EnsureRelationships(res)[attr] = resource.Relationship{Data: refs.Data()}
		delete(res, attr)
	case dropped:
		delete(res, attr)
	case unresolved:
	}

	return nil
}

func (lk *Linker) linkArray(ctx context.Context, res map[string]any, attr string, arr []any,
	cm columnmap.ColumnMap, fieldPath, group string,
) error {
	var (
		refs   []resource.Ref
		all    = true
		marked bool
	)

	for _, item := range arr {
		node, _ := resource.AsObject(item)

		rc, ok := resource.Marker(node)
		if !ok {
			all = false
			continue
		}

		marked = true

		found, out, err := lk.resolve(ctx, res, attr, node, rc, cm, fieldPath, group)
		if err != nil {
			return err
		}

		if out == resolved {
			refs = append(refs, found.List()...)
		} else {
			all = false
		}
	}

	if !marked || !all || len(refs) == 0 {
		return nil
	}

	resource.EnsureRelationships(res)[attr] = resource.Relationship{Data: refs}
	delete(res, attr)

	return nil
}

type outcome int

const (
	unresolved outcome = iota
	resolved
	dropped
)

// resolve finds or creates the record of a marked node. parent is the node
// holding the attribute.
func (lk *Linker) resolve(ctx context.Context, parent map[string]any, attr string, node map[string]any,
	rc *schema.RelationshipConfig, cm columnmap.ColumnMap, fieldPath, group string,
) (columnmap.Refs, outcome, error) {
	filter := NaturalKey(node, rc)
	setting := rc.LinkOrCreateSetting

	if setting.Links() {
		refs, err := lk.lookup(ctx, node, rc, filter, cm, fieldPath)
		if err != nil {
			return columnmap.Refs{}, unresolved, err
		}

		if !refs.IsZero() {
			lk.logger.Debug("linked", "path", fieldPath, "type", rc.Type)
			return refs, resolved, nil
		}

		switch setting {
		case schema.Link:
			return columnmap.Refs{}, dropped, nil
		case schema.LinkOrError:
			return columnmap.Refs{}, unresolved, notFound(attr, node)
		}
	}

	if !setting.Creates() {
		return columnmap.Refs{}, unresolved, nil
	}

	ref, err := lk.create(ctx, parent, attr, node, rc, cm, fieldPath, group)
	if err != nil {
		return columnmap.Refs{}, unresolved, err
	}

	if setting == schema.LinkOrCreate && len(filter) > 0 {
		lk.cache.Put(CacheKey(rc, filter), ref)
	}

	cm.AddNewValue(fieldPath, node, ref)

	return columnmap.One(ref), resolved, nil
}

func (lk *Linker) lookup(ctx context.Context, node map[string]any, rc *schema.RelationshipConfig,
	filter map[string]string, cm columnmap.ColumnMap, fieldPath string,
) (columnmap.Refs, error) {
	if refs, ok := mappedValue(node, cm, fieldPath); ok {
		return refs, nil
	}

	if len(filter) == 0 {
		return columnmap.Refs{}, nil
	}

	key := CacheKey(rc, filter)
	if ref, ok := lk.cache.Get(key); ok {
		return columnmap.One(ref), nil
	}

	found, err := lk.backend.Get(ctx, rc.ResourcePath(), filter)
	if err != nil {
		return columnmap.Refs{}, fmt.Errorf("failed to look up %s: %w", rc.ResourcePath(), err)
	}

	first, ok := common.First(found)
	if !ok {
		return columnmap.Refs{}, nil
	}

	ref := first.Ref()
	if ref.Type == "" {
		ref.Type = rc.Type
	}

	lk.cache.Put(key, ref)

	return columnmap.One(ref), nil
}

// mappedValue returns the first value mapping matching one of the node's
// simple attributes.
func mappedValue(node map[string]any, cm columnmap.ColumnMap, fieldPath string) (columnmap.Refs, bool) {
	mappings := cm.Search(fieldPath)
	if mappings == nil {
		return columnmap.Refs{}, false
	}

	for _, key := range resource.Keys(node) {
		text, ok := simpleText(node[key])
		if !ok || text == "" {
			continue
		}

		refs, ok := mappings[fieldPath+"."+key][columnmap.ValueKey(text)]
		if ok && !refs.IsZero() {
			return refs, true
		}
	}

	return columnmap.Refs{}, false
}

func (lk *Linker) create(ctx context.Context, parent map[string]any, attr string, node map[string]any,
	rc *schema.RelationshipConfig, cm columnmap.ColumnMap, fieldPath, group string,
) (resource.Ref, error) {
	if err := lk.linkChildren(ctx, node, cm, fieldPath, group); err != nil {
		return resource.Ref{}, err
	}

	parentType, _ := parent["type"].(string)
	for _, hook := range lk.hooks {
		if err := hook(parentType, attr, node); err != nil {
			return resource.Ref{}, err
		}
	}

	saved, err := lk.backend.Save(ctx,
		[]api.SaveOperation{{Resource: resource.Draft(node), Type: rc.Type}},
		api.SaveOptions{APIBaseURL: rc.BaseAPIPath},
	)
	if err != nil {
		return resource.Ref{}, fmt.Errorf("failed to create %s: %w", rc.Type, err)
	}

	created, ok := common.First(saved)
	if !ok {
		return resource.Ref{}, fmt.Errorf("%s: %w", rc.Type, ErrCreateFailed)
	}

	ref := created.Ref()
	if ref.Type == "" {
		ref.Type = rc.Type
	}

	lk.logger.Debug("created", "path", fieldPath, "type", ref.Type, "id", ref.ID)

	return ref, nil
}

// NaturalKey is the lookup filter of a node: its queryFields when rc names
// any, otherwise every simple-valued attribute.
func NaturalKey(node map[string]any, rc *schema.RelationshipConfig) map[string]string {
	keys := rc.QueryFields
	if len(keys) == 0 {
		keys = resource.Keys(node)
	}

	filter := map[string]string{}

	for _, key := range keys {
		text, ok := simpleText(node[key])
		if ok && text != "" {
			filter[key] = text
		}
	}

	return filter
}

func simpleText(v any) (string, bool) {
	switch v.(type) {
	case string, float64, int, bool:
		return convert.Text(v), true
	default:
		return "", false
	}
}

func notFound(attr string, node map[string]any) error {
	clean := resource.Draft(node).Clone()
	delete(clean, resource.MarkerKey)

	b, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("%s not found: %w", attr, err)
	}

	return fmt.Errorf("%s not found: %s", attr, b)
}
