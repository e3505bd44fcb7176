package linker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workbook-loader/internal/api"
	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Get(ctx context.Context, path string, filter map[string]string) ([]resource.Draft, error) {
	args := m.Called(ctx, path, filter)
	drafts, _ := args.Get(0).([]resource.Draft)

	return drafts, args.Error(1)
}

func (m *mockBackend) Save(ctx context.Context, ops []api.SaveOperation, opts api.SaveOptions) ([]resource.Draft, error) {
	args := m.Called(ctx, ops, opts)
	drafts, _ := args.Get(0).([]resource.Draft)

	return drafts, args.Error(1)
}

func config(typ string, setting schema.LinkOrCreateSetting) *schema.RelationshipConfig {
	return &schema.RelationshipConfig{
		Type:                typ,
		HasGroup:            true,
		BaseAPIPath:         "/collection-api",
		LinkOrCreateSetting: setting,
	}
}

func TestLink_RootMarker(t *testing.T) {
	res := map[string]any{
		"materialSampleName":      "S-1",
		resource.MarkerKey:        &schema.RelationshipConfig{Type: "material-sample", HasGroup: true},
		resource.RelationshipsKey: resource.Relationships{},
	}

	err := New(&mockBackend{}, nil).LinkAll(context.Background(), res, nil, "aafc")
	require.NoError(t, err)

	assert.Equal(t, "material-sample", res["type"])
	assert.Equal(t, "aafc", res["group"])
	assert.NotContains(t, res, resource.MarkerKey)
	assert.Equal(t, resource.Relationships{}, res[resource.RelationshipsKey])
	assert.Equal(t, "S-1", res["materialSampleName"])
}

func TestLink_EmptyValueDeleted(t *testing.T) {
	res := map[string]any{
		"remarks":    "  ",
		"collection": map[string]any{resource.MarkerKey: config("collection", schema.Link)},
	}

	err := New(&mockBackend{}, nil).LinkAll(context.Background(), res, nil, "aafc")
	require.NoError(t, err)

	assert.Empty(t, res)
}

func TestLink_ValueMapping(t *testing.T) {
	backend := &mockBackend{}
	cm := columnmap.ColumnMap{
		"Collection": {
			FieldPath: "collection.name",
			ValueMapping: map[string]columnmap.Refs{
				"col_1": columnmap.One(resource.Ref{ID: "c1", Type: "collection"}),
			},
		},
	}
	res := map[string]any{
		"collection": map[string]any{
			"name":             "col.1",
			resource.MarkerKey: config("collection", schema.LinkOrCreate),
		},
	}

	err := New(backend, nil).Link(context.Background(), res, cm, "collection", "aafc")
	require.NoError(t, err)

	assert.NotContains(t, res, "collection")
	assert.Equal(t, resource.Relationship{Data: resource.Ref{ID: "c1", Type: "collection"}},
		res[resource.RelationshipsKey].(resource.Relationships)["collection"])
	backend.AssertExpectations(t)
}

func TestLink_BackendLookupIsCached(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Get", mock.Anything, "/collection-api/collecting-event", map[string]string{"verbatimLocality": "Ottawa"}).
		Return([]resource.Draft{{"id": "ce1", "type": "collecting-event"}}, nil).
		Once()

	lk := New(backend, NewCache())

	for range 2 {
		res := map[string]any{
			"collectingEvent": map[string]any{
				"verbatimLocality": "Ottawa",
				resource.MarkerKey: config("collecting-event", schema.LinkOrCreate),
			},
		}

		err := lk.Link(context.Background(), res, columnmap.ColumnMap{}, "collectingEvent", "aafc")
		require.NoError(t, err)

		assert.Equal(t, resource.Relationship{Data: resource.Ref{ID: "ce1", Type: "collecting-event"}},
			res[resource.RelationshipsKey].(resource.Relationships)["collectingEvent"])
	}

	backend.AssertNumberOfCalls(t, "Get", 1)
	assert.Equal(t, 1, lk.Cache().Len())
}

func TestLink_Misses(t *testing.T) {
	tests := []struct {
		name    string
		setting schema.LinkOrCreateSetting
		wantErr string
	}{
		{name: "link drops the attribute", setting: schema.Link},
		{name: "link or error fails", setting: schema.LinkOrError, wantErr: `collection not found: {"name":"unknown"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{}
			backend.On("Get", mock.Anything, "/collection-api/collection", map[string]string{"name": "unknown"}).
				Return([]resource.Draft{}, nil)

			res := map[string]any{
				"collection": map[string]any{
					"name":             "unknown",
					resource.MarkerKey: config("collection", tt.setting),
				},
			}

			err := New(backend, nil).Link(context.Background(), res, nil, "collection", "aafc")
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotContains(t, res, "collection")
			assert.NotContains(t, res, resource.RelationshipsKey)
			backend.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLink_Create(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Save", mock.Anything,
		mock.MatchedBy(func(ops []api.SaveOperation) bool {
			if len(ops) != 1 || ops[0].Type != "preparation-type" {
				return false
			}

			_, marked := ops[0].Resource[resource.MarkerKey]

			return !marked && ops[0].Resource["group"] == "aafc" && ops[0].Resource["name"] == "Slide"
		}),
		api.SaveOptions{APIBaseURL: "/collection-api"},
	).Return([]resource.Draft{{"id": "pt1", "type": "preparation-type"}}, nil)

	cm := columnmap.ColumnMap{
		"Preparation Type": {FieldPath: "preparationType.name", NumOfUniqueValues: 1},
	}
	res := map[string]any{
		"preparationType": map[string]any{
			"name":             "Slide",
			resource.MarkerKey: config("preparation-type", schema.Create),
		},
	}

	lk := New(backend, nil)

	err := lk.Link(context.Background(), res, cm, "preparationType", "aafc")
	require.NoError(t, err)

	ref := resource.Ref{ID: "pt1", Type: "preparation-type"}
	assert.Equal(t, resource.Relationship{Data: ref},
		res[resource.RelationshipsKey].(resource.Relationships)["preparationType"])
	assert.Equal(t, columnmap.One(ref), cm["Preparation Type"].ValueMapping["Slide"])
	assert.Zero(t, lk.Cache().Len(), "plain creates are not cached")
	backend.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	backend.AssertExpectations(t)
}

func TestLink_LinkOrCreateMissCreatesAndCaches(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Get", mock.Anything, "/collection-api/project", map[string]string{"name": "P"}).
		Return([]resource.Draft{}, nil).Once()
	backend.On("Save", mock.Anything, mock.Anything, mock.Anything).
		Return([]resource.Draft{{"id": "p1", "type": "project"}}, nil).Once()

	lk := New(backend, nil)
	res := map[string]any{
		"project": map[string]any{
			"name":             "P",
			resource.MarkerKey: config("project", schema.LinkOrCreate),
		},
	}

	err := lk.Link(context.Background(), res, nil, "project", "aafc")
	require.NoError(t, err)

	ref, ok := lk.Cache().Get(CacheKey(config("project", schema.LinkOrCreate), map[string]string{"name": "P"}))
	require.True(t, ok)
	assert.Equal(t, resource.Ref{ID: "p1", Type: "project"}, ref)
	backend.AssertExpectations(t)
}

func TestLink_Array(t *testing.T) {
	cm := columnmap.ColumnMap{
		"Collectors": {
			FieldPath: "collectors.displayName",
			ValueMapping: map[string]columnmap.Refs{
				"ann":     columnmap.One(resource.Ref{ID: "p1", Type: "person"}),
				"bob_and": columnmap.Many(resource.Ref{ID: "p2", Type: "person"}, resource.Ref{ID: "p3", Type: "person"}),
			},
		},
	}

	element := func(name string, setting schema.LinkOrCreateSetting) map[string]any {
		return map[string]any{"displayName": name, resource.MarkerKey: config("person", setting)}
	}

	t.Run("every element resolved", func(t *testing.T) {
		res := map[string]any{
			"collectors": []any{element("ann", schema.LinkOrCreate), element("bob.and", schema.LinkOrCreate)},
		}

		err := New(&mockBackend{}, nil).Link(context.Background(), res, cm, "collectors", "aafc")
		require.NoError(t, err)

		assert.NotContains(t, res, "collectors")
		assert.Equal(t, resource.Relationship{Data: []resource.Ref{
			{ID: "p1", Type: "person"}, {ID: "p2", Type: "person"}, {ID: "p3", Type: "person"},
		}}, res[resource.RelationshipsKey].(resource.Relationships)["collectors"])
	})

	t.Run("one link miss keeps the array", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("Get", mock.Anything, "/collection-api/person", map[string]string{"displayName": "zed"}).
			Return([]resource.Draft{}, nil).Once()

		res := map[string]any{
			"collectors": []any{element("ann", schema.Link), element("zed", schema.Link)},
		}

		err := New(backend, nil).Link(context.Background(), res, cm, "collectors", "aafc")
		require.NoError(t, err)
		backend.AssertExpectations(t)

		assert.Len(t, res["collectors"], 2)
		assert.NotContains(t, res, resource.RelationshipsKey)
	})

	t.Run("every link miss keeps the array", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("Get", mock.Anything, mock.Anything, mock.Anything).Return([]resource.Draft{}, nil)

		res := map[string]any{
			"collectors": []any{element("yan", schema.Link), element("zed", schema.Link)},
		}

		err := New(backend, nil).Link(context.Background(), res, cm, "collectors", "aafc")
		require.NoError(t, err)

		assert.Len(t, res["collectors"], 2)
		assert.NotContains(t, res, resource.RelationshipsKey)
	})

	t.Run("scalar arrays are untouched", func(t *testing.T) {
		res := map[string]any{"dwcOtherCatalogNumbers": []any{"a", "b"}}

		err := New(&mockBackend{}, nil).Link(context.Background(), res, cm, "dwcOtherCatalogNumbers", "aafc")
		require.NoError(t, err)

		assert.Equal(t, []any{"a", "b"}, res["dwcOtherCatalogNumbers"])
	})
}

func TestLink_StorageUnitUsage(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Save", mock.Anything,
		mock.MatchedBy(func(ops []api.SaveOperation) bool {
			rels, _ := ops[0].Resource[resource.RelationshipsKey].(resource.Relationships)

			return ops[0].Resource["usageType"] == schema.MaterialSample &&
				len(rels["storageUnit"].Refs()) == 1
		}),
		mock.Anything,
	).Return([]resource.Draft{{"id": "suu1", "type": "storage-unit-usage"}}, nil)

	cm := columnmap.ColumnMap{
		"Storage Unit": {
			FieldPath: "storageUnitUsage.storageUnit.name",
			ValueMapping: map[string]columnmap.Refs{
				"box_1": columnmap.One(resource.Ref{ID: "su1", Type: "storage-unit"}),
			},
		},
	}
	res := map[string]any{
		"type": schema.MaterialSample,
		"storageUnitUsage": map[string]any{
			"wellColumn": float64(3),
			"storageUnit": map[string]any{
				"name":             "box.1",
				resource.MarkerKey: config("storage-unit", schema.Link),
			},
			resource.MarkerKey: config("storage-unit-usage", schema.Create),
		},
	}

	err := New(backend, nil).Link(context.Background(), res, cm, "storageUnitUsage", "aafc")
	require.NoError(t, err)

	assert.Equal(t, resource.Relationship{Data: resource.Ref{ID: "suu1", Type: "storage-unit-usage"}},
		res[resource.RelationshipsKey].(resource.Relationships)["storageUnitUsage"])
	backend.AssertExpectations(t)
}

func TestStorageUnitUsage(t *testing.T) {
	withUnit := func() map[string]any {
		return map[string]any{
			resource.RelationshipsKey: resource.Relationships{
				"storageUnit": {Data: resource.Ref{ID: "su1", Type: "storage-unit"}},
			},
		}
	}

	tests := []struct {
		name       string
		parentType string
		attribute  string
		node       map[string]any
		wantErr    error
		wantUsage  any
	}{
		{name: "resolved unit", parentType: schema.MaterialSample, attribute: "storageUnitUsage", node: withUnit(), wantUsage: schema.MaterialSample},
		{name: "missing unit", parentType: schema.MaterialSample, attribute: "storageUnitUsage", node: map[string]any{}, wantErr: ErrStorageUnitRequired},
		{name: "other parent", parentType: "metadata", attribute: "storageUnitUsage", node: map[string]any{}},
		{name: "other attribute", parentType: schema.MaterialSample, attribute: "collection", node: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StorageUnitUsage(tt.parentType, tt.attribute, tt.node)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantUsage, tt.node["usageType"])
		})
	}
}

func TestLink_BackendError(t *testing.T) {
	boom := errors.New("boom")

	backend := &mockBackend{}
	backend.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

	res := map[string]any{
		"collection": map[string]any{"name": "C", resource.MarkerKey: config("collection", schema.Link)},
	}

	err := New(backend, nil).Link(context.Background(), res, nil, "collection", "aafc")
	require.ErrorIs(t, err, boom)
}

func TestLink_Hook(t *testing.T) {
	stop := errors.New("stop")

	backend := &mockBackend{}
	res := map[string]any{
		"type":    "metadata",
		"project": map[string]any{"name": "P", resource.MarkerKey: config("project", schema.Create)},
	}

	lk := New(backend, nil, WithHook(func(parentType, attribute string, _ map[string]any) error {
		if parentType == "metadata" && attribute == "project" {
			return stop
		}

		return nil
	}))

	err := lk.Link(context.Background(), res, nil, "project", "aafc")
	require.ErrorIs(t, err, stop)
	backend.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestNaturalKey(t *testing.T) {
	node := map[string]any{
		"name":             "A",
		"number":           float64(12),
		"nested":           map[string]any{"x": "y"},
		"list":             []any{"a"},
		"blank":            "",
		resource.MarkerKey: config("thing", schema.Link),
	}

	assert.Equal(t, map[string]string{"name": "A", "number": "12"}, NaturalKey(node, config("thing", schema.Link)))

	rc := config("thing", schema.Link)
	rc.QueryFields = []string{"name"}
	assert.Equal(t, map[string]string{"name": "A"}, NaturalKey(node, rc))
}

func TestCache(t *testing.T) {
	rc := config("collection", schema.Link)
	assert.Equal(t, "/collection-api/collection?a=1&b=x+y",
		CacheKey(rc, map[string]string{"b": "x y", "a": "1"}))

	c := NewCache()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			c.Put(CacheKey(rc, map[string]string{"i": string(rune('a' + i))}), resource.Ref{ID: "x", Type: "collection"})
		}()
	}

	wg.Wait()

	assert.Equal(t, 10, c.Len())

	_, ok := c.Get("missing")
	assert.False(t, ok)
}
