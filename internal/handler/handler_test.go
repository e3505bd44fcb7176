package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workbook-loader/internal/api"
	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
)

const samplesPath = "/collection-api/material-sample"

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

type linkRecorder struct {
	paths []string
}

func (l *linkRecorder) link(_ context.Context, _ map[string]any, _ columnmap.ColumnMap, fieldPath, _ string) error {
	l.paths = append(l.paths, fieldPath)
	return nil
}

func newContext(backend api.Backend, links *linkRecorder) *SaveContext {
	return &SaveContext{
		Resource:   resource.Draft{nameKey: "TEST-SAMPLE-001", "type": schema.MaterialSample},
		Group:      "test-group",
		APIBaseURL: "/collection-api",
		Backend:    backend,
		ColumnMap:  columnmap.ColumnMap{},
		SourceSet:  "test-source-set",
		Link:       links.link,
		Selection:  &Selection{},
	}
}

func byName(name string) map[string]string {
	return map[string]string{nameKey: name}
}

func TestRegistry(t *testing.T) {
	r := Default()

	assert.IsType(t, MaterialSample{}, r.For(schema.MaterialSample))
	assert.IsType(t, DefaultHandler{}, r.For("metadata"))
	assert.Equal(t, []string{schema.MaterialSample}, r.Types())

	called := false
	r.Register("metadata", HandlerFunc(func(context.Context, *SaveContext) (Result, error) {
		called = true
		return Result{}, nil
	}))

	_, err := r.For("metadata").ProcessResource(context.Background(), &SaveContext{})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestDefaultHandler(t *testing.T) {
	links := &linkRecorder{}
	sc := newContext(&mockBackend{}, links)

	res, err := DefaultHandler{}.ProcessResource(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, res.ShouldPause)
	assert.Equal(t, "test-source-set", sc.Resource[SourceSetKey])
	assert.Equal(t, []string{nameKey, SourceSetKey, "type"}, links.paths)
}

func TestMaterialSample_Append(t *testing.T) {
	existing := resource.Draft{"id": "existing-123", nameKey: "TEST-SAMPLE-001", "type": schema.MaterialSample}

	tests := []struct {
		name        string
		found       []resource.Draft
		wantID      any
		wantUpdated int
		wantPause   bool
	}{
		{name: "no match creates", found: []resource.Draft{}},
		{name: "one match updates", found: []resource.Draft{existing}, wantID: "existing-123", wantUpdated: 1},
		{name: "several matches pause", found: []resource.Draft{existing, existing.Clone()}, wantPause: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{}
			backend.On("Get", mock.Anything, samplesPath, byName("TEST-SAMPLE-001")).Return(tt.found, nil).Once()

			links := &linkRecorder{}
			sc := newContext(backend, links)
			sc.AppendData = true

			res, err := MaterialSample{}.ProcessResource(context.Background(), sc)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPause, res.ShouldPause)
			assert.Equal(t, tt.wantID, sc.Resource["id"])
			assert.Equal(t, tt.wantUpdated, sc.Selection.Updated)

			if tt.wantPause {
				assert.Equal(t, tt.found, sc.Selection.ExistingCandidates)
				assert.Empty(t, links.paths)
			} else {
				assert.NotEmpty(t, links.paths)
			}

			backend.AssertExpectations(t)
		})
	}
}

func TestMaterialSample_SelectedExisting(t *testing.T) {
	backend := &mockBackend{}
	sc := newContext(backend, &linkRecorder{})
	sc.AppendData = true
	sc.Selection.Existing = resource.Draft{"id": "selected-123", "type": schema.MaterialSample}
	sc.Selection.ExistingCandidates = []resource.Draft{{"id": "selected-123"}, {"id": "other"}}

	_, err := MaterialSample{}.ProcessResource(context.Background(), sc)
	require.NoError(t, err)

	assert.Equal(t, "selected-123", sc.Resource["id"])
	assert.Equal(t, 1, sc.Selection.Updated)
	assert.Nil(t, sc.Selection.Existing)
	assert.False(t, sc.Selection.Pending())
	backend.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestMaterialSample_Parent(t *testing.T) {
	parentColumn := func() *columnmap.Entry {
		return &columnmap.Entry{
			FieldPath:         parentNamePath,
			MapRelationship:   true,
			NumOfUniqueValues: 2,
			MultipleValueMappings: map[string][]resource.Ref{
				"PARENT-SAMPLE-001": {
					{ID: "parent-1", Type: schema.MaterialSample},
					{ID: "parent-2", Type: schema.MaterialSample},
				},
			},
		}
	}

	t.Run("several parents pause", func(t *testing.T) {
		sc := newContext(&mockBackend{}, &linkRecorder{})
		sc.Resource[parentKey] = map[string]any{nameKey: "PARENT-SAMPLE-001"}
		sc.ColumnMap = columnmap.ColumnMap{"Parent Sample": parentColumn()}

		res, err := MaterialSample{}.ProcessResource(context.Background(), sc)
		require.NoError(t, err)

		assert.True(t, res.ShouldPause)
		require.Len(t, sc.Selection.ParentCandidates, 2)
		assert.Equal(t, resource.Draft{
			"id":    "parent-1",
			"type":  schema.MaterialSample,
			nameKey: "PARENT-SAMPLE-001",
		}, sc.Selection.ParentCandidates[0])
	})

	t.Run("selected parent is mapped", func(t *testing.T) {
		sc := newContext(&mockBackend{}, &linkRecorder{})
		sc.Resource[parentKey] = map[string]any{nameKey: "PARENT-SAMPLE-001"}
		sc.ColumnMap = columnmap.ColumnMap{"Parent Sample": parentColumn()}
		sc.Selection.Parent = resource.Draft{"id": "selected-parent-123", "type": schema.MaterialSample}

		res, err := MaterialSample{}.ProcessResource(context.Background(), sc)
		require.NoError(t, err)

		assert.False(t, res.ShouldPause)
		assert.Equal(t,
			columnmap.One(resource.Ref{ID: "selected-parent-123", Type: schema.MaterialSample}),
			sc.ColumnMap["Parent Sample"].ValueMapping["PARENT-SAMPLE-001"])
		assert.Nil(t, sc.Selection.Parent)
	})
}

func TestMaterialSample_AppendArrays(t *testing.T) {
	assoc := func(id string) map[string]any {
		return map[string]any{"id": id, "type": "association"}
	}

	t.Run("attribute arrays", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("Get", mock.Anything, samplesPath, mock.Anything).
			Return([]resource.Draft{{"id": "existing-123", "associations": []any{assoc("assoc-1")}}}, nil)

		sc := newContext(backend, &linkRecorder{})
		sc.AppendData = true
		sc.Resource["associations"] = []any{assoc("assoc-2")}

		_, err := MaterialSample{}.ProcessResource(context.Background(), sc)
		require.NoError(t, err)

		assert.Equal(t, []any{assoc("assoc-2"), assoc("assoc-1")}, sc.Resource["associations"])
	})

	t.Run("relationship arrays", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("Get", mock.Anything, samplesPath, mock.Anything).
			Return([]resource.Draft{{"id": "existing-123", "associations": []any{assoc("assoc-1")}}}, nil)

		sc := newContext(backend, &linkRecorder{})
		sc.AppendData = true
		sc.Resource[resource.RelationshipsKey] = resource.Relationships{
			"associations": {Data: []resource.Ref{{ID: "assoc-2", Type: "association"}}},
		}

		_, err := MaterialSample{}.ProcessResource(context.Background(), sc)
		require.NoError(t, err)

		assert.Equal(t, []resource.Ref{
			{ID: "assoc-2", Type: "association"},
			{ID: "assoc-1", Type: "association"},
		}, sc.Resource.Relationships()["associations"].Data)
	})
}

func TestMaterialSample_LinksEveryKey(t *testing.T) {
	links := &linkRecorder{}
	sc := newContext(&mockBackend{}, links)
	sc.Resource["preparationMethod"] = map[string]any{"id": "1", "type": "preparation-method"}

	_, err := MaterialSample{}.ProcessResource(context.Background(), sc)
	require.NoError(t, err)

	assert.Equal(t, []string{nameKey, "preparationMethod", SourceSetKey, "type"}, links.paths)
}
