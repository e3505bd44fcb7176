package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workbook-loader/internal/api"
	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/schema"
	"workbook-loader/internal/workbook"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Vocabulary(ctx context.Context, endpoint string) ([]string, error) {
	args := m.Called(ctx, endpoint)
	values, _ := args.Get(0).([]string)

	return values, args.Error(1)
}

func (m *mockCatalog) ManagedAttributes(ctx context.Context, endpoint string) ([]api.ManagedAttribute, error) {
	args := m.Called(ctx, endpoint)
	attrs, _ := args.Get(0).([]api.ManagedAttribute)

	return attrs, args.Error(1)
}

func sheet(rows ...[]string) workbook.Workbook {
	s := &workbook.Sheet{SheetName: "samples"}
	for i, content := range rows {
		s.Rows = append(s.Rows, workbook.Row{RowNumber: i, Content: content})
	}

	return workbook.Workbook{0: s}
}

func TestRun(t *testing.T) {
	wb := sheet(
		[]string{" Material Sample Name ", "Collection", "Barcode", "Colour", ""},
		[]string{"ms-1", "C1", "b-1", "red", ""},
		[]string{"ms-2", "C1", "", "blue", ""},
	)

	r, err := Run(context.Background(), wb, Options{Group: "aafc", SkipUnmapped: true})
	require.NoError(t, err, spew.Sdump(r))

	assert.Equal(t, schema.MaterialSample, r.Entity)
	assert.Len(t, r.Columns, 4, "the empty column is removed")
	assert.Equal(t, "Material Sample Name", r.Columns[0].Header)

	require.Contains(t, r.ColumnMap, "Collection")
	assert.Equal(t, "collection.name", r.ColumnMap["Collection"].FieldPath)
	assert.True(t, r.ColumnMap["Collection"].MapRelationship)
	assert.Equal(t, 1, r.ColumnMap["Collection"].NumOfUniqueValues)
	assert.Empty(t, r.ColumnMap["Colour"].FieldPath)

	require.Len(t, r.Rows, 2)
	assert.Equal(t, 1, r.Rows[0][workbook.RowNumberKey])

	require.Len(t, r.Drafts, 2)

	d := r.Drafts[0]
	assert.Equal(t, "material-sample", d.Type())
	assert.Equal(t, "aafc", d["group"])
	assert.Equal(t, "ms-1", d["materialSampleName"])
	assert.Equal(t, "b-1", d["barcode"])
	assert.NotContains(t, d, workbook.RowNumberKey)
	assert.NotContains(t, d, "Colour")

	collection, ok := d["collection"].(map[string]any)
	require.True(t, ok, spew.Sdump(d))
	assert.Equal(t, "C1", collection["name"])

	typ, base := r.Target()
	assert.Equal(t, "material-sample", typ)
	assert.Equal(t, "/collection-api", base)
}

func TestRun_Unmapped(t *testing.T) {
	wb := sheet(
		[]string{"Material Sample Name", "Colour"},
		[]string{"ms-1", "red"},
	)

	r, err := Run(context.Background(), wb, Options{})
	require.ErrorIs(t, err, ErrInvalid)
	require.NotNil(t, r)

	assert.True(t, r.Diagnostics.HasErrors())
	assert.Nil(t, r.Drafts)
}

func TestMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		wb   workbook.Workbook
		opts Options
	}{
		{
			name: "missing sheet",
			wb:   sheet([]string{"Material Sample Name"}),
			opts: Options{Sheet: 3},
		},
		{
			name: "unknown entity",
			wb:   sheet([]string{"Material Sample Name"}),
			opts: Options{Entity: "specimen"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Map(context.Background(), tt.wb, tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestRun_Catalog(t *testing.T) {
	catalog := &mockCatalog{}
	catalog.On("Vocabulary", mock.Anything, "/collection-api/vocabulary/materialSampleType").
		Return([]string{"WHOLE_ORGANISM", "MIXED_ORGANISMS"}, nil).Once()
	catalog.On("ManagedAttributes", mock.Anything, "/collection-api/managed-attribute").
		Return([]api.ManagedAttribute{
			{Key: "legacy_barcode", Name: "Legacy Barcode", VocabularyElementType: workbook.ElementString},
		}, nil).Once()

	wb := sheet(
		[]string{"Material Sample Name", "Material Sample Type", "Legacy Barcode"},
		[]string{"ms-1", "WHOLE_ORGANISM", "LB-1"},
	)

	r, err := Run(context.Background(), wb, Options{Catalog: catalog})
	require.NoError(t, err, spew.Sdump(r))
	catalog.AssertExpectations(t)

	e := r.ColumnMap["Legacy Barcode"]
	require.NotNil(t, e)
	assert.Equal(t, "managedAttributes", e.FieldPath)
	require.NotNil(t, e.TargetKey)
	assert.Equal(t, "legacy_barcode", e.TargetKey.Key)

	require.Len(t, r.Drafts, 1)
	assert.Equal(t, "WHOLE_ORGANISM", r.Drafts[0]["materialSampleType"])
	assert.Equal(t, map[string]any{"legacy_barcode": "LB-1"}, r.Drafts[0]["managedAttributes"])
}

func TestRun_CatalogRejectsValue(t *testing.T) {
	catalog := &mockCatalog{}
	catalog.On("Vocabulary", mock.Anything, mock.Anything).Return([]string{"WHOLE_ORGANISM"}, nil)
	catalog.On("ManagedAttributes", mock.Anything, mock.Anything).Return([]api.ManagedAttribute(nil), nil)

	wb := sheet(
		[]string{"Material Sample Name", "Material Sample Type"},
		[]string{"ms-1", "fossil"},
	)

	r, err := Run(context.Background(), wb, Options{Catalog: catalog})
	require.ErrorIs(t, err, ErrInvalid)

	errs := r.Diagnostics.ByCode(columnmap.CodeInvalidDataFormat)
	require.Len(t, errs, 1)
	assert.Equal(t, "materialSampleType", errs[0].Location.FieldPath)
	assert.Equal(t, 2, errs[0].Location.Row)
}

func TestMap_CatalogError(t *testing.T) {
	catalog := &mockCatalog{}
	catalog.On("Vocabulary", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	catalog.On("ManagedAttributes", mock.Anything, mock.Anything).Return(nil, nil)

	_, err := Map(context.Background(), sheet([]string{"Material Sample Name"}), Options{Catalog: catalog})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "materialSampleType")
}
