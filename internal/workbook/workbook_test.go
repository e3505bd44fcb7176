package workbook

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbook-loader/internal/schema"
)

func sheetOf(rows ...[]string) *Sheet {
	s := &Sheet{SheetName: "Sheet1"}
	for i, r := range rows {
		s.Rows = append(s.Rows, Row{RowNumber: i, Content: r})
	}

	return s
}

func TestWriteFile_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.xlsx")

	samples := sheetOf(
		[]string{"Material Sample Name", "Collection", "Date"},
		[]string{"S-1", "CNC", "45000"},
		[]string{"S-2", "CNC", "45001"},
	)
	samples.SheetName = "Samples"
	samples.OriginalColumns = []string{"materialSampleName", "collection.name", "collectingEvent.startEventDateTime"}
	samples.ColumnAliases = []string{"Material Sample Name", "Collection", "Date"}

	notes := sheetOf([]string{"note"}, []string{"hello"})
	notes.SheetName = "Notes"

	require.NoError(t, WriteFile(Workbook{0: samples, 1: notes}, path))

	wb, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, wb, 2)

	got := wb[0]
	assert.Equal(t, "Samples", got.SheetName)
	assert.Equal(t, samples.Rows, got.Rows)
	assert.Equal(t, samples.OriginalColumns, got.OriginalColumns)
	assert.Equal(t, samples.ColumnAliases, got.ColumnAliases)

	assert.Equal(t, "Notes", wb[1].SheetName)
	assert.Empty(t, wb[1].OriginalColumns)
	assert.Equal(t, notes.Rows, wb[1].Rows)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}

func TestDecode(t *testing.T) {
	doc := `{"0": {"sheetName": "Sheet1", "rows": [
		{"rowNumber": 0, "content": ["a", "b"]},
		{"rowNumber": 1, "content": ["1", "2"]}
	], "originalColumns": ["a", "b"]}}`

	wb, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	s, err := wb.Sheet(0)
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", s.SheetName)
	assert.Equal(t, []string{"1", "2"}, s.Rows[1].Content)
	assert.Equal(t, []string{"a", "b"}, s.OriginalColumns)

	_, err = wb.Sheet(3)
	require.ErrorIs(t, err, ErrNoSheet)

	_, err = Decode(strings.NewReader("{"))
	require.Error(t, err)
}

func TestColumnHeaders(t *testing.T) {
	s := sheetOf([]string{}, []string{"a", "b"}, []string{"1", "2"})
	s.OriginalColumns = []string{"x.a", "x.b", "x.c"}

	got := ColumnHeaders(Workbook{0: s}, 0)
	assert.Equal(t, []Column{
		{Header: "a", Original: "x.a"},
		{Header: "b", Original: "x.b"},
		{Header: "", Original: "x.c"},
	}, got)

	assert.Nil(t, ColumnHeaders(Workbook{0: &Sheet{}}, 0))
	assert.Nil(t, ColumnHeaders(Workbook{}, 1))
}

func TestValidateTemplateIntegrity(t *testing.T) {
	tests := []struct {
		name    string
		columns []Column
		want    bool
	}{
		{
			name:    "no template",
			columns: []Column{{Header: "a"}, {Header: "b"}},
			want:    true,
		},
		{
			name: "matches original or alias",
			columns: []Column{
				{Header: "materialSampleName", Original: "materialSampleName", Alias: "Sample Name"},
				{Header: "Collection", Original: "collection.name", Alias: "Collection"},
			},
			want: true,
		},
		{
			name: "renamed header",
			columns: []Column{
				{Header: "Renamed", Original: "materialSampleName", Alias: "Sample Name"},
			},
			want: false,
		},
		{
			name: "extra header",
			columns: []Column{
				{Header: "materialSampleName", Original: "materialSampleName", Alias: "Sample Name"},
				{Header: "extra"},
			},
			want: false,
		},
		{
			name: "missing alias",
			columns: []Column{
				{Header: "a", Original: "a"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateTemplateIntegrity(tt.columns))
		})
	}
}

func TestTrimSpace(t *testing.T) {
	wb := Workbook{0: sheetOf([]string{" a ", "b\t"}, []string{"  1", ""})}

	TrimSpace(wb)

	assert.Equal(t, []string{"a", "b"}, wb[0].Rows[0].Content)
	assert.Equal(t, []string{"1", ""}, wb[0].Rows[1].Content)
}

func TestRemoveEmptyColumns(t *testing.T) {
	wb := Workbook{
		0: sheetOf([]string{"a", " ", "c", ""}, []string{"1", "2", "3", "4"}, []string{"5", "6", "7"}),
		1: sheetOf([]string{"a", ""}),
	}

	RemoveEmptyColumns(wb)

	assert.Equal(t, []string{"a", "c"}, wb[0].Rows[0].Content)
	assert.Equal(t, []string{"1", "3"}, wb[0].Rows[1].Content)
	assert.Equal(t, []string{"5", "7"}, wb[0].Rows[2].Content)

	// header-only sheets are untouched
	assert.Equal(t, []string{"a", ""}, wb[1].Rows[0].Content)
}

func TestCountUniqueValues(t *testing.T) {
	s := sheetOf(
		[]string{"collection.name", "remarks"},
		[]string{"CNC", " x "},
		[]string{" CNC", ""},
		[]string{"DAO"},
	)

	got := CountUniqueValues(Workbook{0: s})

	assert.Equal(t, UniqueValues{
		"collection_name": {"CNC": 2, "DAO": 1},
		"remarks":         {"x": 1},
	}, got[0])
	assert.Equal(t, 2, got[0].Count("collection.name"))
	assert.Equal(t, 0, got[0].Count("unknown"))
}

func TestDetectEntityType(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		originals []string
		want      string
	}{
		{"empty", nil, nil, schema.MaterialSample},
		{"metadata headers", []string{"File Name", "dcType", "Caption", "Material Sample Name"}, nil, schema.Metadata},
		{"sample headers", []string{"Material Sample Name", "Barcode", "Collection"}, nil, schema.MaterialSample},
		{"tie goes to samples", []string{"fileName", "barcode"}, nil, schema.MaterialSample},
		{"template original file name", []string{"x"}, []string{"originalFilename"}, schema.Metadata},
		{"template sample", []string{"File Name", "dcType"}, []string{"materialSampleName"}, schema.MaterialSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sheet{OriginalColumns: tt.originals}
			if tt.header != nil {
				s.Rows = []Row{{Content: tt.header}}
			}

			assert.Equal(t, tt.want, DetectEntityType(Workbook{0: s}, 0))
		})
	}

	assert.Equal(t, schema.MaterialSample, DetectEntityType(nil, 0))
}

func TestDataFromWorkbook(t *testing.T) {
	s := sheetOf(
		[]string{"name", "skip", "count", "flag", "when", "extra"},
		[]string{"S-1", "x", "12", "yes", "45000", "note"},
		[]string{},
		[]string{"S-2", "y", "", "", "", ""},
	)

	fieldMaps := []FieldMap{
		{ColumnHeader: "name", TargetField: "materialSampleName"},
		{ColumnHeader: "skip", Skipped: true},
		{ColumnHeader: "count", TargetField: "managedAttributes", TargetKey: &TargetKey{Key: "count", VocabularyElementType: ElementInteger}},
		{ColumnHeader: "flag", TargetField: "managedAttributes", TargetKey: &TargetKey{Key: "flag", VocabularyElementType: ElementBool}},
		{ColumnHeader: "when", TargetField: "managedAttributes", TargetKey: &TargetKey{Key: "when", VocabularyElementType: ElementDate}},
		{ColumnHeader: "extra", TargetField: "extensionValues", TargetKey: &TargetKey{Key: "extra"}},
	}

	got, err := DataFromWorkbook(Workbook{0: s}, 0, fieldMaps, true)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, map[string]any{
		"materialSampleName": "S-1",
		"managedAttributes": map[string]any{
			"count": float64(12),
			"flag":  true,
			"when":  "2023-03-15",
		},
		"extensionValues": map[string]any{"extra": "note"},
		RowNumberKey:      1,
	}, got[0])

	assert.Equal(t, map[string]any{
		"materialSampleName": "S-2",
		"extensionValues":    map[string]any{"extra": ""},
		RowNumberKey:         3,
	}, got[1])

	_, err = DataFromWorkbook(Workbook{}, 0, fieldMaps, false)
	require.ErrorIs(t, err, ErrNoSheet)
}
