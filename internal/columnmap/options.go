package columnmap

import (
	"cmp"
	"slices"
	"strings"

	"workbook-loader/internal/common"
	"workbook-loader/internal/match"
	"workbook-loader/internal/schema"
)

// Option is one selectable field.
type Option struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	ParentPath string `json:"parentPath,omitempty"`
}

// FieldOption is either a top-level Option or a labelled group of nested
// options sharing a parent path.
type FieldOption struct {
	Option
	Options []Option `json:"options,omitempty"`
}

// IsGroup reports whether the option is a group of nested options.
func (o FieldOption) IsGroup() bool {
	return o.Options != nil
}

// Options is the display list of selectable fields.
type Options []FieldOption

// FieldOptions lists every leaf field of a flattened entity. Top-level fields
// come first, sorted by label, followed by one group per parent path.
func FieldOptions(flat *schema.Flat) Options {
	var (
		plain   []Option
		groups  = map[string][]Option{}
		parents []string
	)

	for _, path := range flat.DeclaredPaths() {
		if flat.DataType(path).IsObject() {
			continue
		}

		parent, nested := common.ParentPath(path)
		if !nested {
			plain = append(plain, Option{Label: match.StartCase(path), Value: path})
			continue
		}

		if _, seen := groups[parent]; !seen {
			parents = append(parents, parent)
		}

		groups[parent] = append(groups[parent], Option{
			Label:      match.StartCase(common.LastSegment(path)),
			Value:      path,
			ParentPath: parent,
		})
	}

	slices.SortStableFunc(plain, func(a, b Option) int { return compareLabels(a.Label, b.Label) })

	out := make(Options, 0, len(plain)+len(parents))
	for _, o := range plain {
		out = append(out, FieldOption{Option: o})
	}

	grouped := make(Options, 0, len(parents))
	for _, parent := range parents {
		grouped = append(grouped, FieldOption{
			Option:  Option{Label: groupLabel(parent)},
			Options: groups[parent],
		})
	}

	slices.SortStableFunc(grouped, func(a, b FieldOption) int { return compareLabels(a.Label, b.Label) })

	return append(out, grouped...)
}

// Flatten returns the selectable options in display order, groups expanded.
func (o Options) Flatten() []Option {
	var out []Option

	for _, fo := range o {
		if fo.IsGroup() {
			out = append(out, fo.Options...)
		} else {
			out = append(out, fo.Option)
		}
	}

	return out
}

// Suggest ranks options by fuzzy similarity to header and returns at most n
// of those scoring at least match.DefaultMinScore.
func Suggest(header string, options []Option, n int) match.CandidateList {
	targets := common.Map(options, func(o Option) match.Target {
		return match.Target{Value: o.Value, Label: o.Label}
	})

	return match.Rank(header, targets).AboveThreshold(match.DefaultMinScore).Top(n)
}

// "collectingEvent.geoReferenceAssertions" -> "Collecting Event.Geo Reference Assertions"
func groupLabel(parent string) string {
	return strings.Join(common.Map(strings.Split(parent, "."), match.StartCase), ".")
}

func compareLabels(a, b string) int {
	if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}

	return cmp.Compare(a, b)
}
