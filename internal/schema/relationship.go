package schema

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=LinkOrCreateSetting -output=linksetting_string.go

// LinkOrCreateSetting controls how a relationship node is resolved.
type LinkOrCreateSetting int

const (
	// SettingNone is used by entity roots, which are never linked.
	SettingNone LinkOrCreateSetting = iota
	// Link only references existing records; unmatched values are dropped.
	Link
	// Create always persists a fresh record per row.
	Create
	// LinkOrCreate references an existing record and creates one when none matches.
	LinkOrCreate
	// LinkOrError references an existing record and fails when none matches.
	LinkOrError
)

var settingWireNames = map[LinkOrCreateSetting]string{
	Link:         "LINK",
	Create:       "CREATE",
	LinkOrCreate: "LINK_OR_CREATE",
	LinkOrError:  "LINK_OR_ERROR",
}

// Links reports whether existing records are looked up first.
func (s LinkOrCreateSetting) Links() bool {
	return s == Link || s == LinkOrCreate || s == LinkOrError
}

// Creates reports whether unmatched nodes are persisted as new records.
func (s LinkOrCreateSetting) Creates() bool {
	return s == Create || s == LinkOrCreate
}

// MarshalText implements encoding.TextMarshaler.
func (s LinkOrCreateSetting) MarshalText() ([]byte, error) {
	if s == SettingNone {
		return []byte{}, nil
	}

	name, ok := settingWireNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid link or create setting %d", int(s))
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LinkOrCreateSetting) UnmarshalText(text []byte) error {
	raw := strings.ToUpper(strings.TrimSpace(string(text)))
	if raw == "" {
		*s = SettingNone
		return nil
	}

	for setting, name := range settingWireNames {
		if name == raw {
			*s = setting
			return nil
		}
	}

	return fmt.Errorf("unknown link or create setting %q", string(text))
}

// RelationshipConfig describes the backend resource a node resolves to.
type RelationshipConfig struct {
	// Type is the JSON:API resource type, e.g. "collecting-event".
	Type string `json:"type" yaml:"type"`
	// HasGroup marks group-scoped resources, which get the upload group stamped.
	HasGroup bool `json:"hasGroup" yaml:"hasGroup"`
	// BaseAPIPath is the API the resource lives in, e.g. "/collection-api".
	BaseAPIPath string `json:"baseApiPath,omitempty" yaml:"baseApiPath,omitempty"`
	// LinkOrCreateSetting selects link, create or both. Zero on entity roots.
	LinkOrCreateSetting LinkOrCreateSetting `json:"linkOrCreateSetting,omitempty" yaml:"linkOrCreateSetting,omitempty"`
	// QueryFields restricts the natural-key filter to these attributes.
	QueryFields []string `json:"queryFields,omitempty" yaml:"queryFields,omitempty"`
}

// ResourcePath joins the base API path and the resource type, e.g.
// "/collection-api/collection".
func (rc *RelationshipConfig) ResourcePath() string {
	base := strings.TrimSuffix(rc.BaseAPIPath, "/")
	if base == "" {
		return rc.Type
	}

	return base + "/" + rc.Type
}

// Clone returns a deep copy.
func (rc *RelationshipConfig) Clone() *RelationshipConfig {
	if rc == nil {
		return nil
	}

	out := *rc
	if rc.QueryFields != nil {
		out.QueryFields = append([]string(nil), rc.QueryFields...)
	}

	return &out
}
