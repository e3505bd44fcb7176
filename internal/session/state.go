package session

import (
	"strconv"

	"github.com/google/uuid"

	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/handler"
)

const (
	// MetadataKey is the store key of the session State.
	MetadataKey = "workbookResourceMetaData"
	// resourcesKeyPrefix is followed by the resource type.
	resourcesKeyPrefix = "workbook:"
)

// ResourcesKey is the store key of the pending resources of type typ.
func ResourcesKey(typ string) string {
	return resourcesKeyPrefix + typ
}

// State is the persisted state of a save session.
type State struct {
	Progress   int                 `json:"progress"`
	Total      int                 `json:"total"`
	Status     Status              `json:"status"`
	Type       string              `json:"type,omitempty"`
	Group      string              `json:"group,omitempty"`
	APIBaseURL string              `json:"apiBaseUrl,omitempty"`
	SourceSet  string              `json:"sourceSet,omitempty"`
	Error      string              `json:"error,omitempty"`
	AppendData bool                `json:"appendData"`
	ColumnMap  columnmap.ColumnMap `json:"columnMap,omitempty"`
	Selection  *handler.Selection  `json:"selection,omitempty"`
}

// Percent returns the progress as a percentage of Total.
func (s State) Percent() int {
	if s.Total == 0 {
		return 0
	}

	return s.Progress * 100 / s.Total
}

// ChunkKey is the idempotency key of the chunk starting at start. It is
// stable for a source set, so a resubmitted chunk carries the same key.
func ChunkKey(sourceSet string, start int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceSet+"/"+strconv.Itoa(start))).String()
}
