package api

import (
	"context"

	"workbook-loader/internal/resource"
)

// Backend is the backend collaborator of the linker and the batch controller.
type Backend interface {
	// Get returns the records at path matching every filter entry.
	Get(ctx context.Context, path string, filter map[string]string) ([]resource.Draft, error)
	// Save persists the resources in order and returns them as saved.
	Save(ctx context.Context, ops []SaveOperation, opts SaveOptions) ([]resource.Draft, error)
}

// SaveOperation is one resource to create or update.
type SaveOperation struct {
	Resource resource.Draft
	Type     string
}

// SaveOptions apply to a whole Save call.
type SaveOptions struct {
	// APIBaseURL is the service prefix, e.g. "/collection-api".
	APIBaseURL string
	// IdempotencyKey, when set, is sent so a replayed call is not applied twice.
	IdempotencyKey string
}

// ManagedAttribute is a user-defined attribute known to the backend.
type ManagedAttribute struct {
	ID                    string   `json:"id"`
	Type                  string   `json:"type"`
	Key                   string   `json:"key"`
	Name                  string   `json:"name"`
	VocabularyElementType string   `json:"vocabularyElementType"`
	AcceptedValues        []string `json:"acceptedValues,omitempty"`
}
