// Package handler prepares each resource of a save chunk before submission.
//
// A Registry maps a resource type to the Handler that stamps the upload
// source set, resolves per-type concerns and links the resource's
// relationships. A handler may ask the caller to pause when it needs the
// user to choose between several existing records; the choice is recorded
// on the session-lived Selection and the resource is processed again on
// resume.
package handler
