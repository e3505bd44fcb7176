// Package session submits converted workbook resources to the backend in
// chunks, with pause, resume, cancel and crash recovery.
//
// The session state and the pending resources are persisted to a
// store.Store after every transition and every chunk, so a session
// interrupted by a crash is found again by Restore and continues from the
// last persisted chunk.
//
// Lifecycle:
//
//	READY -> SAVING -> FINISHED | FAILED -> (Acknowledge) -> READY
//	             \-> PAUSED -> SAVING
//	SAVING | PAUSED -> (Cancel) -> CANCELED
package session
