// Package store persists save-session state between process runs.
//
// A Store is a small key/value port. Memory keeps values in process, File
// keeps one file per key on an afero filesystem, and Gorm keeps them in a
// session_entries table on sqlite or postgres. Open picks one by driver
// name.
package store
