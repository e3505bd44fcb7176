// Package api talks to the collection backend over its JSON:API interface.
//
// Backend is the narrow contract the linker and the batch controller depend
// on: a filtered Get and an ordered bulk Save through the operations
// endpoint. Client implements it with resty; tests substitute their own
// Backend.
package api
