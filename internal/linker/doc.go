// Package linker resolves the relationship nodes of a draft resource.
//
// A relationship node is a nested object still carrying its raw attributes
// and a relationship config marker. Link replaces it with a JSON:API
// relationship pointing at an existing record, creating the record first
// when the config allows it.
//
// Key functions:
//   - New builds a Linker over an api.Backend and a session Cache.
//   - Link resolves one attribute of a node, recursing depth-first.
//   - LinkAll resolves every top-level attribute of a draft.
//   - CacheKey derives the cache key of a natural-key lookup.
package linker
