// Package view defines the template record shared across the module: the
// canonical shape produced by collection registration, the tagged input
// variants accepted by the add accessors, and the in-memory store that holds
// every collection's templates. Rendering never mutates a stored record; the
// pipeline works on clones and only writes the compiled-function cache back.
package view
