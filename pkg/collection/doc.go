// Package collection groups templates into named collections and assigns
// each collection one or more roles: renderable (directly addressable),
// layout (wraps other content), partial (embeddable fragment). Declaring a
// collection generates a small struct of bound accessors instead of
// injecting methods anywhere; callers look accessors up by name.
package collection
