// Package delim manages the open/close token pairs engines use to locate
// interpolation expressions, keyed by file extension. A default set always
// exists so resolution never comes up empty.
package delim
