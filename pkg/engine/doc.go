// Package engine defines the pluggable rendering engine contract and the
// registry that maps file extensions to adapters. Adapters advertise their
// capabilities (compile, synchronous render, asynchronous render) through
// optional interfaces; the registry resolves which adapter and delimiter set
// apply to a given template using a fixed precedence order.
package engine
