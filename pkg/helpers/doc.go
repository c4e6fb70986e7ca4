// Package helpers holds the generic helper functions templates can call
// from inside any engine. Synchronous helpers run inline during engine
// execution. Asynchronous helpers cannot: most engines execute helpers in a
// blocking fashion, so an async helper immediately returns an opaque
// placeholder token and schedules its real computation; after the engine
// returns, a resolution pass swaps every token for its settled value before
// the render result is delivered.
package helpers
