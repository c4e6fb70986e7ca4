// Package render orchestrates the composition pipeline: template lookup,
// before middleware, context building, layout wrapping, engine dispatch,
// async helper resolution, and after middleware. The pipeline exposes two
// named entry points, RenderSync and RenderAsync, sharing one internal
// implementation; no calling convention is inferred from arguments.
package render
