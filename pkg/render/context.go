package render

import (
	"context"

	"github.com/goliatone/go-views/pkg/collection"
	"github.com/goliatone/go-views/pkg/view"
)

// PartialMaterializer renders a partial-role template to the string that
// gets folded into the context. The pipeline supplies one; tests can stub
// it out.
type PartialMaterializer func(ctx context.Context, col *collection.Collection, t *view.Template) string

// contextBuilder merges the overlapping data sources of one render into a
// single mapping. Merge order is a strict contract; later steps win on key
// collision.
type contextBuilder struct {
	collections *collection.Registry
	global      map[string]any

	// preferLocals flips the template data/locals merge order so locals win
	// over data.
	preferLocals bool
	// flattenPartials folds every partial collection into one "partials"
	// bucket; otherwise each collection keeps its own name.
	flattenPartials bool

	materialize PartialMaterializer
}

// Build produces the ephemeral render context for one template. The result
// is never persisted on the record.
func (b *contextBuilder) Build(ctx context.Context, t *view.Template, callLocals map[string]any) map[string]any {
	merged := make(map[string]any)
	mergeInto(merged, b.global)

	if t != nil {
		if b.preferLocals {
			mergeInto(merged, t.Data)
			mergeInto(merged, t.Locals)
		} else {
			mergeInto(merged, t.Locals)
			mergeInto(merged, t.Data)
		}
	}

	b.mergePartials(ctx, merged)
	b.mergeLayoutData(merged)

	mergeInto(merged, callLocals)
	return merged
}

func (b *contextBuilder) mergePartials(ctx context.Context, merged map[string]any) {
	if b.collections == nil {
		return
	}
	for _, col := range b.collections.Partials() {
		bucketName := "partials"
		if !b.flattenPartials {
			bucketName = col.Name
		}
		bucket, _ := merged[bucketName].(map[string]any)
		if bucket == nil {
			bucket = make(map[string]any)
		}
		for key, record := range col.All() {
			content := record.Content
			if b.materialize != nil {
				content = b.materialize(ctx, col, record)
			}
			bucket[key] = content
		}
		merged[bucketName] = bucket
	}
}

func (b *contextBuilder) mergeLayoutData(merged map[string]any) {
	if b.collections == nil {
		return
	}
	for _, col := range b.collections.Layouts() {
		for _, record := range col.All() {
			mergeInto(merged, record.Locals)
			mergeInto(merged, record.Data)
		}
	}
}

// mergeInto deep-merges src into dst. Collisions are resolved per key, with
// src winning; nested mappings merge recursively instead of replacing
// wholesale.
func mergeInto(dst, src map[string]any) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		if !srcIsMap {
			dst[key] = value
			continue
		}
		dstMap, dstIsMap := dst[key].(map[string]any)
		if !dstIsMap {
			dstMap = make(map[string]any, len(srcMap))
		} else {
			copied := make(map[string]any, len(dstMap))
			for k, v := range dstMap {
				copied[k] = v
			}
			dstMap = copied
		}
		mergeInto(dstMap, srcMap)
		dst[key] = dstMap
	}
}
