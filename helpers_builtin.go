package views

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// registerBuiltinHelpers installs the default string helpers. The helper
// key argument carries the input value; locals are unused.
func (v *Views) registerBuiltinHelpers() error {
	policy := bluemonday.UGCPolicy()

	builtins := map[string]func(string) string{
		"sanitize": policy.Sanitize,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"trim":     strings.TrimSpace,
	}
	for name, fn := range builtins {
		fn := fn
		if err := v.syncHelpers.Register(name, func(value string, _ map[string]any) (string, error) {
			return fn(value), nil
		}); err != nil {
			return fmt.Errorf("views: register helper %q: %w", name, err)
		}
	}

	// json encodes the locals when present, otherwise the string value.
	if err := v.syncHelpers.Register("json", func(value string, locals map[string]any) (string, error) {
		var src any = value
		if len(locals) > 0 {
			src = locals
		}
		encoded, err := json.Marshal(src)
		if err != nil {
			return "", fmt.Errorf("views: json helper: %w", err)
		}
		return string(encoded), nil
	}); err != nil {
		return fmt.Errorf("views: register helper %q: %w", "json", err)
	}
	return nil
}
