// Package layering composes configuration maps ordered from strongest to
// weakest.
package layering

// MergeLayers composes layers ordered from strongest to weakest, returning a
// new map that keeps entries from stronger layers while filling missing keys
// from weaker ones. Nested map[string]any values merge recursively; slices
// are copied, never concatenated. A nil result is returned only when every
// layer is nil.
func MergeLayers[M ~map[string]any](layers ...M) M {
	var merged M
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i] == nil {
			continue
		}
		merged = M(mergeMaps(map[string]any(layers[i]), map[string]any(merged)))
	}
	return merged
}

func mergeMaps(strong, weak map[string]any) map[string]any {
	out := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		out[key] = Clone(value)
	}
	for key, value := range strong {
		strongMap, strongIsMap := value.(map[string]any)
		weakMap, weakIsMap := out[key].(map[string]any)
		if strongIsMap && weakIsMap {
			out[key] = mergeMaps(strongMap, weakMap)
			continue
		}
		out[key] = Clone(value)
	}
	return out
}

// Clone copies nested maps and slices so merged results never alias their
// inputs. Other values, functions included, are returned as is.
func Clone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		if typed == nil {
			return typed
		}
		out := make(map[string]any, len(typed))
		for key, nested := range typed {
			out[key] = Clone(nested)
		}
		return out
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, nested := range typed {
			out[i] = Clone(nested)
		}
		return out
	case []string:
		if typed == nil {
			return typed
		}
		return append([]string(nil), typed...)
	default:
		return value
	}
}
