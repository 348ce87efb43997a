package result

// Prune removes default values from a decoded JSON document. Object keys
// whose pruned value is null, an empty string, an empty array or an empty
// object are dropped. Arrays are pruned element-wise but never shortened.
// Prune never mutates its input and is idempotent.
func Prune(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			pruned := Prune(child)
			if isEmpty(pruned) {
				continue
			}
			out[key] = pruned
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Prune(item)
		}
		return out
	default:
		return value
	}
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}
