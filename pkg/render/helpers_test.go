package render_test

import "sort"

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func sortMessages(fields map[string][]string) {
	for key, messages := range fields {
		fields[key] = sortedCopy(messages)
	}
}
