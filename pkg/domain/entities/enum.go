package entities

import "fmt"

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}

func parseEnum[T ~int](kind string, names []string, s string) (T, error) {
	for i, name := range names {
		if name == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q: %w", kind, s, ErrValidation)
}
