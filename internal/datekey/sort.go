package datekey

import "slices"

// Sort returns the distinct tokens in ascending Key order. The first
// occurrence of a duplicate is kept and equal keys keep their input order.
// The input slice is not modified.
func Sort(tokens []string, monthly bool) []string {
	type keyed struct {
		token string
		key   Key
	}

	seen := make(map[string]struct{}, len(tokens))
	items := make([]keyed, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		items = append(items, keyed{token: t, key: Normalize(t, monthly)})
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return a.key.Compare(b.key)
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.token
	}
	return out
}
