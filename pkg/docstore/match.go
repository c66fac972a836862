package docstore

import (
	"sort"
)

// matchDocument reports whether doc satisfies every condition in filter.
func matchDocument(doc Document, filter Filter) bool {
	for key, want := range filter {
		got, ok := doc[key]
		if !ok {
			return false
		}
		if rng, isRange := want.(Range); isRange {
			if rng.GTE != nil {
				if c, comparable := compareValues(got, rng.GTE); !comparable || c < 0 {
					return false
				}
			}
			if rng.LTE != nil {
				if c, comparable := compareValues(got, rng.LTE); !comparable || c > 0 {
					return false
				}
			}
			continue
		}
		if !equalValues(got, want) {
			return false
		}
	}
	return true
}

// equalValues compares with numeric coercion so that an int64 written by the
// caller still matches the float64 a JSON round trip produces.
func equalValues(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

// compareValues returns -1/0/1 and whether the two values were comparable.
func compareValues(a, b any) (int, bool) {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case as < bs:
		return -1, true
	case as > bs:
		return 1, true
	}
	return 0, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}

// sortDocuments orders docs by the named field. Documents missing the field
// sort last regardless of direction.
func sortDocuments(docs []Document, field string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, aok := docs[i][field]
		b, bok := docs[j][field]
		if !aok || !bok {
			return aok
		}
		c, comparable := compareValues(a, b)
		if !comparable {
			return false
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// runAggregation evaluates a match-then-group pipeline over docs. A
// whole-set aggregation always yields exactly one result, zero-valued when
// nothing matched; a keyed aggregation yields one result per distinct key.
func runAggregation(docs []Document, agg Aggregation) []GroupResult {
	var matched []Document
	for _, d := range docs {
		if matchDocument(d, agg.Match) {
			matched = append(matched, d)
		}
	}

	if agg.GroupBy == "" {
		return []GroupResult{{Key: nil, Values: computeFields(matched, agg.Fields)}}
	}

	groups := make(map[any][]Document)
	var order []any
	for _, d := range matched {
		key := d[agg.GroupBy]
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}

	results := make([]GroupResult, 0, len(order))
	for _, key := range order {
		results = append(results, GroupResult{Key: key, Values: computeFields(groups[key], agg.Fields)})
	}
	return results
}

func computeFields(docs []Document, fields []AggregateField) map[string]float64 {
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		var acc float64
		for _, d := range docs {
			switch f.Op {
			case OpCount:
				acc++
			case OpSum:
				if n, ok := asFloat(d[f.Field]); ok {
					acc += n
				}
			case OpCountIf:
				if equalValues(d[f.Field], f.Equals) {
					acc++
				}
			}
		}
		out[f.Name] = acc
	}
	return out
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
