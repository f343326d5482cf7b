package diff

// Normalize flattens a Value into the string elements a list diff operates on.
// Order and duplicates are preserved.
func Normalize(v Value) []string {
	switch v.Kind() {
	case KindSequence:
		elems := v.Elements()
		result := make([]string, len(elems))
		for i, item := range elems {
			result[i] = item.String()
		}
		return result
	case KindScalar:
		s, _ := v.Scalar()
		return []string{s.String()}
	case KindStructured:
		return []string{v.Literal()}
	}
	return []string{}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func sameValues(a, b Value) bool {
	if a.IsAbsent() != b.IsAbsent() {
		return false
	}
	aslice, bslice := Normalize(a), Normalize(b)
	if len(aslice) != len(bslice) {
		return false
	}
	for i := range aslice {
		if aslice[i] != bslice[i] {
			return false
		}
	}
	return true
}
