package diff

import "sort"

// ComputeArrayDiff compares two attribute values as sets of strings.
//
// Removed and Added follow the original occurrence order of their side, so a
// duplicated value missing from the other side is reported once per occurrence.
// Unchanged is de-duplicated and ordered by first appearance in oldValue.
func ComputeArrayDiff(oldValue, newValue Value) ArrayDiffResult {
	oldItems := Normalize(oldValue)
	newItems := Normalize(newValue)

	oldSet := toSet(oldItems)
	newSet := toSet(newItems)

	result := ArrayDiffResult{
		Added:     []string{},
		Removed:   []string{},
		Unchanged: []string{},
	}

	seen := make(map[string]struct{})
	for _, item := range oldItems {
		if _, ok := newSet[item]; !ok {
			result.Removed = append(result.Removed, item)
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		result.Unchanged = append(result.Unchanged, item)
	}

	for _, item := range newItems {
		if _, ok := oldSet[item]; !ok {
			result.Added = append(result.Added, item)
		}
	}

	return result
}

// IsMultiValuedChange guesses the display mode when no schema flag is known.
// Only sequences count towards the lengths. Two single-element sequences are
// still shown as a list diff.
func IsMultiValuedChange(oldValue, newValue Value) bool {
	oldLen := oldValue.Len()
	newLen := newValue.Len()
	return oldLen > 1 || newLen > 1 || (oldLen >= 1 && newLen >= 1)
}

// ShouldShowAsMultiValued decides between a list diff and a scalar replacement.
// The schema's single-valued flag wins over the heuristic when present.
func ShouldShowAsMultiValued(change AttributeChange) bool {
	if change.IsSingleValued != nil {
		return !*change.IsSingleValued
	}
	return IsMultiValuedChange(change.OldValue, change.NewValue)
}

// FindChanges compares two attribute snapshots and returns a change per attribute
// that was added, removed or modified, sorted by attribute name.
func FindChanges(prev, curr map[string]Value) []AttributeChange {
	var changes []AttributeChange

	for name, newVal := range curr {
		oldVal, exists := prev[name]
		if !exists || !sameValues(oldVal, newVal) {
			changes = append(changes, AttributeChange{
				Attribute: name,
				OldValue:  oldVal,
				NewValue:  newVal,
			})
		}
	}

	for name, oldVal := range prev {
		if _, exists := curr[name]; !exists {
			changes = append(changes, AttributeChange{
				Attribute: name,
				OldValue:  oldVal,
				NewValue:  Absent(),
			})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Attribute < changes[j].Attribute
	})
	return changes
}
