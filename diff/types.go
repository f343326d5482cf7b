package diff

// AttributeChange is one attribute's old and new value for a single object version.
// IsSingleValued is nil when the backend did not report the attribute's schema.
type AttributeChange struct {
	SchemaID       string `json:"schema_id,omitempty"`
	Attribute      string `json:"attribute"`
	OldValue       Value  `json:"old_value"`
	NewValue       Value  `json:"new_value"`
	Timestamp      string `json:"timestamp,omitempty"`
	IsSingleValued *bool  `json:"is_single_valued,omitempty"`
}

// ArrayDiffResult is the set difference between the old and new elements of a
// multi-valued attribute. Slices are never nil.
type ArrayDiffResult struct {
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
}

// Empty reports whether nothing was added or removed.
func (r ArrayDiffResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0
}
