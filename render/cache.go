package render

import (
	"sync"

	"f0oster/adspyview/diff"
)

// Mode names a way of turning a value into display text.
type Mode string

const ModePlain Mode = "plain"

// AttributeMode is the display mode of values of attr after its registered
// transformer ran.
func AttributeMode(attr string) Mode {
	return Mode("attr:" + attr)
}

type cacheKey struct {
	literal string
	mode    Mode
}

// Cache memoizes formatted values by their JSON literal and display mode.
// Entries are written once and never replaced, so concurrent readers always
// agree on the text for a key.
type Cache struct {
	entries sync.Map
}

func (c *Cache) Format(v diff.Value, mode Mode, format func() string) string {
	key := cacheKey{literal: v.Literal(), mode: mode}
	if s, ok := c.entries.Load(key); ok {
		return s.(string)
	}
	actual, _ := c.entries.LoadOrStore(key, format())
	return actual.(string)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
