package formatters

import (
	"bytes"
	"encoding/json"
	"strings"

	"f0oster/adspyview/diff"
)

const (
	noneText  = "(none)"
	emptyText = "(empty)"

	securityDescriptorAttribute = "ntsecuritydescriptor"
)

// FormatValue renders an attribute value as a single human-readable string.
// It never fails and always yields the same output for the same input.
func FormatValue(v diff.Value) string {
	switch v.Kind() {
	case diff.KindAbsent:
		return noneText
	case diff.KindSequence:
		elems := v.Elements()
		switch len(elems) {
		case 0:
			return emptyText
		case 1:
			return elems[0].String()
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.String()
		}
		return strings.Join(parts, ", ")
	case diff.KindStructured:
		var buf bytes.Buffer
		if err := json.Indent(&buf, v.Raw(), "", "  "); err != nil {
			return string(v.Raw())
		}
		return buf.String()
	}
	s, _ := v.Scalar()
	return s.String()
}

// IsSecurityDescriptor reports whether attr names the nTSecurityDescriptor attribute.
func IsSecurityDescriptor(attr string) bool {
	return strings.ToLower(attr) == securityDescriptorAttribute
}

// GetBase64Value picks the encoded security descriptor payload out of an attribute value.
// Nothing is decoded here.
func GetBase64Value(v diff.Value) string {
	if s, ok := v.Scalar(); ok && s.Kind() == diff.ScalarString {
		return s.String()
	}
	if elems := v.Elements(); len(elems) > 0 {
		return elems[0].String()
	}
	return ""
}
