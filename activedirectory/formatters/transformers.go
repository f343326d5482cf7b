package formatters

import (
	"encoding/base64"
)

// Transformer rewrites one displayed attribute element. Implementations must
// return the input unchanged when they cannot interpret it.
type Transformer interface {
	Transform(value string) string
}

// TransformerFunc adapts a plain function to Transformer.
type TransformerFunc func(value string) string

func (f TransformerFunc) Transform(value string) string { return f(value) }

// PassthroughTransformer leaves values untouched.
type PassthroughTransformer struct{}

func (PassthroughTransformer) Transform(value string) string { return value }

// DNTransformer shortens distinguished names to their leading RDN value.
type DNTransformer struct{}

func (DNTransformer) Transform(value string) string { return FormatDNValue(value) }

// SIDTransformer decodes base64-encoded binary SIDs.
type SIDTransformer struct{}

func (SIDTransformer) Transform(value string) string {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return value
	}
	sid, err := ConvertSIDToString(raw)
	if err != nil {
		return value
	}
	return sid
}

// GUIDTransformer decodes base64-encoded binary AD GUIDs.
type GUIDTransformer struct{}

func (GUIDTransformer) Transform(value string) string {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return value
	}
	guid, err := FormatADGuidAsString(raw)
	if err != nil {
		return value
	}
	return guid
}
