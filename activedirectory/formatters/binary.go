package formatters

import (
	"fmt"

	"github.com/bwmarrin/go-objectsid"
	"github.com/google/uuid"
)

const (
	sidHeaderLength  = 8
	sidMaxSubAuthors = 15
	guidLength       = 16
)

// ConvertSIDToString formats a binary object SID as S-1-5-21-... .
// The byte length must match the sub-authority count exactly.
func ConvertSIDToString(sidBytes []byte) (string, error) {
	if len(sidBytes) < sidHeaderLength {
		return "", fmt.Errorf("invalid SID: too short")
	}
	if sidBytes[0] != 1 {
		return "", fmt.Errorf("invalid SID: unsupported revision %d", sidBytes[0])
	}

	subAuthorityCount := int(sidBytes[1])
	if subAuthorityCount > sidMaxSubAuthors {
		return "", fmt.Errorf("invalid SID: %d sub-authorities", subAuthorityCount)
	}
	if expected := sidHeaderLength + subAuthorityCount*4; len(sidBytes) != expected {
		return "", fmt.Errorf("invalid SID: expected %d bytes, got %d", expected, len(sidBytes))
	}

	return objectsid.Decode(sidBytes).String(), nil
}

// FormatADGuidAsString converts a 16-byte Active Directory GUID (little-endian
// first three groups) to its canonical string form.
func FormatADGuidAsString(rawValue []byte) (string, error) {
	if len(rawValue) != guidLength {
		return "", fmt.Errorf("invalid GUID: expected %d bytes, got %d", guidLength, len(rawValue))
	}

	rfcBytes := make([]byte, guidLength)
	copy(rfcBytes, rawValue)
	rfcBytes[0], rfcBytes[1], rfcBytes[2], rfcBytes[3] = rfcBytes[3], rfcBytes[2], rfcBytes[1], rfcBytes[0]
	rfcBytes[4], rfcBytes[5] = rfcBytes[5], rfcBytes[4]
	rfcBytes[6], rfcBytes[7] = rfcBytes[7], rfcBytes[6]

	u, err := uuid.FromBytes(rfcBytes)
	if err != nil {
		return "", fmt.Errorf("invalid GUID: %w", err)
	}
	return u.String(), nil
}
