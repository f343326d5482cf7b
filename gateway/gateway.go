package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"f0oster/adspyview/diff"
	"f0oster/adspyview/sddiff"
)

// HistoryReader resolves object listings, timelines and per-version changes.
type HistoryReader interface {
	ListObjects(ctx context.Context, params ListParams) (*ObjectList, error)
	GetObject(ctx context.Context, id string) (*ADObject, error)
	GetObjectTimeline(ctx context.Context, id string) ([]TimelineEntry, error)
	GetVersionChanges(ctx context.Context, id string, usn int64) ([]diff.AttributeChange, error)
	GetObjectTypes(ctx context.Context) ([]string, error)
}

// SDDiffer asks the diff service to compare two base64-encoded security descriptors.
type SDDiffer interface {
	DiffSecurityDescriptors(ctx context.Context, oldValue, newValue string) (*sddiff.SDDiffResponse, error)
}

type Gateway interface {
	HistoryReader
	SDDiffer
}

// ListParams filters an object listing. Zero Limit means DefaultLimit.
type ListParams struct {
	Type   string
	Search string
	Limit  int `default:"50"`
	Offset int
}

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type ADObject struct {
	ID        string  `json:"id"`
	DN        string  `json:"dn"`
	Type      string  `json:"type"`
	GUID      string  `json:"guid,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
	DeletedAt *string `json:"deleted_at,omitempty"`
}

func (o ADObject) Deleted() bool {
	return o.DeletedAt != nil
}

type ObjectList struct {
	Objects []ADObject `json:"objects"`
	Total   int64      `json:"total"`
	Limit   int        `json:"limit,omitempty"`
	Offset  int        `json:"offset,omitempty"`
}

// TimelineEntry is one stored version of an object. Snapshot holds the full
// attribute map of that version when the backend includes it.
type TimelineEntry struct {
	USNChanged int64           `json:"usn_changed"`
	Timestamp  string          `json:"timestamp"`
	ModifiedBy string          `json:"modified_by,omitempty"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
}

// Time parses Timestamp as RFC 3339.
func (e TimelineEntry) Time() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp of USN %d: %w", e.USNChanged, err)
	}
	return t, nil
}

// Attributes decodes the snapshot into attribute values. A missing snapshot
// yields an empty map.
func (e TimelineEntry) Attributes() (map[string]diff.Value, error) {
	attrs := make(map[string]diff.Value)
	if len(e.Snapshot) == 0 || string(e.Snapshot) == "null" {
		return attrs, nil
	}
	if err := json.Unmarshal(e.Snapshot, &attrs); err != nil {
		return nil, fmt.Errorf("decode snapshot of USN %d: %w", e.USNChanged, err)
	}
	return attrs, nil
}

// FindVersion returns the timeline entry with the given USN.
func FindVersion(timeline []TimelineEntry, usn int64) (TimelineEntry, bool) {
	for _, e := range timeline {
		if e.USNChanged == usn {
			return e, true
		}
	}
	return TimelineEntry{}, false
}
