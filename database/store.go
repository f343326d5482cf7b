package database

import (
	"context"
	"encoding/json"

	"f0oster/adspyview/diff"
	"f0oster/adspyview/gateway"

	"github.com/apex/log"
	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool the Store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads object history straight from the adSpy database. It serves
// the same data as the web API but cannot diff security descriptors.
type Store struct {
	q Querier
}

var _ gateway.HistoryReader = (*Store)(nil)

func NewStore(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) ListObjects(ctx context.Context, params gateway.ListParams) (*gateway.ObjectList, error) {
	params = clampListParams(params)
	log.WithFields(log.Fields{
		"type":   params.Type,
		"search": params.Search,
		"limit":  params.Limit,
		"offset": params.Offset,
	}).Debug("listing objects")

	rows, err := s.q.Query(ctx, ListObjects, params.Type, params.Search, int32(params.Limit), int32(params.Offset))
	if err != nil {
		return nil, mapError("objects", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ObjectRecord, error) {
		var rec ObjectRecord
		err := row.Scan(&rec.ObjectID, &rec.ObjectType, &rec.DistinguishedName, &rec.UpdatedAt, &rec.DeletedAt)
		return rec, err
	})
	if err != nil {
		return nil, mapError("objects", err)
	}

	var total int64
	if err := s.q.QueryRow(ctx, CountObjects, params.Type, params.Search).Scan(&total); err != nil {
		return nil, mapError("objects", err)
	}

	objects := make([]gateway.ADObject, 0, len(records))
	for _, rec := range records {
		objects = append(objects, toADObject(rec))
	}

	return &gateway.ObjectList{
		Objects: objects,
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
	}, nil
}

func (s *Store) GetObject(ctx context.Context, id string) (*gateway.ADObject, error) {
	objectID, err := parseObjectID("object", id)
	if err != nil {
		return nil, err
	}

	var rec ObjectRecord
	err = s.q.QueryRow(ctx, GetObjectByID, objectID).
		Scan(&rec.ObjectID, &rec.ObjectType, &rec.DistinguishedName, &rec.UpdatedAt, &rec.DeletedAt)
	if err != nil {
		return nil, mapError("object", err)
	}

	obj := toADObject(rec)
	return &obj, nil
}

func (s *Store) GetObjectTimeline(ctx context.Context, id string) ([]gateway.TimelineEntry, error) {
	objectID, err := parseObjectID("timeline", id)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.Query(ctx, GetObjectTimeline, objectID)
	if err != nil {
		return nil, mapError("timeline", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (VersionRecord, error) {
		var rec VersionRecord
		err := row.Scan(&rec.USNChanged, &rec.Timestamp, &rec.AttributesSnapshot, &rec.ModifiedBy)
		return rec, err
	})
	if err != nil {
		return nil, mapError("timeline", err)
	}

	timeline := make([]gateway.TimelineEntry, 0, len(records))
	for _, rec := range records {
		entry := gateway.TimelineEntry{
			USNChanged: rec.USNChanged,
			Timestamp:  formatTimestamp(rec.Timestamp),
			Snapshot:   json.RawMessage(rec.AttributesSnapshot),
		}
		if rec.ModifiedBy.Valid {
			entry.ModifiedBy = rec.ModifiedBy.String
		}
		timeline = append(timeline, entry)
	}
	return timeline, nil
}

func (s *Store) GetVersionChanges(ctx context.Context, id string, usn int64) ([]diff.AttributeChange, error) {
	objectID, err := parseObjectID("changes", id)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.Query(ctx, GetVersionChanges, objectID, usn)
	if err != nil {
		return nil, mapError("changes", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ChangeRecord, error) {
		var rec ChangeRecord
		err := row.Scan(&rec.AttributeSchemaID, &rec.LDAPDisplayName, &rec.OldValue, &rec.NewValue, &rec.Timestamp, &rec.IsSingleValued)
		return rec, err
	})
	if err != nil {
		return nil, mapError("changes", err)
	}

	changes := make([]diff.AttributeChange, 0, len(records))
	for _, rec := range records {
		change, err := toAttributeChange(rec)
		if err != nil {
			return nil, malformedValue("changes", rec.LDAPDisplayName, err)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func (s *Store) GetObjectTypes(ctx context.Context) ([]string, error) {
	rows, err := s.q.Query(ctx, GetObjectTypes)
	if err != nil {
		return nil, mapError("object-types", err)
	}
	types, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError("object-types", err)
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

func toAttributeChange(rec ChangeRecord) (diff.AttributeChange, error) {
	oldValue, err := diff.ParseValue(rec.OldValue)
	if err != nil {
		return diff.AttributeChange{}, err
	}
	newValue, err := diff.ParseValue(rec.NewValue)
	if err != nil {
		return diff.AttributeChange{}, err
	}

	singleValued := rec.IsSingleValued
	return diff.AttributeChange{
		SchemaID:       formatUUID(rec.AttributeSchemaID),
		Attribute:      rec.LDAPDisplayName,
		OldValue:       oldValue,
		NewValue:       newValue,
		Timestamp:      formatTimestamp(rec.Timestamp),
		IsSingleValued: &singleValued,
	}, nil
}
