package database

import (
	"errors"
	"fmt"

	"f0oster/adspyview/gateway"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// Helper functions for UUID conversion

func uuidToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func formatUUID(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func formatTimestamp(ts pgtype.Timestamp) string {
	if !ts.Valid {
		return ""
	}
	return ts.Time.UTC().Format(timestampLayout)
}

func endpoint(query string) string {
	return "db:" + query
}

// parseObjectID validates an object ID before it reaches the database.
func parseObjectID(query, id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, &gateway.APIError{
			Kind:     gateway.KindRequestFailed,
			Endpoint: endpoint(query),
			Message:  "Invalid object ID",
			Err:      err,
		}
	}
	return uuidToPgtype(parsed), nil
}

// mapError turns a pgx failure into a gateway error for query.
func mapError(query string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return gateway.NotFoundError(endpoint(query), err)
	}
	return gateway.ServerError(endpoint(query), err)
}

// clampListParams applies the listing bounds of the web API: limit 1..100
// (default 50) and a non-negative offset.
func clampListParams(p gateway.ListParams) gateway.ListParams {
	if p.Limit <= 0 || p.Limit > gateway.MaxLimit {
		p.Limit = gateway.DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func toADObject(rec ObjectRecord) gateway.ADObject {
	id := formatUUID(rec.ObjectID)
	obj := gateway.ADObject{
		ID:        id,
		GUID:      id,
		Type:      rec.ObjectType,
		DN:        rec.DistinguishedName,
		UpdatedAt: formatTimestamp(rec.UpdatedAt),
	}
	if rec.DeletedAt.Valid {
		ts := formatTimestamp(rec.DeletedAt)
		obj.DeletedAt = &ts
	}
	return obj
}

func malformedValue(query, attr string, err error) error {
	return gateway.MalformedError(endpoint(query), 0, fmt.Errorf("attribute %s: %w", attr, err))
}
