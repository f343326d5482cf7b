package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// ObjectRecord represents a row in the Objects table.
type ObjectRecord struct {
	ObjectID          pgtype.UUID
	ObjectType        string
	DistinguishedName string
	UpdatedAt         pgtype.Timestamp
	DeletedAt         pgtype.Timestamp // NULL while the object exists
}

// VersionRecord represents a row in the ObjectVersions table.
// It stores a point-in-time snapshot of an object's attributes.
type VersionRecord struct {
	USNChanged         int64
	Timestamp          pgtype.Timestamp
	AttributesSnapshot []byte // JSON blob of attributes
	ModifiedBy         pgtype.Text
}

// ChangeRecord represents a row in the AttributeChanges table joined with
// the changed attribute's schema.
type ChangeRecord struct {
	AttributeSchemaID pgtype.UUID
	LDAPDisplayName   string
	OldValue          []byte // JSON
	NewValue          []byte // JSON
	Timestamp         pgtype.Timestamp
	IsSingleValued    bool
}
