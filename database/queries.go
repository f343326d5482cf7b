package database

// SQL query constants for the read side of the adSpy schema.

const (
	ListObjects = `
		SELECT object_id, object_type, distinguishedname, updated_at, deleted_at
		FROM objects
		WHERE ($1::text = '' OR object_type = $1::text)
		  AND ($2::text = '' OR distinguishedname ILIKE '%' || $2::text || '%')
		ORDER BY updated_at DESC
		LIMIT $3 OFFSET $4`

	CountObjects = `
		SELECT COUNT(*)
		FROM objects
		WHERE ($1::text = '' OR object_type = $1::text)
		  AND ($2::text = '' OR distinguishedname ILIKE '%' || $2::text || '%')`

	GetObjectByID = `
		SELECT object_id, object_type, distinguishedname, updated_at, deleted_at
		FROM objects
		WHERE object_id = $1`

	GetObjectTimeline = `
		SELECT usn_changed, timestamp, attributes_snapshot, modified_by
		FROM objectversions
		WHERE object_id = $1
		ORDER BY usn_changed DESC`

	GetVersionChanges = `
		SELECT ac.attribute_schema_id, s.ldap_display_name, ac.old_value, ac.new_value,
		       ac.timestamp, s.is_single_valued
		FROM attributechanges ac
		JOIN attributeschemas s ON s.object_guid = ac.attribute_schema_id
		WHERE ac.object_id = $1 AND ac.usn_changed = $2
		ORDER BY s.ldap_display_name`

	GetObjectTypes = `
		SELECT DISTINCT object_type
		FROM objects
		ORDER BY object_type`
)
