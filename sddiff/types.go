package sddiff

// SDDiffResponse is the security descriptor diff returned by the diff service.
type SDDiffResponse struct {
	HasChanges          bool     `json:"has_changes"`
	OwnerChanged        *bool    `json:"owner_changed,omitempty"`
	OldOwner            *SIDInfo `json:"old_owner,omitempty"`
	NewOwner            *SIDInfo `json:"new_owner,omitempty"`
	GroupChanged        *bool    `json:"group_changed,omitempty"`
	OldGroup            *SIDInfo `json:"old_group,omitempty"`
	NewGroup            *SIDInfo `json:"new_group,omitempty"`
	ControlFlagsChanged *bool    `json:"control_flags_changed,omitempty"`
	OldControlFlags     *uint16  `json:"old_control_flags,omitempty"`
	NewControlFlags     *uint16  `json:"new_control_flags,omitempty"`
	DACLDiff            *ACLDiff `json:"dacl_diff,omitempty"`
}

// SIDInfo represents a security identifier with human-readable info.
type SIDInfo struct {
	Raw          string `json:"raw"`
	ResolvedName string `json:"resolved_name,omitempty"`
}

// Display returns the resolved name when known, otherwise the raw SID.
func (s SIDInfo) Display() string {
	if s.ResolvedName != "" {
		return s.ResolvedName
	}
	return s.Raw
}

// ACLDiff holds the full before/after ACE lists of a DACL, each entry
// annotated with its change status.
type ACLDiff struct {
	RevisionChanged bool       `json:"revision_changed,omitempty"`
	OldRevision     *uint8     `json:"old_revision,omitempty"`
	NewRevision     *uint8     `json:"new_revision,omitempty"`
	ACEDiffs        []ACEDiff  `json:"ace_diffs,omitempty"`
	OldACEs         []ACEState `json:"old_aces,omitempty"`
	NewACEs         []ACEState `json:"new_aces,omitempty"`
}

// Status is the change classification of an ACE within its list.
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusMoved     Status = "moved"
	StatusUnchanged Status = "unchanged"
)

func (s Status) Known() bool {
	switch s {
	case StatusAdded, StatusRemoved, StatusMoved, StatusUnchanged:
		return true
	}
	return false
}

// ACEState is one entry of old_aces or new_aces. Position is the entry's
// index in its own list.
type ACEState struct {
	Position  int    `json:"position"`
	Status    Status `json:"status"`
	ACE       *ACE   `json:"ace,omitempty"`
	MovedTo   *int   `json:"moved_to,omitempty"`
	MovedFrom *int   `json:"moved_from,omitempty"`
}

// ACEDiff is one line of the service's summary view.
type ACEDiff struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
	OldACE   *ACE   `json:"old_ace,omitempty"`
	NewACE   *ACE   `json:"new_ace,omitempty"`
}

// ACE represents ACE information for display.
type ACE struct {
	TypeName                string   `json:"type_name,omitempty"`
	TypeCode                uint8    `json:"type_code"`
	Flags                   []string `json:"flags,omitempty"`
	SID                     *SIDInfo `json:"sid,omitempty"`
	Mask                    uint32   `json:"mask"`
	MaskFlags               []string `json:"mask_flags,omitempty"`
	ObjectTypeGUID          string   `json:"object_type_guid,omitempty"`
	InheritedObjectTypeGUID string   `json:"inherited_object_type_guid,omitempty"`
}
