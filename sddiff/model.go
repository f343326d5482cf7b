package sddiff

import (
	"fmt"
	"slices"
)

// Entry is one ACE of an interpreted ACL, tagged by its change status.
// The variants are Added, Removed, Moved and Unchanged.
type Entry interface {
	Position() int
	Status() Status
	Ace() ACE
	entry()
}

// Added is an ACE present only in the new list.
type Added struct {
	Pos int
	ACE ACE
}

// Removed is an ACE present only in the old list.
type Removed struct {
	Pos int
	ACE ACE
}

// Moved is an ACE present in both lists at different positions. From is its
// position in the old list and To its position in the new list; Pos is one
// of the two depending on which list holds the entry.
type Moved struct {
	Pos      int
	ACE      ACE
	From, To int
}

// Unchanged is an ACE at the same position in both lists.
type Unchanged struct {
	Pos int
	ACE ACE
}

func (e Added) Position() int     { return e.Pos }
func (e Removed) Position() int   { return e.Pos }
func (e Moved) Position() int     { return e.Pos }
func (e Unchanged) Position() int { return e.Pos }

func (Added) Status() Status     { return StatusAdded }
func (Removed) Status() Status   { return StatusRemoved }
func (Moved) Status() Status     { return StatusMoved }
func (Unchanged) Status() Status { return StatusUnchanged }

func (e Added) Ace() ACE     { return e.ACE }
func (e Removed) Ace() ACE   { return e.ACE }
func (e Moved) Ace() ACE     { return e.ACE }
func (e Unchanged) Ace() ACE { return e.ACE }

func (Added) entry()     {}
func (Removed) entry()   {}
func (Moved) entry()     {}
func (Unchanged) entry() {}

// Change is an old/new pair of an optional value.
type Change[T any] struct {
	Old *T
	New *T
}

// ACL is an interpreted DACL diff. Entries are ordered by position.
type ACL struct {
	Old []Entry
	New []Entry
}

// Diff is a validated security descriptor diff. A nil field means that part
// of the descriptor did not change.
type Diff struct {
	HasChanges   bool
	Owner        *Change[SIDInfo]
	Group        *Change[SIDInfo]
	ControlFlags *Change[uint16]
	Revision     *Change[uint8]
	DACL         *ACL
	Summary      []ACEDiff
}

// ChangeCounts tallies entries per status.
type ChangeCounts struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Moved     int `json:"moved"`
	Unchanged int `json:"unchanged"`
}

func (c ChangeCounts) Total() int {
	return c.Added + c.Removed + c.Moved + c.Unchanged
}

func Counts(entries []Entry) ChangeCounts {
	var c ChangeCounts
	for _, e := range entries {
		switch e.(type) {
		case Added:
			c.Added++
		case Removed:
			c.Removed++
		case Moved:
			c.Moved++
		case Unchanged:
			c.Unchanged++
		}
	}
	return c
}

// ACEKey is the identity the diff service uses to match ACEs across lists.
func ACEKey(ace ACE) string {
	sid := ""
	if ace.SID != nil {
		sid = ace.SID.Raw
	}
	return fmt.Sprintf("%d:%s:%d:%s:%s",
		ace.TypeCode,
		sid,
		ace.Mask,
		ace.ObjectTypeGUID,
		ace.InheritedObjectTypeGUID,
	)
}

// sameACE compares the ACE identity plus its flags.
func sameACE(a, b *ACE) bool {
	if a == nil || b == nil {
		return a == b
	}
	return ACEKey(*a) == ACEKey(*b) && slices.Equal(a.Flags, b.Flags)
}

// Interpret validates resp and converts it into the tagged model. An
// inconsistent payload yields a *ValidationError listing every violation.
func Interpret(resp *SDDiffResponse) (*Diff, error) {
	if violations := Validate(resp); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	d := &Diff{HasChanges: resp.HasChanges}
	if isSet(resp.OwnerChanged) {
		d.Owner = &Change[SIDInfo]{Old: resp.OldOwner, New: resp.NewOwner}
	}
	if isSet(resp.GroupChanged) {
		d.Group = &Change[SIDInfo]{Old: resp.OldGroup, New: resp.NewGroup}
	}
	if isSet(resp.ControlFlagsChanged) {
		d.ControlFlags = &Change[uint16]{Old: resp.OldControlFlags, New: resp.NewControlFlags}
	}

	if dacl := resp.DACLDiff; dacl != nil {
		if dacl.RevisionChanged {
			d.Revision = &Change[uint8]{Old: dacl.OldRevision, New: dacl.NewRevision}
		}
		d.DACL = &ACL{
			Old: entries(listOld, dacl.OldACEs),
			New: entries(listNew, dacl.NewACEs),
		}
		d.Summary = slices.Clone(dacl.ACEDiffs)
	}

	return d, nil
}

func entries(side string, states []ACEState) []Entry {
	out := make([]Entry, len(states))
	for _, st := range states {
		out[st.Position] = toEntry(side, st)
	}
	return out
}

func toEntry(side string, st ACEState) Entry {
	ace := *st.ACE
	switch st.Status {
	case StatusAdded:
		return Added{Pos: st.Position, ACE: ace}
	case StatusRemoved:
		return Removed{Pos: st.Position, ACE: ace}
	case StatusMoved:
		if side == listOld {
			return Moved{Pos: st.Position, ACE: ace, From: st.Position, To: moveRef(st.MovedTo)}
		}
		return Moved{Pos: st.Position, ACE: ace, From: moveRef(st.MovedFrom), To: st.Position}
	}
	return Unchanged{Pos: st.Position, ACE: ace}
}

func isSet(b *bool) bool {
	return b != nil && *b
}
