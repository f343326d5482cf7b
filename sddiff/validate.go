package sddiff

import (
	"fmt"
	"strings"
)

const (
	listOld = "old_aces"
	listNew = "new_aces"
)

// Rules reported by Validate.
const (
	RuleResponse    = "response"
	RuleHasChanges  = "has-changes"
	RuleStatus      = "status"
	RuleACEPresent  = "ace-present"
	RulePlacement   = "placement"
	RuleMoveRefs    = "move-refs"
	RuleMovePairing = "move-pairing"
	RuleUnchanged   = "unchanged"
	RulePositions   = "positions"
)

const (
	noPosition       = -1
	omittedMoveIndex = 0
)

// Violation describes one way a diff payload is inconsistent. List and
// Position are empty/-1 for response-level violations.
type Violation struct {
	Rule     string
	List     string
	Position int
	Detail   string
}

func (v Violation) String() string {
	if v.List == "" {
		return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
	}
	if v.Position == noPosition {
		return fmt.Sprintf("%s: %s: %s", v.List, v.Rule, v.Detail)
	}
	return fmt.Sprintf("%s[%d]: %s: %s", v.List, v.Position, v.Rule, v.Detail)
}

// ValidationError is returned by Interpret for an inconsistent payload.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("inconsistent security descriptor diff (%d violations): %s",
		len(e.Violations), strings.Join(parts, "; "))
}

// Validate checks resp against the structural rules of a security descriptor
// diff and returns every violation found. A nil result means resp is consistent.
//
// The diff service omits moved_to/moved_from when the value is 0, so an
// absent reference on a moved entry is read as position 0.
func Validate(resp *SDDiffResponse) []Violation {
	var v validator
	if resp == nil {
		v.add(RuleResponse, "", noPosition, "missing diff response")
		return v.violations
	}

	v.checkHasChanges(resp)

	if dacl := resp.DACLDiff; dacl != nil {
		oldIdx := v.checkPositions(listOld, dacl.OldACEs)
		newIdx := v.checkPositions(listNew, dacl.NewACEs)
		v.checkStates(listOld, dacl.OldACEs, dacl.NewACEs, newIdx)
		v.checkStates(listNew, dacl.NewACEs, dacl.OldACEs, oldIdx)
	}

	return v.violations
}

type validator struct {
	violations []Violation
}

func (v *validator) add(rule, list string, pos int, format string, args ...any) {
	v.violations = append(v.violations, Violation{
		Rule:     rule,
		List:     list,
		Position: pos,
		Detail:   fmt.Sprintf(format, args...),
	})
}

func (v *validator) checkHasChanges(resp *SDDiffResponse) {
	want := isSet(resp.OwnerChanged) || isSet(resp.GroupChanged) || isSet(resp.ControlFlagsChanged)
	if dacl := resp.DACLDiff; dacl != nil && !want {
		want = dacl.RevisionChanged || hasEntryChanges(dacl.OldACEs) || hasEntryChanges(dacl.NewACEs)
	}
	if want != resp.HasChanges {
		v.add(RuleHasChanges, "", noPosition, "has_changes is %t but the reported changes imply %t", resp.HasChanges, want)
	}
}

func hasEntryChanges(states []ACEState) bool {
	for _, st := range states {
		if st.Status != StatusUnchanged {
			return true
		}
	}
	return false
}

// checkPositions verifies positions form exactly 0..len-1 and returns the
// position -> index lookup for the list.
func (v *validator) checkPositions(list string, states []ACEState) map[int]int {
	idx := make(map[int]int, len(states))
	for i, st := range states {
		switch {
		case st.Position < 0 || st.Position >= len(states):
			v.add(RulePositions, list, st.Position, "position out of range 0..%d", len(states)-1)
		case hasKey(idx, st.Position):
			v.add(RulePositions, list, st.Position, "duplicate position")
		default:
			idx[st.Position] = i
		}
	}
	return idx
}

func (v *validator) checkStates(list string, states, others []ACEState, otherIdx map[int]int) {
	claimed := make(map[int]int)

	for _, st := range states {
		if st.ACE == nil {
			v.add(RuleACEPresent, list, st.Position, "%s entry has no ace", st.Status)
		}

		switch st.Status {
		case StatusAdded:
			if list != listNew {
				v.add(RulePlacement, list, st.Position, "added entry outside %s", listNew)
			}
			v.checkNoMoveRefs(list, st)
		case StatusRemoved:
			if list != listOld {
				v.add(RulePlacement, list, st.Position, "removed entry outside %s", listOld)
			}
			v.checkNoMoveRefs(list, st)
		case StatusMoved:
			v.checkMoved(list, st, others, otherIdx, claimed)
		case StatusUnchanged:
			v.checkNoMoveRefs(list, st)
			v.checkUnchanged(list, st, others, otherIdx)
		default:
			v.add(RuleStatus, list, st.Position, "unknown status %q", st.Status)
		}
	}
}

func (v *validator) checkNoMoveRefs(list string, st ACEState) {
	if st.MovedTo != nil || st.MovedFrom != nil {
		v.add(RuleMoveRefs, list, st.Position, "%s entry carries moved_to/moved_from", st.Status)
	}
}

func (v *validator) checkMoved(list string, st ACEState, others []ACEState, otherIdx map[int]int, claimed map[int]int) {
	ref, stray, otherList := st.MovedTo, st.MovedFrom, listNew
	if list == listNew {
		ref, stray, otherList = st.MovedFrom, st.MovedTo, listOld
	}
	if stray != nil {
		v.add(RuleMoveRefs, list, st.Position, "moved entry in %s carries a reference in the wrong direction", list)
	}

	target := moveRef(ref)
	if target == st.Position {
		v.add(RuleMovePairing, list, st.Position, "moved entry keeps its position %d", target)
	}
	if prev, ok := claimed[target]; ok {
		v.add(RuleMovePairing, list, st.Position, "%s[%d] is already paired with position %d", otherList, target, prev)
		return
	}
	claimed[target] = st.Position

	j, ok := otherIdx[target]
	if !ok {
		v.add(RuleMovePairing, list, st.Position, "no entry at %s[%d]", otherList, target)
		return
	}
	counterpart := others[j]
	if counterpart.Status != StatusMoved {
		v.add(RuleMovePairing, list, st.Position, "%s[%d] is %s, not moved", otherList, target, counterpart.Status)
		return
	}

	back := counterpart.MovedFrom
	if list == listNew {
		back = counterpart.MovedTo
	}
	if moveRef(back) != st.Position {
		v.add(RuleMovePairing, list, st.Position, "%s[%d] points back to %d", otherList, target, moveRef(back))
		return
	}
	if list == listOld && !sameACE(st.ACE, counterpart.ACE) {
		v.add(RuleMovePairing, list, st.Position, "paired with %s[%d] which holds a different ace", otherList, target)
	}
}

// checkUnchanged requires an unchanged entry to face an unchanged, identical
// entry at the same position of the other list.
func (v *validator) checkUnchanged(list string, st ACEState, others []ACEState, otherIdx map[int]int) {
	otherList := listNew
	if list == listNew {
		otherList = listOld
	}

	j, ok := otherIdx[st.Position]
	if !ok {
		v.add(RuleUnchanged, list, st.Position, "no entry at %s[%d]", otherList, st.Position)
		return
	}
	counterpart := others[j]
	if counterpart.Status != StatusUnchanged {
		v.add(RuleUnchanged, list, st.Position, "%s[%d] is %s, not unchanged", otherList, st.Position, counterpart.Status)
		return
	}
	// both sides are unchanged here, so report a mismatch from the old side only
	if list == listOld && !sameACE(st.ACE, counterpart.ACE) {
		v.add(RuleUnchanged, list, st.Position, "unchanged entries at this position hold different aces")
	}
}

func moveRef(p *int) int {
	if p == nil {
		return omittedMoveIndex
	}
	return *p
}

func hasKey(m map[int]int, k int) bool {
	_, ok := m[k]
	return ok
}
