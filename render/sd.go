package render

import (
	"errors"
	"fmt"
	"strings"

	"f0oster/adspyview/sddiff"

	"github.com/apex/log"
)

// SDDiff writes a security descriptor diff. A payload that fails validation
// is reported as an inconsistent diff instead of being rendered.
func (r *Renderer) SDDiff(resp *sddiff.SDDiffResponse) {
	d, err := sddiff.Interpret(resp)
	if err != nil {
		var verr *sddiff.ValidationError
		if !errors.As(err, &verr) {
			r.println(r.palette.removed("  inconsistent diff: " + err.Error()))
			return
		}
		log.WithField("violations", len(verr.Violations)).Warn("inconsistent security descriptor diff")
		r.println(r.palette.removed(fmt.Sprintf("  inconsistent diff (%d violations):", len(verr.Violations))))
		for _, v := range verr.Violations {
			log.Debug(v.String())
			r.println("    " + v.String())
		}
		return
	}

	if !d.HasChanges {
		r.println("  No security descriptor changes.")
		return
	}

	if d.Owner != nil {
		r.printf("  Owner: %s%s%s\n", sidText(d.Owner.Old), arrow, sidText(d.Owner.New))
	}
	if d.Group != nil {
		r.printf("  Group: %s%s%s\n", sidText(d.Group.Old), arrow, sidText(d.Group.New))
	}
	if d.ControlFlags != nil {
		r.printf("  Control flags: %s%s%s\n", flagsText(d.ControlFlags.Old), arrow, flagsText(d.ControlFlags.New))
	}
	if d.Revision != nil {
		r.printf("  DACL revision: %s%s%s\n", revisionText(d.Revision.Old), arrow, revisionText(d.Revision.New))
	}
	if d.DACL == nil {
		return
	}

	counts := sddiff.Counts(d.DACL.Old)
	added := sddiff.Counts(d.DACL.New).Added
	r.printf("  DACL: %s\n", r.palette.muted(fmt.Sprintf("+%d -%d ~%d =%d", added, counts.Removed, counts.Moved, counts.Unchanged)))
	r.aceList("Old ACL", d.DACL.Old)
	r.aceList("New ACL", d.DACL.New)
}

func (r *Renderer) aceList(title string, entries []sddiff.Entry) {
	if len(entries) == 0 {
		return
	}
	r.printf("  %s:\n", r.palette.header(title))
	for _, e := range entries {
		line := fmt.Sprintf("[%d] %s %s", e.Position(), marker(e), aceText(e.Ace()))
		switch m := e.(type) {
		case sddiff.Added:
			line = r.palette.added(line)
		case sddiff.Removed:
			line = r.palette.removed(line)
		case sddiff.Moved:
			line = r.palette.moved(fmt.Sprintf("%s (moved %d%s%d)", line, m.From, arrow, m.To))
		}
		r.println("    " + line)
	}
}

func marker(e sddiff.Entry) string {
	switch e.(type) {
	case sddiff.Added:
		return "+"
	case sddiff.Removed:
		return "-"
	case sddiff.Moved:
		return "~"
	}
	return " "
}

func aceText(ace sddiff.ACE) string {
	var b strings.Builder
	b.WriteString(ace.TypeName)
	if b.Len() == 0 {
		fmt.Fprintf(&b, "type %d", ace.TypeCode)
	}
	b.WriteString(" ")
	if ace.SID != nil {
		b.WriteString(ace.SID.Display())
	} else {
		b.WriteString("(no sid)")
	}
	fmt.Fprintf(&b, " mask 0x%08x", ace.Mask)
	if len(ace.MaskFlags) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(ace.MaskFlags, "|"))
	}
	if ace.ObjectTypeGUID != "" {
		fmt.Fprintf(&b, " object %s", ace.ObjectTypeGUID)
	}
	if ace.InheritedObjectTypeGUID != "" {
		fmt.Fprintf(&b, " inherited %s", ace.InheritedObjectTypeGUID)
	}
	if len(ace.Flags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(ace.Flags, ","))
	}
	return b.String()
}

func sidText(s *sddiff.SIDInfo) string {
	if s == nil {
		return "(none)"
	}
	return s.Display()
}

func flagsText(f *uint16) string {
	if f == nil {
		return "(none)"
	}
	return fmt.Sprintf("0x%04x", *f)
}

func revisionText(v *uint8) string {
	if v == nil {
		return "(none)"
	}
	return fmt.Sprintf("%d", *v)
}

// SDDiffFailed reports that the SD diff for an attribute could not be fetched.
func (r *Renderer) SDDiffFailed(err error) {
	r.println(r.palette.removed("  security descriptor diff unavailable: " + err.Error()))
}
