package render_test

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"f0oster/adspyview/diff"
	"f0oster/adspyview/gateway"
	"f0oster/adspyview/render"
	"f0oster/adspyview/sddiff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRenderer() (*render.Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := render.New(&buf, render.Options{Now: func() time.Time { return fixedNow }})
	return r, &buf
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestObjects(t *testing.T) {
	r, buf := newRenderer()
	deleted := "2024-02-29T12:00:00Z"
	r.Objects(&gateway.ObjectList{
		Objects: []gateway.ADObject{
			{ID: "a1", DN: "CN=John Doe,OU=Users,DC=example,DC=com", Type: "CN=Person,CN=Schema,CN=Configuration,DC=example,DC=com", UpdatedAt: "2024-03-01T09:00:00Z"},
			{ID: "g1", DN: "CN=Admins,OU=Groups,DC=example,DC=com", Type: "Group", DeletedAt: &deleted},
		},
		Total:  42,
		Offset: 10,
	})

	out := buf.String()
	for _, want := range []string{
		"NAME", "TYPE", "CONTAINER", "UPDATED",
		"John Doe", "Person", "OU=Users,DC=example,DC=com", "3 hours ago", "a1",
		"Admins (deleted)", "Group",
		"Showing 11-12 of 42 objects",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "CN=Schema")
}

func TestObjects_Empty(t *testing.T) {
	r, buf := newRenderer()
	r.Objects(&gateway.ObjectList{})
	assert.Equal(t, "No objects found.\n", buf.String())
}

func TestObject(t *testing.T) {
	r, buf := newRenderer()
	r.Object(&gateway.ADObject{ID: "a1", DN: "CN=John Doe,OU=Users,DC=example,DC=com", Type: "Person", UpdatedAt: "2024-02-29T12:00:00Z"})

	out := buf.String()
	assert.Contains(t, out, "John Doe\n")
	assert.Contains(t, out, "Container:  OU=Users,DC=example,DC=com\n")
	assert.Contains(t, out, "Updated:    2024-02-29T12:00:00Z (1 day ago)\n")
	assert.NotContains(t, out, "Deleted:")
}

func TestTypes(t *testing.T) {
	r, buf := newRenderer()
	r.Types([]string{"CN=Group,CN=Schema,CN=Configuration,DC=x", "Person"})
	assert.Equal(t, "Group\nPerson\n", buf.String())
}

func TestTimeline(t *testing.T) {
	r, buf := newRenderer()
	r.Timeline([]gateway.TimelineEntry{
		{USNChanged: 12, Timestamp: "2024-03-01T09:00:00Z", ModifiedBy: "CN=admin"},
		{USNChanged: 7, Timestamp: "garbage"},
	})

	out := buf.String()
	assert.Contains(t, out, "USN")
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "CN=admin")
	assert.Contains(t, out, "garbage")

	r, buf = newRenderer()
	r.Timeline(nil)
	assert.Equal(t, "No versions recorded.\n", buf.String())
}

func TestChange(t *testing.T) {
	tests := []struct {
		name   string
		change diff.AttributeChange
		want   string
	}{
		{
			name: "list diff with DN shortening",
			change: diff.AttributeChange{
				Attribute: "memberOf",
				OldValue:  diff.Strings("CN=A,OU=G,DC=x", "CN=B,OU=G,DC=x"),
				NewValue:  diff.Strings("CN=B,OU=G,DC=x", "CN=C,OU=G,DC=x"),
			},
			want: "memberOf: +1 -1 =1\n  + C\n  - A\n    B\n",
		},
		{
			name: "schema says multi-valued",
			change: diff.AttributeChange{
				Attribute:      "otherTelephone",
				OldValue:       diff.Absent(),
				NewValue:       diff.String("555"),
				IsSingleValued: boolPtr(false),
			},
			want: "otherTelephone: +1 -0 =0\n  + 555\n",
		},
		{
			name: "scalar replacement",
			change: diff.AttributeChange{
				Attribute:      "description",
				OldValue:       diff.String("old"),
				NewValue:       diff.String("new"),
				IsSingleValued: boolPtr(true),
			},
			want: "description: old → new\n",
		},
		{
			name: "scalar DN",
			change: diff.AttributeChange{
				Attribute: "manager",
				OldValue:  diff.String("CN=Alice,OU=Users,DC=x"),
				NewValue:  diff.String("CN=Bob,OU=Users,DC=x"),
			},
			want: "manager: Alice → Bob\n",
		},
		{
			name: "value appears",
			change: diff.AttributeChange{
				Attribute: "userAccountControl",
				OldValue:  diff.Absent(),
				NewValue:  diff.Number("512"),
			},
			want: "userAccountControl: (none) → 512\n",
		},
		{
			name: "security descriptor hint",
			change: diff.AttributeChange{
				Attribute: "nTSecurityDescriptor",
				OldValue:  diff.String("AQID"),
				NewValue:  diff.String("AQIE"),
			},
			want: "nTSecurityDescriptor: security descriptor changed (use --sd to show the ACL diff)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf := newRenderer()
			r.Change(tt.change, false)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestChange_SDPending(t *testing.T) {
	r, buf := newRenderer()
	r.Change(diff.AttributeChange{Attribute: "nTSecurityDescriptor", OldValue: diff.String("AQID"), NewValue: diff.String("AQIE")}, true)
	assert.Equal(t, "nTSecurityDescriptor:\n", buf.String())
}

func TestChange_Structured(t *testing.T) {
	r, buf := newRenderer()
	r.Change(diff.AttributeChange{
		Attribute:      "msDS-Settings",
		OldValue:       diff.Structured(json.RawMessage(`{"a":"same","b":"before"}`)),
		NewValue:       diff.Structured(json.RawMessage(`{"a":"same","b":"after"}`)),
		IsSingleValued: boolPtr(true),
	}, false)

	out := buf.String()
	assert.Contains(t, out, "msDS-Settings:\n")
	assert.Contains(t, out, `"before"`)
	assert.Contains(t, out, `"after"`)
	assert.NotContains(t, out, "→")
}

func TestChanges_Empty(t *testing.T) {
	r, buf := newRenderer()
	r.Changes(nil)
	assert.Equal(t, "No attribute changes.\n", buf.String())
}

func ace(sid string) *sddiff.ACE {
	return &sddiff.ACE{TypeName: "ACCESS_ALLOWED_ACE", SID: &sddiff.SIDInfo{Raw: sid}, Mask: 0x20094}
}

func TestSDDiff(t *testing.T) {
	r, buf := newRenderer()
	r.SDDiff(&sddiff.SDDiffResponse{
		HasChanges: true,
		DACLDiff: &sddiff.ACLDiff{
			OldACEs: []sddiff.ACEState{
				{Position: 0, Status: sddiff.StatusUnchanged, ACE: ace("S-1-5-18")},
				{Position: 1, Status: sddiff.StatusRemoved, ACE: ace("S-1-5-21-1-2-3-1100")},
				{Position: 2, Status: sddiff.StatusMoved, ACE: ace("S-1-5-21-1-2-3-1103"), MovedTo: intPtr(3)},
			},
			NewACEs: []sddiff.ACEState{
				{Position: 0, Status: sddiff.StatusUnchanged, ACE: ace("S-1-5-18")},
				{Position: 1, Status: sddiff.StatusAdded, ACE: ace("S-1-5-21-1-2-3-1104")},
				{Position: 2, Status: sddiff.StatusAdded, ACE: ace("S-1-5-21-1-2-3-1105")},
				{Position: 3, Status: sddiff.StatusMoved, ACE: ace("S-1-5-21-1-2-3-1103"), MovedFrom: intPtr(2)},
			},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "DACL: +2 -1 ~1 =1\n")
	assert.Contains(t, out, "[1] - ACCESS_ALLOWED_ACE S-1-5-21-1-2-3-1100 mask 0x00020094\n")
	assert.Contains(t, out, "[2] + ACCESS_ALLOWED_ACE S-1-5-21-1-2-3-1105")
	assert.Contains(t, out, "[0]   ACCESS_ALLOWED_ACE S-1-5-18")
	assert.Contains(t, out, "[2] ~ ACCESS_ALLOWED_ACE S-1-5-21-1-2-3-1103 mask 0x00020094 (moved 2 → 3)\n")
	assert.Contains(t, out, "[3] ~ ACCESS_ALLOWED_ACE S-1-5-21-1-2-3-1103 mask 0x00020094 (moved 2 → 3)\n")
}

func TestSDDiff_Owner(t *testing.T) {
	r, buf := newRenderer()
	flagsOld, flagsNew := uint16(0x8404), uint16(0x8c04)
	r.SDDiff(&sddiff.SDDiffResponse{
		HasChanges:          true,
		OwnerChanged:        boolPtr(true),
		OldOwner:            &sddiff.SIDInfo{Raw: "S-1-5-32-544", ResolvedName: `BUILTIN\Administrators`},
		NewOwner:            &sddiff.SIDInfo{Raw: "S-1-5-18"},
		ControlFlagsChanged: boolPtr(true),
		OldControlFlags:     &flagsOld,
		NewControlFlags:     &flagsNew,
	})

	assert.Equal(t,
		"  Owner: BUILTIN\\Administrators → S-1-5-18\n  Control flags: 0x8404 → 0x8c04\n",
		buf.String())
}

func TestSDDiff_NoChanges(t *testing.T) {
	r, buf := newRenderer()
	r.SDDiff(&sddiff.SDDiffResponse{})
	assert.Equal(t, "  No security descriptor changes.\n", buf.String())
}

func TestSDDiff_Inconsistent(t *testing.T) {
	r, buf := newRenderer()
	r.SDDiff(&sddiff.SDDiffResponse{HasChanges: true})

	out := buf.String()
	assert.Contains(t, out, "inconsistent diff (1 violations):\n")
	assert.Contains(t, out, "    "+sddiff.RuleHasChanges+": ")
	assert.NotContains(t, out, "DACL")
}

func TestCache(t *testing.T) {
	var c render.Cache
	calls := 0
	format := func() string {
		calls++
		return "formatted"
	}

	assert.Equal(t, "formatted", c.Format(diff.String("x"), render.ModePlain, format))
	assert.Equal(t, "formatted", c.Format(diff.String("x"), render.ModePlain, format))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	c.Format(diff.String("x"), render.AttributeMode("memberof"), format)
	c.Format(diff.Strings("x"), render.ModePlain, format)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	var c render.Cache
	v := diff.Number("42")

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Format(v, render.ModePlain, func() string { return v.Literal() })
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, "42", got)
	}
	assert.Equal(t, 1, c.Len())
}

func TestRenderer_SharedCache(t *testing.T) {
	cache := &render.Cache{}
	var buf bytes.Buffer
	r := render.New(&buf, render.Options{Cache: cache})

	change := diff.AttributeChange{
		Attribute:      "manager",
		OldValue:       diff.String("CN=Alice,DC=x"),
		NewValue:       diff.String("CN=Alice,DC=x"),
		IsSingleValued: boolPtr(true),
	}
	r.Change(change, false)
	r.Change(change, false)

	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, "manager: Alice → Alice\nmanager: Alice → Alice\n", buf.String())
}
