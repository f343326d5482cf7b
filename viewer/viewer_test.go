package viewer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"f0oster/adspyview/config"
	"f0oster/adspyview/diff"
	"f0oster/adspyview/gateway"
	"f0oster/adspyview/sddiff"
	"f0oster/adspyview/viewer"
	"f0oster/adspyview/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historyFixture struct{}

var johnDoe = gateway.ADObject{
	ID:   "a1",
	DN:   "CN=John Doe,OU=Users,DC=example,DC=com",
	Type: "CN=Person,CN=Schema,CN=Configuration,DC=example,DC=com",
}

func (historyFixture) ListObjects(_ context.Context, p gateway.ListParams) (*gateway.ObjectList, error) {
	return &gateway.ObjectList{Objects: []gateway.ADObject{johnDoe}, Total: 1, Limit: p.Limit, Offset: p.Offset}, nil
}

func (historyFixture) GetObject(_ context.Context, id string) (*gateway.ADObject, error) {
	if id != johnDoe.ID {
		return nil, gateway.NotFoundError("fixture:object", nil)
	}
	o := johnDoe
	return &o, nil
}

func (historyFixture) GetObjectTimeline(_ context.Context, id string) ([]gateway.TimelineEntry, error) {
	if id != johnDoe.ID {
		return nil, gateway.NotFoundError("fixture:timeline", nil)
	}
	return []gateway.TimelineEntry{
		{USNChanged: 7, Timestamp: "2024-03-01T12:00:00Z", Snapshot: json.RawMessage(`{"description":"new","memberOf":["CN=A,DC=x","CN=B,DC=x"]}`)},
		{USNChanged: 5, Timestamp: "2024-02-01T12:00:00Z", Snapshot: json.RawMessage(`{"description":"old","memberOf":["CN=A,DC=x"]}`)},
		{USNChanged: 3, Timestamp: "2024-01-01T12:00:00Z"},
	}, nil
}

func (historyFixture) GetVersionChanges(_ context.Context, _ string, usn int64) ([]diff.AttributeChange, error) {
	single := true
	switch usn {
	case 7:
		return []diff.AttributeChange{
			{Attribute: "userAccountControl", OldValue: diff.Number("512"), NewValue: diff.Number("514"), IsSingleValued: &single},
			{Attribute: "memberOf", OldValue: diff.Strings("CN=A,DC=x"), NewValue: diff.Strings()},
		}, nil
	case 8:
		return []diff.AttributeChange{
			{Attribute: "nTSecurityDescriptor", OldValue: diff.String("AQID"), NewValue: diff.String("AQIE"), IsSingleValued: &single},
		}, nil
	}
	return nil, nil
}

func (historyFixture) GetObjectTypes(context.Context) ([]string, error) {
	return []string{"CN=Group,CN=Schema,CN=Configuration,DC=example,DC=com", "CN=Person,CN=Schema,CN=Configuration,DC=example,DC=com"}, nil
}

type fixedDiffer struct {
	resp *sddiff.SDDiffResponse
	got  []string
}

func (d *fixedDiffer) DiffSecurityDescriptors(_ context.Context, oldValue, newValue string) (*sddiff.SDDiffResponse, error) {
	d.got = []string{oldValue, newValue}
	return d.resp, nil
}

func run(t *testing.T, differ *fixedDiffer, args ...string) (string, error) {
	t.Helper()
	for _, env := range []string{config.EnvAPIBase, config.EnvDSN, config.EnvColor, config.EnvPageSize, config.EnvTimeout} {
		t.Setenv(env, "")
	}

	srv := httptest.NewServer(web.NewServer(historyFixture{}, differ, "").Handler())
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	argv := append([]string{"adspy-view", "--env=", "--api", srv.URL + "/api", "--color=false"}, args...)
	err := viewer.NewCommand(&out).Run(context.Background(), argv)
	return out.String(), err
}

func TestObjects(t *testing.T) {
	out, err := run(t, &fixedDiffer{}, "objects", "--limit", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, "Person")
	assert.Contains(t, out, "Showing 1-1 of 1 objects")
}

func TestObject(t *testing.T) {
	out, err := run(t, &fixedDiffer{}, "object", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "DN:         CN=John Doe,OU=Users,DC=example,DC=com\n")

	_, err = run(t, &fixedDiffer{}, "object", "zz")
	require.Error(t, err)
	assert.True(t, gateway.IsNotFound(err))

	_, err = run(t, &fixedDiffer{}, "object")
	assert.ErrorContains(t, err, "expects 1 argument(s)")
}

func TestTypes(t *testing.T) {
	out, err := run(t, &fixedDiffer{}, "types")
	require.NoError(t, err)
	assert.Equal(t, "Group\nPerson\n", out)
}

func TestTimeline(t *testing.T) {
	out, err := run(t, &fixedDiffer{}, "timeline", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-02-01T12:00:00Z")
}

func TestChanges(t *testing.T) {
	out, err := run(t, &fixedDiffer{}, "changes", "a1", "7")
	require.NoError(t, err)
	assert.Equal(t, "userAccountControl: 512 → 514\nmemberOf: A → (empty)\n", out)

	_, err = run(t, &fixedDiffer{}, "changes", "a1", "seven")
	assert.ErrorContains(t, err, `invalid USN "seven"`)
}

func TestChanges_SecurityDescriptor(t *testing.T) {
	out, err := run(t, &fixedDiffer{}, "changes", "a1", "8")
	require.NoError(t, err)
	assert.Equal(t, "nTSecurityDescriptor: security descriptor changed (use --sd to show the ACL diff)\n", out)

	changed := true
	differ := &fixedDiffer{resp: &sddiff.SDDiffResponse{
		HasChanges:   true,
		OwnerChanged: &changed,
		OldOwner:     &sddiff.SIDInfo{Raw: "S-1-5-32-544"},
		NewOwner:     &sddiff.SIDInfo{Raw: "S-1-5-18"},
	}}
	out, err = run(t, differ, "changes", "--sd", "a1", "8")
	require.NoError(t, err)
	assert.Equal(t, "nTSecurityDescriptor:\n  Owner: S-1-5-32-544 → S-1-5-18\n", out)
	assert.Equal(t, []string{"AQID", "AQIE"}, differ.got)
}

func TestSDDiff_Inconsistent(t *testing.T) {
	out, err := run(t, &fixedDiffer{resp: &sddiff.SDDiffResponse{HasChanges: true}}, "sddiff", "AQID", "AQIE")
	require.NoError(t, err)
	assert.Contains(t, out, "inconsistent diff (1 violations):")
	assert.Contains(t, out, sddiff.RuleHasChanges)
}

func TestCompare(t *testing.T) {
	out, err := run(t, &fixedDiffer{}, "compare", "a1", "5", "7")
	require.NoError(t, err)
	assert.Equal(t, "description: old → new\nmemberOf: +1 -0 =1\n  + B\n    A\n", out)

	_, err = run(t, &fixedDiffer{}, "compare", "a1", "5", "99")
	assert.ErrorContains(t, err, "version 99 not found")

	_, err = run(t, &fixedDiffer{}, "compare", "a1", "3", "7")
	assert.ErrorContains(t, err, "version 3 has no stored snapshot")
}
