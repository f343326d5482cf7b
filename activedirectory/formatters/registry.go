package formatters

import (
	"strings"

	"f0oster/adspyview/diff"
)

// Registry maps attribute names to the Transformer used when displaying their values.
// Lookups are case-insensitive, matching LDAP attribute name semantics.
type Registry struct {
	transformers map[string]Transformer
	fallback     Transformer
}

func NewRegistry() *Registry {
	r := &Registry{
		transformers: make(map[string]Transformer),
		fallback:     PassthroughTransformer{},
	}
	r.init()
	return r
}

func (r *Registry) Register(attr string, t Transformer) {
	r.transformers[strings.ToLower(attr)] = t
}

// SetFallback sets the Transformer used for unregistered attributes.
func (r *Registry) SetFallback(t Transformer) {
	r.fallback = t
}

func (r *Registry) Lookup(attr string) (Transformer, bool) {
	t, ok := r.transformers[strings.ToLower(attr)]
	return t, ok
}

// Display transforms a single element of attr for display.
func (r *Registry) Display(attr, value string) string {
	if t, ok := r.Lookup(attr); ok {
		return t.Transform(value)
	}
	return r.fallback.Transform(value)
}

// TransformValue applies Display to every string scalar held by v.
// Numbers, booleans and structured values are returned as is.
func (r *Registry) TransformValue(attr string, v diff.Value) diff.Value {
	switch v.Kind() {
	case diff.KindScalar:
		s, _ := v.Scalar()
		if s.Kind() != diff.ScalarString {
			return v
		}
		return diff.String(r.Display(attr, s.String()))
	case diff.KindSequence:
		elems := v.Elements()
		for i, e := range elems {
			if e.Kind() == diff.ScalarString {
				elems[i] = diff.StringScalar(r.Display(attr, e.String()))
			}
		}
		return diff.Sequence(elems...)
	}
	return v
}

func (r *Registry) registerDNAttributes() {
	for _, attr := range []string{
		"member",
		"memberOf",
		"manager",
		"directReports",
		"managedBy",
		"objectCategory",
		"distinguishedName",
	} {
		r.Register(attr, DNTransformer{})
	}
}

func (r *Registry) registerBinaryAttributes() {
	for _, attr := range []string{"objectSid", "sIDHistory", "tokenGroups", "securityIdentifier"} {
		r.Register(attr, SIDTransformer{})
	}
	for _, attr := range []string{"objectGUID", "msExchMailboxGuid"} {
		r.Register(attr, GUIDTransformer{})
	}
}

func (r *Registry) registerTimeAttributes() {
	for _, attr := range []string{
		"whenCreated",
		"whenChanged",
		"pwdLastSet",
		"lastLogon",
		"lastLogonTimestamp",
		"lastLogoff",
		"badPasswordTime",
		"lockoutTime",
		"accountExpires",
	} {
		r.Register(attr, TimeTransformer{})
	}
}

func (r *Registry) init() {
	r.registerDNAttributes()
	r.registerBinaryAttributes()
	r.registerTimeAttributes()
}
