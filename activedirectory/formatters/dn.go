package formatters

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

var (
	leadingRDN      = regexp.MustCompile(`(?i)^([A-Za-z]+)=([^,]+)`)
	leadingCNPrefix = regexp.MustCompile(`(?i)^CN=([^,]+)`)
)

// ExtractName returns the value of the leading RDN of a distinguished name.
//
//	"CN=John Doe,OU=Users,DC=example,DC=com" -> "John Doe"
//
// Input that does not start with attr=value falls back to the text before the first comma.
func ExtractName(dn string) string {
	if m := leadingRDN.FindStringSubmatch(dn); m != nil {
		return m[2]
	}
	if head, _, _ := strings.Cut(dn, ","); head != "" {
		return head
	}
	return dn
}

// ExtractType returns the class name from an objectCategory DN such as
// "CN=Person,CN=Schema,CN=Configuration,DC=example,DC=com".
func ExtractType(objectType string) string {
	if objectType == "" {
		return "unknown"
	}
	if m := leadingCNPrefix.FindStringSubmatch(objectType); m != nil {
		return m[1]
	}
	return objectType
}

func IsDN(value string) bool {
	return strings.Contains(value, "=") && strings.Contains(value, ",")
}

// FormatDNValue shortens DN-shaped values to their leading RDN value.
func FormatDNValue(value string) string {
	if IsDN(value) {
		return ExtractName(value)
	}
	return value
}

// DNContainer returns the parent path of dn, e.g. "OU=Users,DC=example,DC=com"
// for "CN=John Doe,OU=Users,DC=example,DC=com". It returns "" for single-RDN
// and unparsable input.
func DNContainer(dn string) string {
	parsed, err := ldap.ParseDN(dn)
	if err != nil || len(parsed.RDNs) < 2 {
		return ""
	}

	rdns := make([]string, 0, len(parsed.RDNs)-1)
	for _, rdn := range parsed.RDNs[1:] {
		attrs := make([]string, 0, len(rdn.Attributes))
		for _, attr := range rdn.Attributes {
			attrs = append(attrs, fmt.Sprintf("%s=%s", attr.Type, attr.Value))
		}
		rdns = append(rdns, strings.Join(attrs, "+"))
	}
	return strings.Join(rdns, ",")
}
