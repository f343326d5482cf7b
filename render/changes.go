package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"f0oster/adspyview/activedirectory/formatters"
	"f0oster/adspyview/diff"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

const sdHint = "security descriptor changed (use --sd to show the ACL diff)"

// Changes writes every attribute change of a version.
func (r *Renderer) Changes(changes []diff.AttributeChange) {
	if len(changes) == 0 {
		r.println("No attribute changes.")
		return
	}
	for _, c := range changes {
		r.Change(c, false)
	}
}

// Change writes a single attribute change. When sdPending is true a security
// descriptor attribute prints only its header line, since the caller follows
// up with the SD diff.
func (r *Renderer) Change(c diff.AttributeChange, sdPending bool) {
	if formatters.IsSecurityDescriptor(c.Attribute) {
		if sdPending {
			r.println(r.palette.header(c.Attribute + ":"))
			return
		}
		r.printf("%s: %s\n", r.palette.header(c.Attribute), r.palette.muted(sdHint))
		return
	}

	if diff.ShouldShowAsMultiValued(c) {
		r.listChange(c)
		return
	}
	if r.structuredChange(c) {
		return
	}
	r.printf("%s: %s%s%s\n",
		r.palette.header(c.Attribute),
		r.palette.removed(r.value(c.Attribute, c.OldValue)),
		arrow,
		r.palette.added(r.value(c.Attribute, c.NewValue)),
	)
}

func (r *Renderer) listChange(c diff.AttributeChange) {
	res := diff.ComputeArrayDiff(c.OldValue, c.NewValue)
	r.printf("%s %s\n",
		r.palette.header(c.Attribute+":"),
		r.palette.muted(fmt.Sprintf("+%d -%d =%d", len(res.Added), len(res.Removed), len(res.Unchanged))),
	)
	for _, v := range res.Added {
		r.println(r.palette.added("  + " + r.registry.Display(c.Attribute, v)))
	}
	for _, v := range res.Removed {
		r.println(r.palette.removed("  - " + r.registry.Display(c.Attribute, v)))
	}
	for _, v := range res.Unchanged {
		r.println("    " + r.registry.Display(c.Attribute, v))
	}
}

// structuredChange renders a JSON delta when both sides are objects.
func (r *Renderer) structuredChange(c diff.AttributeChange) bool {
	if c.OldValue.Kind() != diff.KindStructured || c.NewValue.Kind() != diff.KindStructured {
		return false
	}
	oldRaw, newRaw := c.OldValue.Raw(), c.NewValue.Raw()
	if !gjson.ParseBytes(oldRaw).IsObject() || !gjson.ParseBytes(newRaw).IsObject() {
		return false
	}

	delta, err := gojsondiff.New().Compare(oldRaw, newRaw)
	if err != nil {
		log.WithError(err).WithField("attribute", c.Attribute).Debug("structured diff failed")
		return false
	}

	if !delta.Modified() {
		r.println(r.palette.header(c.Attribute + ":"))
		r.println(r.palette.muted("  (no structural change)"))
		return true
	}

	var left map[string]any
	if err := json.Unmarshal(oldRaw, &left); err != nil {
		return false
	}
	out, err := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       r.color,
	}).Format(delta)
	if err != nil {
		log.WithError(err).WithField("attribute", c.Attribute).Debug("structured diff format failed")
		return false
	}

	r.println(r.palette.header(c.Attribute + ":"))
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		r.println("  " + line)
	}
	return true
}
