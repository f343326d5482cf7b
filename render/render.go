package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"f0oster/adspyview/activedirectory/formatters"
	"f0oster/adspyview/diff"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const arrow = " → "

type Options struct {
	Color    bool
	Now      func() time.Time
	Registry *formatters.Registry
	Cache    *Cache
}

// Renderer writes listings, timelines and diffs as terminal text.
type Renderer struct {
	w        io.Writer
	color    bool
	palette  palette
	now      func() time.Time
	registry *formatters.Registry
	cache    *Cache
}

func New(w io.Writer, opts Options) *Renderer {
	r := &Renderer{
		w:        w,
		color:    opts.Color,
		palette:  newPalette(opts.Color),
		now:      opts.Now,
		registry: opts.Registry,
		cache:    opts.Cache,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.registry == nil {
		r.registry = formatters.NewRegistry()
	}
	if r.cache == nil {
		r.cache = &Cache{}
	}
	return r
}

type palette struct {
	added, removed, moved, header, muted func(string) string
}

func paint(style lipgloss.Style) func(string) string {
	return func(s string) string { return style.Render(s) }
}

func newPalette(color bool) palette {
	if !color {
		plain := func(s string) string { return s }
		return palette{plain, plain, plain, plain, plain}
	}
	return palette{
		added:   paint(lipgloss.NewStyle().Foreground(lipgloss.Color("2"))),
		removed: paint(lipgloss.NewStyle().Foreground(lipgloss.Color("1"))),
		moved:   paint(lipgloss.NewStyle().Foreground(lipgloss.Color("3"))),
		header:  paint(lipgloss.NewStyle().Bold(true)),
		muted:   paint(lipgloss.NewStyle().Faint(true)),
	}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) println(s string) {
	fmt.Fprintln(r.w, s)
}

// value formats v for attr, applying the attribute's display transformer.
func (r *Renderer) value(attr string, v diff.Value) string {
	return r.cache.Format(v, AttributeMode(strings.ToLower(attr)), func() string {
		return formatters.FormatValue(r.registry.TransformValue(attr, v))
	})
}

// relTime renders an RFC 3339 timestamp relative to now, or "-" when unparsable.
func (r *Renderer) relTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "-"
	}
	return humanize.RelTime(t, r.now(), "ago", "from now")
}
