package render

import (
	"fmt"
	"strconv"

	"f0oster/adspyview/activedirectory/formatters"
	"f0oster/adspyview/gateway"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func (r *Renderer) table(headers []string, rows [][]string) *table.Table {
	headerStyle := lipgloss.NewStyle()
	if r.color {
		headerStyle = headerStyle.Bold(true)
	}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle()
			if row == table.HeaderRow {
				st = headerStyle
			}
			if col > 0 {
				st = st.PaddingLeft(2)
			}
			return st
		}).
		Headers(headers...).
		Rows(rows...)
}

// Objects writes one row per object followed by the paging summary.
func (r *Renderer) Objects(list *gateway.ObjectList) {
	if len(list.Objects) == 0 {
		r.println("No objects found.")
		return
	}

	rows := make([][]string, 0, len(list.Objects))
	for _, o := range list.Objects {
		name := formatters.ExtractName(o.DN)
		if o.Deleted() {
			name += " (deleted)"
		}
		updated := "-"
		if o.UpdatedAt != "" {
			updated = r.relTime(o.UpdatedAt)
		}
		rows = append(rows, []string{
			name,
			formatters.ExtractType(o.Type),
			formatters.DNContainer(o.DN),
			updated,
			o.ID,
		})
	}

	fmt.Fprintln(r.w, r.table([]string{"NAME", "TYPE", "CONTAINER", "UPDATED", "ID"}, rows))
	first := list.Offset + 1
	last := list.Offset + len(list.Objects)
	r.println(r.palette.muted(fmt.Sprintf("Showing %d-%d of %d objects", first, last, list.Total)))
}

// Object writes the details of a single object.
func (r *Renderer) Object(o *gateway.ADObject) {
	r.println(r.palette.header(formatters.ExtractName(o.DN)))
	r.printf("  DN:         %s\n", o.DN)
	r.printf("  Type:       %s\n", formatters.ExtractType(o.Type))
	r.printf("  Container:  %s\n", formatters.DNContainer(o.DN))
	r.printf("  ID:         %s\n", o.ID)
	if o.GUID != "" {
		r.printf("  GUID:       %s\n", o.GUID)
	}
	if o.UpdatedAt != "" {
		r.printf("  Updated:    %s (%s)\n", o.UpdatedAt, r.relTime(o.UpdatedAt))
	}
	if o.Deleted() {
		r.printf("  Deleted:    %s (%s)\n", *o.DeletedAt, r.relTime(*o.DeletedAt))
	}
}

// Types writes the known object types, one per line.
func (r *Renderer) Types(types []string) {
	if len(types) == 0 {
		r.println("No object types found.")
		return
	}
	for _, t := range types {
		r.println(formatters.ExtractType(t))
	}
}

// Timeline writes the versions of an object in the order given.
func (r *Renderer) Timeline(timeline []gateway.TimelineEntry) {
	if len(timeline) == 0 {
		r.println("No versions recorded.")
		return
	}

	rows := make([][]string, 0, len(timeline))
	for _, e := range timeline {
		by := e.ModifiedBy
		if by == "" {
			by = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.USNChanged, 10),
			e.Timestamp,
			r.relTime(e.Timestamp),
			by,
		})
	}
	fmt.Fprintln(r.w, r.table([]string{"USN", "TIMESTAMP", "WHEN", "MODIFIED BY"}, rows))
}
