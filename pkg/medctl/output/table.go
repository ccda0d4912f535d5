package output

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/meditracker/medctl/pkg/medctl/client"
)

const maxDescriptionWidth = 48

func WriteMedicineTable(w io.Writer, medicines []client.Medicine) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tDOSAGE\tDESCRIPTION\tUPDATED")
	for _, m := range medicines {
		id := "-"
		if m.ID != 0 {
			id = strconv.FormatInt(m.ID, 10)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, m.Name, formatDosage(m), truncate(m.Description, maxDescriptionWidth), orDash(m.UpdatedAt))
	}
	_ = tw.Flush()
}

func formatDosage(m client.Medicine) string {
	amount := strconv.FormatFloat(m.DosageAmount, 'f', -1, 64)
	if m.DosageUnit == "" {
		return amount
	}
	return amount + " " + m.DosageUnit
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return orDash(s)
	}
	return string(r[:width-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
