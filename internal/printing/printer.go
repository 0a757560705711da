package printing

import (
	"fmt"
	"log"
	"strings"

	"resto-pos/internal/workflow"
)

// Console renders kitchen tickets to the server log. It stands in for the
// thermal-printer bridge, which speaks the same PrintTicket contract.
type Console struct{}

func (Console) PrintTicket(t workflow.Ticket) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n====== KOT %s (%s) ======\n", t.KOTNumber, t.OrderNumber)
	fmt.Fprintf(&b, "%s\n", t.Banner)
	if t.PreparedBy != "" {
		fmt.Fprintf(&b, "Taken by: %s\n", t.PreparedBy)
	}
	for _, g := range t.Groups {
		fmt.Fprintf(&b, "-- %s --\n", g.Category)
		for _, line := range g.Lines {
			fmt.Fprintf(&b, "%2d x %s", line.Quantity, line.Name)
			if line.Note != "" {
				fmt.Fprintf(&b, "  (%s)", line.Note)
			}
			b.WriteString("\n")
		}
	}
	if t.OrderNote != "" {
		fmt.Fprintf(&b, "Note: %s\n", t.OrderNote)
	}
	fmt.Fprintf(&b, "Items: %d\n", t.TotalItems)
	log.Print(b.String())
	return nil
}
