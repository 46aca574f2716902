package pdf

import (
	"fmt"
	"strings"
)

// Filename derives the download filename for a quotation PDF:
// quotation-<customer name with spaces as hyphens>-<last 6 of id, uppercased>.pdf
func Filename(customerName, quotationID string) string {
	name := strings.ReplaceAll(strings.TrimSpace(customerName), " ", "-")

	suffix := quotationID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	suffix = strings.ToUpper(suffix)

	return fmt.Sprintf("quotation-%s-%s.pdf", name, suffix)
}
