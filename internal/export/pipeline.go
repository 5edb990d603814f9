package export

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// PipelineHeaders is the fixed column layout of the deal pipeline sheet.
var PipelineHeaders = []string{
	"Deal", "Book #", "Next Steps", "Entry Date", "Bid Date", "Deal Lead",
	"Capitalization", "Asset Class", "Description", "Pricing Guidance", "Price PSF",
	"Cap Rate", "Address", "City", "State", "Year Built / Last Reno", "Square Footage",
	"Land Size", "# of Bldgs", "Current Occupancy", "Parking Ratio", "Clear Height",
	"Major Tenant(s)", "Credit Rating", "Remaining Term", "Annual Lease Escalations",
	"Current Owner", "Desktop Due Date", "Desktop Complete", "One Pager Due Date",
	"One Pager Complete", "VAL or One Pager", "Virtual Deal Room Link", "Materials Received",
	"BAFO Date", "LOI Sent", "Date Awarded", "Status", "Comments", "Broker", "Contact",
	"Phone Number", "Email", "FD LOI Price", "Final Price vs Stonewater Price", "Seller",
	"Buyer", "Final Price", "Final Price vs Guidance Price", "Closing Date & Comments",
	"Government Adjacent", "Parent Row", "New Venture", "Up-Date", "Sent CA",
	"Origination Type", "Classification", "Reviewed (Date) Year", "LOI Year",
	"Risk Profile", "Deal Type",
}

type format int

const (
	formatPlain format = iota
	formatCurrency
	formatPercent
	formatGrouped
)

type column struct {
	field  constants.Field
	format format
}

// columns maps sheet headers to extracted fields. zip_code has no column in
// the pipeline layout and is not exported.
var columns = map[string]column{
	"Deal":                     {constants.DealName, formatPlain},
	"Asset Class":              {constants.AssetClass, formatPlain},
	"Description":              {constants.Description, formatPlain},
	"Pricing Guidance":         {constants.PricingGuidance, formatCurrency},
	"Price PSF":                {constants.PricePSF, formatPlain},
	"Cap Rate":                 {constants.CapRate, formatPercent},
	"Address":                  {constants.Address, formatPlain},
	"City":                     {constants.City, formatPlain},
	"State":                    {constants.State, formatPlain},
	"Year Built / Last Reno":   {constants.YearBuiltReno, formatPlain},
	"Square Footage":           {constants.SquareFootage, formatGrouped},
	"Land Size":                {constants.LandSize, formatGrouped},
	"# of Bldgs":               {constants.NumberOfBuildings, formatGrouped},
	"Current Occupancy":        {constants.CurrentOccupancy, formatPercent},
	"Parking Ratio":            {constants.ParkingRatio, formatPlain},
	"Clear Height":             {constants.ClearHeight, formatPlain},
	"Major Tenant(s)":          {constants.MajorTenants, formatPlain},
	"Credit Rating":            {constants.CreditRating, formatPlain},
	"Remaining Term":           {constants.RemainingTerm, formatPlain},
	"Annual Lease Escalations": {constants.AnnualLeaseEscalations, formatPercent},
	"Current Owner":            {constants.CurrentOwner, formatPlain},
	"Broker":                   {constants.Broker, formatPlain},
	"Contact":                  {constants.BrokerContact, formatPlain},
	"Phone Number":             {constants.BrokerPhone, formatPlain},
	"Email":                    {constants.BrokerEmail, formatPlain},
}

const entryDateLayout = "01/02/06"

// BuildRow renders one pipeline row, aligned with PipelineHeaders. Absent
// fields and columns without a source are left blank.
func BuildRow(fields entity.DealFields, sourceRef string, now time.Time) []string {
	row := make([]string, len(PipelineHeaders))
	for i, h := range PipelineHeaders {
		switch h {
		case "Entry Date":
			row[i] = now.Format(entryDateLayout)
		case "Comments":
			if sourceRef != "" {
				row[i] = "Extracted from email: " + filepath.Base(sourceRef)
			} else {
				row[i] = "Extracted from marketing email"
			}
		default:
			if c, ok := columns[h]; ok {
				row[i] = formatField(fields, c)
			}
		}
	}
	return row
}

func formatField(fields entity.DealFields, c column) string {
	if c.field.Kind() == constants.KindString {
		return fields.String(c.field).OrElse("")
	}
	v, ok := fields.Number(c.field).Get()
	if !ok {
		return ""
	}
	switch c.format {
	case formatCurrency:
		return FormatCurrency(v)
	case formatPercent:
		return FormatPercent(v)
	case formatGrouped:
		return FormatGrouped(v)
	}
	return formatFloat(v)
}

// FormatCurrency renders 31000000 as "$31,000,000" and 1234.5 as "$1,234.50".
func FormatCurrency(v float64) string {
	return "$" + FormatGrouped(v)
}

// FormatPercent renders 5 as "5.0%" and 6.25 as "6.25%".
func FormatPercent(v float64) string {
	return formatFloat(v) + "%"
}

// FormatGrouped renders whole numbers with thousands separators and others
// with two decimals as well.
func FormatGrouped(v float64) string {
	if isWhole(v) {
		return group(strconv.FormatFloat(v, 'f', 0, 64))
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	return group(s[:dot]) + s[dot:]
}

// formatFloat always shows a fractional part, so whole values read "5.0".
func formatFloat(v float64) string {
	if isWhole(v) && math.Abs(v) < 1e16 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isWhole(v float64) bool {
	return v == math.Trunc(v)
}

func group(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	if len(digits) <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
