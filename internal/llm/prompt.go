package llm

import (
	"strings"

	"github.com/joseph-ayodele/deal-scanner/constants"
)

// fieldHints describes each field to the model. Keys follow constants.AllFields.
var fieldHints = map[constants.Field]string{
	constants.DealName:               "Descriptive name of the property (e.g., 'Scottsdale Shopping Center')",
	constants.AssetClass:             "Type of property: Office, Industrial, Retail, Mixed Use, etc.",
	constants.Description:            "Brief description like 'multi-tenant', 'sale leaseback', 'single tenant', 'triple net'",
	constants.PricingGuidance:        "Expected price as number (e.g., 31000000 for $31M)",
	constants.PricePSF:               "Price per square foot as number",
	constants.CapRate:                "Cap rate as percentage (e.g., 5.0 for 5.0%)",
	constants.Address:                "Street address only, no city/state",
	constants.City:                   "City name",
	constants.State:                  "State abbreviation (e.g., 'AZ')",
	constants.ZipCode:                "Zip code if mentioned",
	constants.YearBuiltReno:          "Year built and/or renovation year (e.g., '1986' or '1986 / 2010')",
	constants.SquareFootage:          "Total square footage as number",
	constants.LandSize:               "Land size in acres as number",
	constants.NumberOfBuildings:      "Number of buildings as number",
	constants.CurrentOccupancy:       "Occupancy percentage (e.g., 90.0 for 90%)",
	constants.ParkingRatio:           "Parking ratio as number (e.g., 3.5)",
	constants.ClearHeight:            "Clear height in feet as number",
	constants.MajorTenants:           "Primary tenant names",
	constants.CreditRating:           "Credit rating (e.g., 'BBB+', 'Baa1')",
	constants.RemainingTerm:          "Remaining lease term in years as number",
	constants.AnnualLeaseEscalations: "Annual escalation percentage (e.g., 3.0 for 3%)",
	constants.CurrentOwner:           "Current property owner name",
	constants.Broker:                 "Broker/brokerage company name",
	constants.BrokerContact:          "Broker contact person name",
	constants.BrokerPhone:            "Broker phone number",
	constants.BrokerEmail:            "Broker email address",
}

const promptHeader = `You are a commercial real estate analyst extracting key information from marketing emails.
Analyze the email content below and extract the listed fields as a single JSON object.

Pay special attention to the subject line: it often carries location, NOI, lease terms and property type.

EMAIL CONTENT:
`

const promptRules = `
EXTRACTION RULES:
- Use null for any field that is missing or unclear.
- Convert monetary values to plain numbers (no $ or commas).
- Convert percentages to numbers (5% = 5.0).
- Describe only the primary property if several are mentioned.
- For ranges, use the midpoint or most likely value.
- Report facts, not marketing language.

Respond with ONLY the JSON object, no additional text.`

// BuildExtractionPrompt embeds the (already sanitized) document in the fixed
// extraction template.
func BuildExtractionPrompt(document string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString(document)
	b.WriteString("\n\nFIELDS (key: meaning):\n{\n")
	fields := constants.AllFields()
	for i, f := range fields {
		b.WriteString(`  "`)
		b.WriteString(string(f))
		b.WriteString(`": "`)
		b.WriteString(fieldHints[f])
		b.WriteString(`"`)
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	b.WriteString(promptRules)
	return b.String()
}
