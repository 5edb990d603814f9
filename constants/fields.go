package constants

// Field is the wire name of one extracted deal attribute.
type Field string

const (
	DealName               Field = "deal_name"
	AssetClass             Field = "asset_class"
	Description            Field = "description"
	PricingGuidance        Field = "pricing_guidance"
	PricePSF               Field = "price_psf"
	CapRate                Field = "cap_rate"
	Address                Field = "address"
	City                   Field = "city"
	State                  Field = "state"
	ZipCode                Field = "zip_code"
	YearBuiltReno          Field = "year_built_reno"
	SquareFootage          Field = "square_footage"
	LandSize               Field = "land_size"
	NumberOfBuildings      Field = "number_of_buildings"
	CurrentOccupancy       Field = "current_occupancy"
	ParkingRatio           Field = "parking_ratio"
	ClearHeight            Field = "clear_height"
	MajorTenants           Field = "major_tenants"
	CreditRating           Field = "credit_rating"
	RemainingTerm          Field = "remaining_term"
	AnnualLeaseEscalations Field = "annual_lease_escalations"
	CurrentOwner           Field = "current_owner"
	Broker                 Field = "broker"
	BrokerContact          Field = "broker_contact"
	BrokerPhone            Field = "broker_phone"
	BrokerEmail            Field = "broker_email"
)

// FieldKind tells the coercion pass how to treat a value.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
)

// allFields is the declared schema, in output order.
var allFields = []Field{
	DealName, AssetClass, Description, PricingGuidance, PricePSF, CapRate,
	Address, City, State, ZipCode, YearBuiltReno, SquareFootage, LandSize,
	NumberOfBuildings, CurrentOccupancy, ParkingRatio, ClearHeight,
	MajorTenants, CreditRating, RemainingTerm, AnnualLeaseEscalations,
	CurrentOwner, Broker, BrokerContact, BrokerPhone, BrokerEmail,
}

var numberFields = map[Field]struct{}{
	PricingGuidance:        {},
	PricePSF:               {},
	CapRate:                {},
	SquareFootage:          {},
	LandSize:               {},
	NumberOfBuildings:      {},
	CurrentOccupancy:       {},
	ParkingRatio:           {},
	ClearHeight:            {},
	RemainingTerm:          {},
	AnnualLeaseEscalations: {},
}

// ScoringCriticalFields is the subset the quality scorer measures.
var ScoringCriticalFields = []Field{
	DealName, AssetClass, PricingGuidance, Address, City, State, SquareFootage,
}

// OCRCriticalFields is the subset the OCR trigger counts. It trades deal_name
// for cap_rate relative to ScoringCriticalFields; the two sets are kept apart
// on purpose.
var OCRCriticalFields = []Field{
	PricingGuidance, Address, City, State, SquareFootage, AssetClass, CapRate,
}

// AllFields returns a copy of the declared schema in output order.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

func (f Field) Kind() FieldKind {
	if _, ok := numberFields[f]; ok {
		return KindNumber
	}
	return KindString
}

func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}
