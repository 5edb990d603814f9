package entity

import "github.com/joseph-ayodele/deal-scanner/constants"

// DealFields is the closed record of extracted deal attributes. Every field is
// always present as a key; absence is carried by Optional. JSON encoding emits
// the keys in declared order.
type DealFields struct {
	DealName               Optional[string]  `json:"deal_name"`
	AssetClass             Optional[string]  `json:"asset_class"`
	Description            Optional[string]  `json:"description"`
	PricingGuidance        Optional[float64] `json:"pricing_guidance"`
	PricePSF               Optional[float64] `json:"price_psf"`
	CapRate                Optional[float64] `json:"cap_rate"`
	Address                Optional[string]  `json:"address"`
	City                   Optional[string]  `json:"city"`
	State                  Optional[string]  `json:"state"`
	ZipCode                Optional[string]  `json:"zip_code"`
	YearBuiltReno          Optional[string]  `json:"year_built_reno"`
	SquareFootage          Optional[float64] `json:"square_footage"`
	LandSize               Optional[float64] `json:"land_size"`
	NumberOfBuildings      Optional[float64] `json:"number_of_buildings"`
	CurrentOccupancy       Optional[float64] `json:"current_occupancy"`
	ParkingRatio           Optional[float64] `json:"parking_ratio"`
	ClearHeight            Optional[float64] `json:"clear_height"`
	MajorTenants           Optional[string]  `json:"major_tenants"`
	CreditRating           Optional[string]  `json:"credit_rating"`
	RemainingTerm          Optional[float64] `json:"remaining_term"`
	AnnualLeaseEscalations Optional[float64] `json:"annual_lease_escalations"`
	CurrentOwner           Optional[string]  `json:"current_owner"`
	Broker                 Optional[string]  `json:"broker"`
	BrokerContact          Optional[string]  `json:"broker_contact"`
	BrokerPhone            Optional[string]  `json:"broker_phone"`
	BrokerEmail            Optional[string]  `json:"broker_email"`
}

var stringRefs = map[constants.Field]func(*DealFields) *Optional[string]{
	constants.DealName:      func(d *DealFields) *Optional[string] { return &d.DealName },
	constants.AssetClass:    func(d *DealFields) *Optional[string] { return &d.AssetClass },
	constants.Description:   func(d *DealFields) *Optional[string] { return &d.Description },
	constants.Address:       func(d *DealFields) *Optional[string] { return &d.Address },
	constants.City:          func(d *DealFields) *Optional[string] { return &d.City },
	constants.State:         func(d *DealFields) *Optional[string] { return &d.State },
	constants.ZipCode:       func(d *DealFields) *Optional[string] { return &d.ZipCode },
	constants.YearBuiltReno: func(d *DealFields) *Optional[string] { return &d.YearBuiltReno },
	constants.MajorTenants:  func(d *DealFields) *Optional[string] { return &d.MajorTenants },
	constants.CreditRating:  func(d *DealFields) *Optional[string] { return &d.CreditRating },
	constants.CurrentOwner:  func(d *DealFields) *Optional[string] { return &d.CurrentOwner },
	constants.Broker:        func(d *DealFields) *Optional[string] { return &d.Broker },
	constants.BrokerContact: func(d *DealFields) *Optional[string] { return &d.BrokerContact },
	constants.BrokerPhone:   func(d *DealFields) *Optional[string] { return &d.BrokerPhone },
	constants.BrokerEmail:   func(d *DealFields) *Optional[string] { return &d.BrokerEmail },
}

var numberRefs = map[constants.Field]func(*DealFields) *Optional[float64]{
	constants.PricingGuidance:        func(d *DealFields) *Optional[float64] { return &d.PricingGuidance },
	constants.PricePSF:               func(d *DealFields) *Optional[float64] { return &d.PricePSF },
	constants.CapRate:                func(d *DealFields) *Optional[float64] { return &d.CapRate },
	constants.SquareFootage:          func(d *DealFields) *Optional[float64] { return &d.SquareFootage },
	constants.LandSize:               func(d *DealFields) *Optional[float64] { return &d.LandSize },
	constants.NumberOfBuildings:      func(d *DealFields) *Optional[float64] { return &d.NumberOfBuildings },
	constants.CurrentOccupancy:       func(d *DealFields) *Optional[float64] { return &d.CurrentOccupancy },
	constants.ParkingRatio:           func(d *DealFields) *Optional[float64] { return &d.ParkingRatio },
	constants.ClearHeight:            func(d *DealFields) *Optional[float64] { return &d.ClearHeight },
	constants.RemainingTerm:          func(d *DealFields) *Optional[float64] { return &d.RemainingTerm },
	constants.AnnualLeaseEscalations: func(d *DealFields) *Optional[float64] { return &d.AnnualLeaseEscalations },
}

// String returns a string-typed field. Numeric or unknown fields are absent.
func (d DealFields) String(f constants.Field) Optional[string] {
	if ref, ok := stringRefs[f]; ok {
		return *ref(&d)
	}
	return None[string]()
}

// Number returns a numeric field. String-typed or unknown fields are absent.
func (d DealFields) Number(f constants.Field) Optional[float64] {
	if ref, ok := numberRefs[f]; ok {
		return *ref(&d)
	}
	return None[float64]()
}

// SetString assigns a string-typed field. It reports false for other fields.
func (d *DealFields) SetString(f constants.Field, v Optional[string]) bool {
	ref, ok := stringRefs[f]
	if !ok {
		return false
	}
	*ref(d) = v
	return true
}

// SetNumber assigns a numeric field. It reports false for other fields.
func (d *DealFields) SetNumber(f constants.Field, v Optional[float64]) bool {
	ref, ok := numberRefs[f]
	if !ok {
		return false
	}
	*ref(d) = v
	return true
}

// Present reports whether f carries a value.
func (d DealFields) Present(f constants.Field) bool {
	if f.Kind() == constants.KindNumber {
		return d.Number(f).Valid()
	}
	return d.String(f).Valid()
}

// Value returns the field as string or float64, and whether it is present.
func (d DealFields) Value(f constants.Field) (any, bool) {
	if f.Kind() == constants.KindNumber {
		v, ok := d.Number(f).Get()
		return v, ok
	}
	v, ok := d.String(f).Get()
	return v, ok
}

// CountPresent counts how many of fields carry a value.
func (d DealFields) CountPresent(fields []constants.Field) int {
	n := 0
	for _, f := range fields {
		if d.Present(f) {
			n++
		}
	}
	return n
}

// AllAbsent reports whether no field carries a value.
func (d DealFields) AllAbsent() bool {
	return d.CountPresent(constants.AllFields()) == 0
}
