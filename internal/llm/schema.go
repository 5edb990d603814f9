package llm

import "github.com/joseph-ayodele/deal-scanner/constants"

// BuildResponseJSONSchema describes what we expect the model to answer: an
// object over the declared keys holding scalars. It is used to log drift,
// coercion handles the rest.
func BuildResponseJSONSchema() map[string]any {
	props := make(map[string]any, len(constants.AllFields()))
	for _, f := range constants.AllFields() {
		props[string(f)] = map[string]any{"type": []string{"string", "number", "null"}}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// BuildDealJSONSchema is the strict shape of an encoded entity.DealFields:
// every key required, typed value or null.
func BuildDealJSONSchema() map[string]any {
	fields := constants.AllFields()
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		t := "string"
		if f.Kind() == constants.KindNumber {
			t = "number"
		}
		props[string(f)] = map[string]any{"type": []string{t, "null"}}
		required = append(required, string(f))
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
