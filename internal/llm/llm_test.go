package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

type fakeInferer struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeInferer) Infer(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

func keysOf(t *testing.T, d entity.DealFields) []string {
	t.Helper()
	b, err := json.Marshal(d)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`  {"a":1} `))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```{\"a\":1}```"))
}

func TestParseResponse(t *testing.T) {
	obj, repaired, err := ParseResponse(`{"deal_name": "Foo"`)
	require.NoError(t, err)
	assert.True(t, repaired)
	assert.Equal(t, map[string]any{"deal_name": "Foo"}, obj)

	obj, repaired, err = ParseResponse("```json\n{\"a\": {\"b\": 1}\n```")
	require.NoError(t, err)
	assert.True(t, repaired)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1.0}}, obj)

	_, _, err = ParseResponse(`[1, 2]`)
	assert.Error(t, err)

	_, _, err = ParseResponse(`{"a": "unterminated`)
	assert.Error(t, err)

	_, _, err = ParseResponse(`not json at all }`)
	assert.Error(t, err)

	_, _, err = ParseResponse("   ")
	assert.Error(t, err)
}

func TestCoerce_Numbers(t *testing.T) {
	fields, _ := Coerce(map[string]any{
		"pricing_guidance":    "$31,000,000",
		"cap_rate":            "5%",
		"square_footage":      "n/a",
		"price_psf":           245.5,
		"land_size":           " 12.5 ",
		"current_occupancy":   "about ninety",
		"number_of_buildings": true,
		"clear_height":        "Infinity",
		"parking_ratio":       nil,
	})
	assert.Equal(t, entity.Some(31000000.0), fields.PricingGuidance)
	assert.Equal(t, entity.Some(5.0), fields.CapRate)
	assert.False(t, fields.SquareFootage.Valid())
	assert.Equal(t, entity.Some(245.5), fields.PricePSF)
	assert.Equal(t, entity.Some(12.5), fields.LandSize)
	assert.False(t, fields.CurrentOccupancy.Valid())
	assert.False(t, fields.NumberOfBuildings.Valid())
	assert.False(t, fields.ClearHeight.Valid())
	assert.False(t, fields.ParkingRatio.Valid())
}

func TestCoerce_Strings(t *testing.T) {
	fields, dropped := Coerce(map[string]any{
		"deal_name":       "  Scottsdale Center ",
		"city":            "N/A",
		"state":           "none",
		"address":         "Not Available",
		"zip_code":        85251.0,
		"year_built_reno": "",
		"broker":          []any{"x"},
		"broker_email":    "null",
		"noi":             "1.2M",
	})
	assert.Equal(t, entity.Some("Scottsdale Center"), fields.DealName)
	assert.False(t, fields.City.Valid())
	assert.False(t, fields.State.Valid())
	assert.False(t, fields.Address.Valid())
	assert.Equal(t, entity.Some("85251"), fields.ZipCode)
	assert.False(t, fields.YearBuiltReno.Valid())
	assert.False(t, fields.Broker.Valid())
	assert.False(t, fields.BrokerEmail.Valid())
	assert.Contains(t, dropped, "noi(unknown)")
	assert.Contains(t, dropped, "broker(type)")
}

func TestCoerce_KeySetIsAlwaysTheSchema(t *testing.T) {
	inputs := []map[string]any{
		{},
		{"extra": 1, "another": "x", "deal_name": "A"},
		nil,
	}
	for _, in := range inputs {
		fields, _ := Coerce(in)
		assert.ElementsMatch(t, constants.AsStringSlice(), keysOf(t, fields))
	}
}

func TestPrepareInput(t *testing.T) {
	in := "See https://example.com/a?b=c and www.foo.com/x for %E2%80%9Cdetails%E2%80%9D. Cap 5%."
	out := PrepareInput(in, 0)
	assert.NotContains(t, out, "http")
	assert.NotContains(t, out, "www.")
	assert.NotContains(t, out, "%E2")
	assert.Contains(t, out, "Cap 5%.")

	long := strings.Repeat("é", 50)
	out = PrepareInput(long, 10)
	assert.Equal(t, strings.Repeat("é", 10)+TruncationMarker, out)
}

func TestBuildExtractionPrompt(t *testing.T) {
	p := BuildExtractionPrompt("SUBJECT: Deal\n\nBody")
	assert.Contains(t, p, "SUBJECT: Deal\n\nBody")
	for _, f := range constants.AllFields() {
		assert.Contains(t, p, `"`+string(f)+`": "`)
		assert.NotEmpty(t, fieldHints[f], f)
	}
}

func TestSchemas(t *testing.T) {
	var d entity.DealFields
	d.City = entity.Some("Austin")
	d.CapRate = entity.Some(6.0)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.NoError(t, ValidateJSONAgainstSchema(BuildDealJSONSchema(), b))

	assert.Error(t, ValidateJSONAgainstSchema(BuildDealJSONSchema(), []byte(`{"city":"Austin"}`)))
	assert.NoError(t, ValidateValue(BuildResponseJSONSchema(), map[string]any{"city": "Austin", "cap_rate": 5.0}))
	assert.Error(t, ValidateValue(BuildResponseJSONSchema(), map[string]any{"unknown": 1.0}))
	assert.Error(t, ValidateValue(BuildResponseJSONSchema(), map[string]any{"city": []any{"a"}}))
}

func TestExtractor_Success(t *testing.T) {
	inf := &fakeInferer{out: "```json\n{\"deal_name\": \"Foo Plaza\", \"pricing_guidance\": \"$31,000,000\", \"cap_rate\": \"5%\", \"city\": \"n/a\", \"bonus\": 1}\n```"}
	e := NewExtractor(inf, ExtractorConfig{MaxInputChars: 100}, nil)

	fields := e.Extract(context.Background(), "SUBJECT: Foo\n\nvisit https://tracker.example/x now")
	assert.Equal(t, entity.Some("Foo Plaza"), fields.DealName)
	assert.Equal(t, entity.Some(31000000.0), fields.PricingGuidance)
	assert.Equal(t, entity.Some(5.0), fields.CapRate)
	assert.False(t, fields.City.Valid())
	assert.ElementsMatch(t, constants.AsStringSlice(), keysOf(t, fields))

	require.Len(t, inf.prompts, 1)
	assert.NotContains(t, inf.prompts[0], "tracker.example")
}

func TestExtractor_RepairsUnclosedBrace(t *testing.T) {
	e := NewExtractor(&fakeInferer{out: `{"deal_name": "Foo"`}, ExtractorConfig{}, nil)
	fields := e.Extract(context.Background(), "doc")
	assert.Equal(t, entity.Some("Foo"), fields.DealName)
	assert.Equal(t, 1, fields.CountPresent(constants.AllFields()))
}

func TestExtractor_FailuresYieldAllAbsent(t *testing.T) {
	cases := map[string]Inferer{
		"timeout":   &fakeInferer{err: common.InferenceError("openai", context.DeadlineExceeded)},
		"error":     &fakeInferer{err: errors.New("boom")},
		"garbage":   &fakeInferer{out: "I cannot help with that."},
		"array":     &fakeInferer{out: `["deal_name"]`},
		"nil":       nil,
		"overclose": &fakeInferer{out: `{"a": 1}}`},
	}
	for name, inf := range cases {
		t.Run(name, func(t *testing.T) {
			e := NewExtractor(inf, ExtractorConfig{}, nil)
			fields := e.Extract(context.Background(), "doc")
			assert.True(t, fields.AllAbsent())
			assert.ElementsMatch(t, constants.AsStringSlice(), keysOf(t, fields))
		})
	}
}
