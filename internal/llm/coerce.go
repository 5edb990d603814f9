package llm

import (
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// placeholders the model uses instead of null
var nullish = map[string]struct{}{
	"":              {},
	"null":          {},
	"none":          {},
	"n/a":           {},
	"not available": {},
}

var numericPunct = strings.NewReplacer("$", "", ",", "", "%", "")

// Coerce maps a parsed model object onto DealFields. Every declared field is
// read; unknown keys are dropped, values of the wrong shape become absent.
// The returned notes list what was dropped and why.
func Coerce(obj map[string]any) (entity.DealFields, []string) {
	var (
		out     entity.DealFields
		dropped []string
	)

	for _, f := range constants.AllFields() {
		v, ok := obj[string(f)]
		if !ok || v == nil {
			continue
		}
		switch f.Kind() {
		case constants.KindString:
			s, note := coerceString(v)
			if note != "" {
				dropped = append(dropped, string(f)+"("+note+")")
			}
			out.SetString(f, s)
		case constants.KindNumber:
			n, note := coerceNumber(v)
			if note != "" {
				dropped = append(dropped, string(f)+"("+note+")")
			}
			out.SetNumber(f, n)
		}
	}

	known := make(map[string]struct{}, len(obj))
	for _, f := range constants.AllFields() {
		known[string(f)] = struct{}{}
	}
	for k := range obj {
		if _, ok := known[k]; !ok {
			dropped = append(dropped, k+"(unknown)")
		}
	}
	return out, dropped
}

func coerceString(v any) (entity.Optional[string], string) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if _, isNull := nullish[strings.ToLower(s)]; isNull {
			return entity.None[string](), ""
		}
		return entity.Some(s), ""
	case float64:
		return entity.Some(strconv.FormatFloat(t, 'f', -1, 64)), ""
	default:
		return entity.None[string](), "type"
	}
}

func coerceNumber(v any) (entity.Optional[float64], string) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return entity.None[float64](), "non-finite"
		}
		return entity.Some(t), ""
	case string:
		s := strings.TrimSpace(numericPunct.Replace(strings.TrimSpace(t)))
		if _, isNull := nullish[strings.ToLower(s)]; isNull {
			return entity.None[float64](), ""
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return entity.None[float64](), "unparsable"
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return entity.None[float64](), "non-finite"
		}
		return entity.Some(f), ""
	default:
		return entity.None[float64](), "type"
	}
}
