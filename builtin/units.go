package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/toolchat"
)

type unit struct {
	dimension string
	factor    float64 // to the dimension's base unit
}

// Base units: metre, kilogram, litre.
var units = map[string]unit{
	"m": {"length", 1}, "km": {"length", 1000}, "cm": {"length", 0.01}, "mm": {"length", 0.001},
	"mi": {"length", 1609.34}, "miles": {"length", 1609.34}, "ft": {"length", 0.3048}, "in": {"length", 0.0254},

	"kg": {"weight", 1}, "g": {"weight", 0.001}, "mg": {"weight", 0.000001},
	"lb": {"weight", 0.453592}, "lbs": {"weight", 0.453592}, "pounds": {"weight", 0.453592}, "oz": {"weight", 0.0283495},

	"l": {"volume", 1}, "ml": {"volume", 0.001}, "gal": {"volume", 3.78541}, "gallon": {"volume", 3.78541},
}

var temperatureUnits = map[string]string{
	"c": "c", "celsius": "c",
	"f": "f", "fahrenheit": "f",
	"k": "k", "kelvin": "k",
}

// Units returns the convert_units tool.
func Units() toolchat.Tool {
	return &tool{
		name:        "convert_units",
		description: "Converts between units of length, weight, volume and temperature.",
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"value":     {Type: "number", Description: "Value to convert"},
			"from_unit": {Type: "string", Description: "Source unit, e.g. km, kg, celsius"},
			"to_unit":   {Type: "string", Description: "Target unit, e.g. miles, pounds, fahrenheit"},
		}, "value", "from_unit", "to_unit"),
		run: runUnits,
	}
}

func runUnits(_ context.Context, args json.RawMessage) string {
	var a struct {
		Value    float64 `json:"value"`
		FromUnit string  `json:"from_unit"`
		ToUnit   string  `json:"to_unit"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}
	from := strings.ToLower(strings.TrimSpace(a.FromUnit))
	to := strings.ToLower(strings.TrimSpace(a.ToUnit))
	original := strconv.FormatFloat(a.Value, 'f', -1, 64) + " " + a.FromUnit

	tf, fromTemp := temperatureUnits[from]
	tt, toTemp := temperatureUnits[to]
	if fromTemp || toTemp {
		if !fromTemp || !toTemp {
			return fail(fmt.Sprintf("cannot convert %s to %s", a.FromUnit, a.ToUnit), nil)
		}
		v := fromCelsius(toCelsius(a.Value, tf), tt)
		return ok(fields{
			"original":  original,
			"converted": fmt.Sprintf("%.2f %s", v, a.ToUnit),
			"value":     round(v, 4),
		})
	}

	uf, okFrom := units[from]
	ut, okTo := units[to]
	if !okFrom || !okTo {
		return fail(fmt.Sprintf("unsupported unit: %s or %s", a.FromUnit, a.ToUnit), fields{"supported": supportedUnits()})
	}
	if uf.dimension != ut.dimension {
		return fail(fmt.Sprintf("cannot convert %s (%s) to %s (%s)", a.FromUnit, uf.dimension, a.ToUnit, ut.dimension), nil)
	}
	v := a.Value * uf.factor / ut.factor
	return ok(fields{
		"original":  original,
		"converted": fmt.Sprintf("%.4f %s", v, a.ToUnit),
		"value":     round(v, 6),
	})
}

func toCelsius(v float64, scale string) float64 {
	switch scale {
	case "f":
		return (v - 32) * 5 / 9
	case "k":
		return v - 273.15
	default:
		return v
	}
}

func fromCelsius(v float64, scale string) float64 {
	switch scale {
	case "f":
		return v*9/5 + 32
	case "k":
		return v + 273.15
	default:
		return v
	}
}

func supportedUnits() []string {
	names := make([]string, 0, len(units)+len(temperatureUnits))
	for n := range units {
		names = append(names, n)
	}
	for n := range temperatureUnits {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
