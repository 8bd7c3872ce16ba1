package builtin

import (
	"context"
	"encoding/json"
	"math"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/calc"
)

// Calculator returns the calculator tool.
func Calculator() toolchat.Tool {
	return &tool{
		name: "calculator",
		description: `Evaluates a mathematical expression. Use it for arithmetic, percentages, powers, roots and trigonometry.
Examples: "2 + 2", "sqrt(16)", "sin(pi / 2)", "100 * 0.15", "2 ** 10".`,
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"expression": {
				Type:        "string",
				Description: "The expression to evaluate. Supports + - * / // % **, parentheses, pi, e and the functions abs round min max sum pow sqrt sin cos tan log log10 exp floor ceil.",
			},
		}, "expression"),
		run: runCalculator,
	}
}

func runCalculator(_ context.Context, args json.RawMessage) string {
	var a struct {
		Expression string `json:"expression"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}
	if a.Expression == "" {
		return fail("expression is required", nil)
	}
	v, err := calc.Eval(a.Expression)
	if err != nil {
		return fail(err.Error(), fields{"expression": a.Expression})
	}
	return ok(fields{"expression": a.Expression, "result": number(v)})
}

// number returns integral values as int64 so they render without a
// fractional part.
func number(v float64) any {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return int64(v)
	}
	return v
}
