package calc_test

import (
	"testing"

	"github.com/fwojciec/toolchat/calc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 2", 4},
		{"100 * 0.15", 15},
		{"2 ** 10", 1024},
		{"2 ^ 3", 8},
		{"2 ** 3 ** 2", 512},
		{"-2 ** 2", -4},
		{"(-2) ** 2", 4},
		{"2 ** -1", 0.5},
		{"7 // 2", 3},
		{"-7 // 2", -4},
		{"7 % 3", 1},
		{"-7 % 3", 2},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 4", 2.5},
		{"sqrt(16)", 4},
		{"sin(pi / 2)", 1},
		{"abs(-3.5)", 3.5},
		{"round(2.5)", 2},
		{"round(3.14159, 2)", 3.14},
		{"min(3, 1, 2)", 1},
		{"max(3, 1, 2)", 3},
		{"sum(1, 2, 3, 4)", 10},
		{"pow(2, 8)", 256},
		{"log(e)", 1},
		{"log(8, 2)", 3},
		{"log10(1000)", 3},
		{"exp(0)", 1},
		{"floor(-1.5)", -2},
		{"ceil(1.2)", 2},
		{"1e3 + 1_000", 2000},
		{"+5", 5},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			got, err := calc.Eval(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr string
		want error
	}{
		{"", calc.ErrSyntax},
		{"2 +", calc.ErrSyntax},
		{"(1 + 2", calc.ErrSyntax},
		{"1 + 2)", calc.ErrSyntax},
		{"2 $ 3", calc.ErrSyntax},
		{"foo", calc.ErrSyntax},
		{"bar(1)", calc.ErrSyntax},
		{"sqrt(1, 2)", calc.ErrSyntax},
		{"__import__('os')", calc.ErrSyntax},
		{"1.2.3", calc.ErrSyntax},
		{"1 / 0", calc.ErrDomain},
		{"1 // 0", calc.ErrDomain},
		{"1 % 0", calc.ErrDomain},
		{"sqrt(-1)", calc.ErrDomain},
		{"log(0)", calc.ErrDomain},
		{"0 ** -1", calc.ErrDomain},
		{"(-8) ** 0.5", calc.ErrDomain},
		{"10 ** 400", calc.ErrDomain},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			_, err := calc.Eval(tt.expr)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFunctions(t *testing.T) {
	t.Parallel()
	names := calc.Functions()
	assert.Contains(t, names, "sqrt")
	assert.Contains(t, names, "log10")
	assert.Len(t, names, 15)
}
