package builtin

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/fwojciec/toolchat"
)

const (
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
	symbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	passwordMin     = 8
	passwordMax     = 128
	passwordDefault = 16
)

// Password returns the generate_password tool.
func Password() toolchat.Tool {
	return &tool{
		name:        "generate_password",
		description: "Generates a secure random password. Use it when the user asks for a new password.",
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"length":          {Type: "integer", Description: "Password length, between 8 and 128 (default 16)", Default: passwordDefault},
			"include_symbols": {Type: "boolean", Description: "Include symbols such as !@#$", Default: true},
			"include_numbers": {Type: "boolean", Description: "Include digits", Default: true},
		}),
		run: runPassword,
	}
}

func runPassword(_ context.Context, args json.RawMessage) string {
	var a struct {
		Length         *int  `json:"length"`
		IncludeSymbols *bool `json:"include_symbols"`
		IncludeNumbers *bool `json:"include_numbers"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}
	length := passwordDefault
	if a.Length != nil {
		length = min(max(*a.Length, passwordMin), passwordMax)
	}
	withSymbols := a.IncludeSymbols == nil || *a.IncludeSymbols
	withNumbers := a.IncludeNumbers == nil || *a.IncludeNumbers

	charset := letters
	if withNumbers {
		charset += digits
	}
	if withSymbols {
		charset += symbols
	}

	var b strings.Builder
	limit := big.NewInt(int64(len(charset)))
	for range length {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return fail("random source unavailable: "+err.Error(), nil)
		}
		b.WriteByte(charset[n.Int64()])
	}

	return ok(fields{
		"password":         b.String(),
		"length":           length,
		"strength":         strength(length, withSymbols, withNumbers),
		"includes_symbols": withSymbols,
		"includes_numbers": withNumbers,
	})
}

func strength(length int, withSymbols, withNumbers bool) string {
	switch {
	case length >= 12 && withNumbers && withSymbols:
		return "strong"
	case length >= 10:
		return "medium"
	default:
		return "weak"
	}
}
