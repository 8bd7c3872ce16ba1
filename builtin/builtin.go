// Package builtin provides the tools offered to the model by default.
//
// Every tool returns a JSON payload carrying a "success" flag. Failures,
// including bad arguments and unreachable services, are reported in the
// payload and never as Go errors.
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/httpclient"
)

// Deps carries what the tools need from the outside world. Zero values get
// working defaults, except Notes: without a store manage_notes reports an
// error on every call.
type Deps struct {
	HTTPClient       *http.Client
	Notes            toolchat.NoteStore
	WeatherAPIKey    string
	WeatherBaseURL   string
	TranslateBaseURL string
	Now              func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.HTTPClient == nil {
		d.HTTPClient = httpclient.New(httpclient.WithTimeout(15 * time.Second))
	}
	if d.WeatherBaseURL == "" {
		d.WeatherBaseURL = defaultWeatherBaseURL
	}
	if d.TranslateBaseURL == "" {
		d.TranslateBaseURL = defaultTranslateBaseURL
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Defaults returns calculator, get_weather, read_webpage, get_datetime and
// manage_notes, in that order.
func Defaults(d Deps) []toolchat.Tool {
	d = d.withDefaults()
	return []toolchat.Tool{
		Calculator(),
		Weather(d),
		Webpage(d),
		DateTime(d),
		Notes(d),
	}
}

// Extras returns translate_text, generate_password, convert_units and
// analyze_text, in that order.
func Extras(d Deps) []toolchat.Tool {
	d = d.withDefaults()
	return []toolchat.Tool{
		Translate(d),
		Password(),
		Units(),
		TextAnalysis(),
	}
}

// tool adapts a plain function to [toolchat.Tool].
type tool struct {
	name        string
	description string
	schema      toolchat.Schema
	run         func(ctx context.Context, args json.RawMessage) string
}

// Interface compliance check.
var _ toolchat.Tool = (*tool)(nil)

func (t *tool) Name() string            { return t.name }
func (t *tool) Description() string     { return t.description }
func (t *tool) Schema() toolchat.Schema { return t.schema }

func (t *tool) Execute(ctx context.Context, args json.RawMessage) string {
	return t.run(ctx, args)
}

// fields is the body of a tool payload.
type fields map[string]any

// ok renders a successful payload.
func ok(f fields) string {
	if f == nil {
		f = fields{}
	}
	f["success"] = true
	return render(f)
}

// fail renders a failed payload with optional extra fields.
func fail(msg string, extra fields) string {
	if extra == nil {
		return toolchat.ErrorPayload(msg)
	}
	extra["success"] = false
	extra["error"] = msg
	return render(extra)
}

func render(f fields) string {
	data, err := json.Marshal(f)
	if err != nil {
		return toolchat.ErrorPayload(fmt.Sprintf("encode result: %s", err))
	}
	return string(data)
}

// decode unmarshals tool arguments. Missing arguments decode as {}.
func decode(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %s", err)
	}
	return nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
