package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/fwojciec/toolchat"
)

const defaultTranslateBaseURL = "https://api.mymemory.translated.net"

var translateLangs = []string{"it", "en", "es", "fr", "de"}

// Translate returns the translate_text tool, backed by the MyMemory API.
func Translate(d Deps) toolchat.Tool {
	d = d.withDefaults()
	return &tool{
		name:        "translate_text",
		description: "Translates text between Italian, English, Spanish, French and German. Use it when the user asks for a translation.",
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"text":        {Type: "string", Description: "The text to translate"},
			"source_lang": {Type: "string", Enum: append(slices.Clone(translateLangs), "auto"), Description: "Source language, 'auto' to assume English"},
			"target_lang": {Type: "string", Enum: translateLangs, Description: "Target language"},
		}, "text", "target_lang"),
		run: func(ctx context.Context, args json.RawMessage) string {
			return runTranslate(ctx, d, args)
		},
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	// responseStatus is a number on success and sometimes a string on error.
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
}

func runTranslate(ctx context.Context, d Deps, args json.RawMessage) string {
	var a struct {
		Text       string `json:"text"`
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}
	if a.Text == "" {
		return fail("text is required", nil)
	}
	if a.SourceLang == "" {
		a.SourceLang = "auto"
	}
	if a.TargetLang == "" {
		a.TargetLang = "en"
	}
	if !slices.Contains(translateLangs, a.TargetLang) {
		return fail(fmt.Sprintf("unsupported target language %q", a.TargetLang), nil)
	}
	source := a.SourceLang
	if source == "auto" {
		source = "en"
	} else if !slices.Contains(translateLangs, source) {
		return fail(fmt.Sprintf("unsupported source language %q", a.SourceLang), nil)
	}

	q := url.Values{"q": {a.Text}, "langpair": {source + "|" + a.TargetLang}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.TranslateBaseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return fail(err.Error(), nil)
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fail(fmt.Sprintf("translation request failed: %s", err), nil)
	}
	defer resp.Body.Close()

	var r myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fail(fmt.Sprintf("translation response (HTTP %d): %s", resp.StatusCode, err), nil)
	}
	if strings.Trim(string(r.ResponseStatus), `"`) != "200" {
		msg := "translation failed"
		if r.ResponseDetails != "" {
			msg += ": " + r.ResponseDetails
		}
		return fail(msg, nil)
	}
	return ok(fields{
		"original":    a.Text,
		"translated":  r.ResponseData.TranslatedText,
		"source_lang": a.SourceLang,
		"target_lang": a.TargetLang,
	})
}
