// Package gemini implements [toolchat.Gateway] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between toolchat's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [toolchat.Stream] interface.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 8192
)
