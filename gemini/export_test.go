package gemini

import (
	"context"
	"iter"

	"github.com/fwojciec/toolchat"
	"google.golang.org/genai"
)

// NewStreamFromIter exposes the stream adapter to tests.
func NewStreamFromIter(ctx context.Context, it iter.Seq2[*genai.GenerateContentResponse, error]) toolchat.Stream {
	return newStream(ctx, it)
}
