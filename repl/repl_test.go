package repl_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/agent"
	tcjson "github.com/fwojciec/toolchat/json"
	"github.com/fwojciec/toolchat/repl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

type fakeChatter struct {
	ChatFn         func(ctx context.Context, text string) (string, error)
	ChatStreamFn   func(ctx context.Context, text string) iter.Seq2[string, error]
	ClearHistoryFn func() error
	session        toolchat.Session
	asked          []string
}

func (f *fakeChatter) Chat(ctx context.Context, text string) (string, error) {
	f.asked = append(f.asked, text)
	return f.ChatFn(ctx, text)
}

func (f *fakeChatter) ChatStream(ctx context.Context, text string) iter.Seq2[string, error] {
	f.asked = append(f.asked, text)
	return f.ChatStreamFn(ctx, text)
}

func (f *fakeChatter) ClearHistory() error {
	if f.ClearHistoryFn == nil {
		return nil
	}
	return f.ClearHistoryFn()
}

func (f *fakeChatter) Tools() []string { return []string{"calculator", "get_weather"} }

func (f *fakeChatter) Session() toolchat.Session { return f.session }

func chunks(parts ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func failing(err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) { yield("", err) }
}

func run(t *testing.T, chat repl.Chatter, input string, opts ...repl.Option) string {
	t.Helper()
	var out bytes.Buffer
	r := repl.New(chat, strings.NewReader(input), &out, opts...)
	require.NoError(t, r.Run(context.Background()))
	return out.String()
}

func TestREPL_StreamsAnswer(t *testing.T) {
	t.Parallel()
	f := &fakeChatter{ChatStreamFn: func(context.Context, string) iter.Seq2[string, error] {
		return chunks("Let me ", agent.ToolMarker, "It is 42.")
	}}

	out := ansi.ReplaceAllString(run(t, f, "what is 6*7?\n"), "")

	assert.Equal(t, []string{"what is 6*7?"}, f.asked)
	assert.Contains(t, out, "Agent: Let me "+agent.ToolMarker+"It is 42.")
}

func TestREPL_MarkersKeepLayout(t *testing.T) {
	t.Parallel()
	f := &fakeChatter{ChatStreamFn: func(context.Context, string) iter.Seq2[string, error] {
		return chunks("Checking", agent.ToolMarker, "still going", agent.LimitMarker)
	}}

	out := ansi.ReplaceAllString(run(t, f, "loop forever\n"), "")

	assert.Contains(t, out, "Checking\n🛠️ Running tools...\nstill going\n[tool round limit reached]\n")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Running tools") || strings.Contains(line, "round limit") {
			assert.Equal(t, strings.TrimSpace(line), line)
		}
	}
}

func TestREPL_BlockingRendersMarkdown(t *testing.T) {
	t.Parallel()
	f := &fakeChatter{ChatFn: func(context.Context, string) (string, error) {
		return "The answer is **113**.", nil
	}}

	out := ansi.ReplaceAllString(run(t, f, "compute\n", repl.WithStreaming(false)), "")

	assert.Contains(t, out, "The answer is 113.")
	assert.NotContains(t, out, "**")
}

func TestREPL_ErrorDoesNotEndLoop(t *testing.T) {
	t.Parallel()
	calls := 0
	f := &fakeChatter{ChatStreamFn: func(context.Context, string) iter.Seq2[string, error] {
		calls++
		if calls == 1 {
			return failing(errors.New("upstream down"))
		}
		return chunks("fine now")
	}}

	out := run(t, f, "first\nsecond\n")

	assert.Contains(t, out, "Error: upstream down")
	assert.Contains(t, out, "fine now")
	assert.Len(t, f.asked, 2)
}

func TestREPL_SkipsBlankLines(t *testing.T) {
	t.Parallel()
	f := &fakeChatter{ChatStreamFn: func(context.Context, string) iter.Seq2[string, error] {
		return chunks("ok")
	}}

	run(t, f, "\n   \nhello\n")

	assert.Equal(t, []string{"hello"}, f.asked)
}

func TestREPL_Commands(t *testing.T) {
	t.Parallel()

	t.Run("tools", func(t *testing.T) {
		t.Parallel()
		out := run(t, &fakeChatter{}, "/tools\n")
		assert.Contains(t, out, "• calculator")
		assert.Contains(t, out, "• get_weather")
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		out := run(t, &fakeChatter{}, "/help\n")
		assert.Contains(t, out, "/stream")
		assert.Contains(t, out, "Try asking:")
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()
		cleared := false
		f := &fakeChatter{ClearHistoryFn: func() error { cleared = true; return nil }}
		out := run(t, f, "/clear\n")
		assert.True(t, cleared)
		assert.Contains(t, out, "History cleared")
	})

	t.Run("clear while busy", func(t *testing.T) {
		t.Parallel()
		f := &fakeChatter{ClearHistoryFn: func() error { return toolchat.ErrBusy }}
		out := run(t, f, "/clear\n")
		assert.Contains(t, out, "Error: "+toolchat.ErrBusy.Error())
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		out := run(t, &fakeChatter{}, "/nope\n")
		assert.Contains(t, out, "Unknown command /nope")
	})

	t.Run("exit stops reading", func(t *testing.T) {
		t.Parallel()
		f := &fakeChatter{}
		out := run(t, f, "/exit\nnever asked\n")
		assert.Contains(t, out, "Goodbye!")
		assert.Empty(t, f.asked)
	})
}

func TestREPL_StreamToggle(t *testing.T) {
	t.Parallel()
	f := &fakeChatter{
		ChatFn: func(context.Context, string) (string, error) { return "blocking", nil },
		ChatStreamFn: func(context.Context, string) iter.Seq2[string, error] {
			return chunks("streamed")
		},
	}

	out := run(t, f, "a\n/stream\nb\n/stream\nc\n")

	assert.Contains(t, out, "Streaming off")
	assert.Contains(t, out, "Streaming on")
	assert.Equal(t, 2, strings.Count(out, "streamed"))
	assert.Equal(t, 1, strings.Count(out, "blocking"))
}

func TestREPL_Save(t *testing.T) {
	t.Parallel()
	session := toolchat.NewSession("be brief")
	session.Messages = []toolchat.Message{
		toolchat.NewUserMessage("hi"),
		toolchat.AssistantMessage{Content: []toolchat.ContentBlock{toolchat.TextBlock{Text: "hello"}}, StopReason: toolchat.StopEndTurn},
	}
	f := &fakeChatter{session: session}
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.json")
	fallback := filepath.Join(dir, "default.json")

	out := run(t, f, "/save "+explicit+"\n/save\n", repl.WithSavePath(fallback))

	assert.Contains(t, out, "Session saved to "+explicit)
	assert.Contains(t, out, "Session saved to "+fallback)
	for _, path := range []string{explicit, fallback} {
		got, err := tcjson.Load(path)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Len(t, got.Messages, 2)
	}
}

func TestREPL_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	f := &fakeChatter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	err := repl.New(f, strings.NewReader("hello\n"), &out).Run(ctx)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Interrupted")
	assert.Empty(t, f.asked)
}

func TestREPL_BannerListsTools(t *testing.T) {
	t.Parallel()
	out := run(t, &fakeChatter{}, "")
	assert.Contains(t, out, "Tools: calculator, get_weather")
}
