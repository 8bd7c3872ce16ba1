// Package repl implements the interactive terminal chat loop.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/agent"
	"github.com/fwojciec/toolchat/goldmark"
	tcjson "github.com/fwojciec/toolchat/json"
)

// DefaultSavePath is where /save writes the session when no path is given.
const DefaultSavePath = "toolchat-session.json"

// Chatter is the conversation the REPL drives. *agent.Agent implements it.
type Chatter interface {
	Chat(ctx context.Context, text string) (string, error)
	ChatStream(ctx context.Context, text string) iter.Seq2[string, error]
	ClearHistory() error
	Tools() []string
	Session() toolchat.Session
}

var _ Chatter = (*agent.Agent)(nil)

// Option configures a [REPL].
type Option func(*REPL)

// WithTheme sets the color theme.
func WithTheme(t toolchat.Theme) Option {
	return func(r *REPL) { r.theme = t }
}

// WithStreaming sets whether answers stream as they arrive. Default true.
func WithStreaming(on bool) Option {
	return func(r *REPL) { r.stream = on }
}

// WithWidth sets the wrap width for rendered answers. Default 80.
func WithWidth(w int) Option {
	return func(r *REPL) { r.width = w }
}

// WithSavePath sets the default /save destination.
func WithSavePath(path string) Option {
	return func(r *REPL) { r.savePath = path }
}

// REPL reads user lines, runs them through a Chatter and prints answers.
type REPL struct {
	chat     Chatter
	in       io.Reader
	out      io.Writer
	theme    toolchat.Theme
	stream   bool
	width    int
	savePath string

	prompt, agentLabel, tool, errStyle, success, muted, banner lipgloss.Style
}

// New returns a REPL reading from in and writing to out.
func New(chat Chatter, in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{
		chat:     chat,
		in:       in,
		out:      out,
		theme:    toolchat.DefaultTheme(),
		stream:   true,
		width:    80,
		savePath: DefaultSavePath,
	}
	for _, o := range opts {
		o(r)
	}
	lr := lipgloss.NewRenderer(out)
	color := func(i int) lipgloss.TerminalColor { return lipgloss.Color(strconv.Itoa(i)) }
	r.prompt = lr.NewStyle().Foreground(color(r.theme.Prompt)).Bold(true)
	r.agentLabel = lr.NewStyle().Foreground(color(r.theme.Agent)).Bold(true)
	r.tool = lr.NewStyle().Foreground(color(r.theme.ToolCall))
	r.errStyle = lr.NewStyle().Foreground(color(r.theme.Error))
	r.success = lr.NewStyle().Foreground(color(r.theme.Success))
	r.muted = lr.NewStyle().Foreground(color(r.theme.Muted))
	r.banner = lr.NewStyle().Foreground(color(r.theme.Accent)).Bold(true).
		Border(lipgloss.RoundedBorder()).Padding(0, 2)
	return r
}

// Run loops until /exit, end of input or ctx cancellation. Chat failures are
// printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	r.printBanner()
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if ctx.Err() != nil {
			r.println(r.muted.Render("Interrupted. Goodbye!"))
			return nil
		}
		r.print(r.prompt.Render("You: "))
		if !scanner.Scan() {
			r.println("")
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if done := r.command(line); done {
				return nil
			}
			continue
		}
		r.ask(ctx, line)
	}
}

func (r *REPL) command(line string) (exit bool) {
	name, arg, _ := strings.Cut(line, " ")
	switch strings.ToLower(name) {
	case "/exit", "/quit":
		r.println(r.muted.Render("Goodbye!"))
		return true
	case "/help":
		r.printHelp()
	case "/tools":
		r.println("Available tools:")
		for _, t := range r.chat.Tools() {
			r.println("  • " + t)
		}
		r.println("")
	case "/clear":
		if err := r.chat.ClearHistory(); err != nil {
			r.printError(err)
			return false
		}
		r.println(r.success.Render("✓ History cleared") + "\n")
	case "/stream":
		r.stream = !r.stream
		state := "off"
		if r.stream {
			state = "on"
		}
		r.println(r.success.Render("✓ Streaming "+state) + "\n")
	case "/save":
		path := strings.TrimSpace(arg)
		if path == "" {
			path = r.savePath
		}
		if err := tcjson.Save(path, r.chat.Session()); err != nil {
			r.printError(err)
			return false
		}
		r.println(r.success.Render("✓ Session saved to "+path) + "\n")
	default:
		r.println(r.errStyle.Render(fmt.Sprintf("Unknown command %s. Type /help for the list.", name)) + "\n")
	}
	return false
}

func (r *REPL) ask(ctx context.Context, text string) {
	r.print("\n" + r.agentLabel.Render("Agent:") + " ")
	if !r.stream {
		reply, err := r.chat.Chat(ctx, text)
		if err != nil {
			r.printError(err)
			return
		}
		r.println(goldmark.Render(reply, r.width, r.theme) + "\n")
		return
	}
	for chunk, err := range r.chat.ChatStream(ctx, text) {
		if err != nil {
			r.println("")
			r.printError(err)
			return
		}
		switch chunk {
		case agent.ToolMarker, agent.LimitMarker:
			// Styled one line at a time; lipgloss pads multi-line strings.
			r.print("\n" + r.tool.Render(strings.Trim(chunk, "\n")) + "\n")
		default:
			r.print(chunk)
		}
	}
	r.println("\n")
}

func (r *REPL) printBanner() {
	r.println(r.banner.Render("toolchat\nan assistant that can use tools"))
	r.println(r.muted.Render("Tools: " + strings.Join(r.chat.Tools(), ", ")))
	r.println(r.muted.Render("Type /help for commands.") + "\n")
}

func (r *REPL) printHelp() {
	r.println(`Commands:
  /help          show this message
  /tools         list available tools
  /clear         clear the conversation history
  /stream        toggle streaming answers
  /save [path]   save the session as JSON
  /exit          quit

Try asking:
  • "What is 15% of 250?"
  • "What's the weather in Rome?"
  • "What day is it today?"
  • "Save a note: buy milk"
  • "Read this page: https://example.com"
`)
}

func (r *REPL) printError(err error) {
	r.println(r.errStyle.Render("Error: "+err.Error()) + "\n")
}

func (r *REPL) print(s string) {
	fmt.Fprint(r.out, s)
}

func (r *REPL) println(s string) {
	fmt.Fprintln(r.out, s)
}
