package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/toolchat"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	webpageMaxChars  = 8000
	webpageMaxBytes  = 5 << 20
	webpageUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	truncatedSuffix  = "\n\n[... content truncated ...]"
)

// Webpage returns the read_webpage tool.
func Webpage(d Deps) toolchat.Tool {
	d = d.withDefaults()
	return &tool{
		name:        "read_webpage",
		description: "Reads a web page and returns its title and visible text. Use it to summarize an article or answer questions about a specific URL.",
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"url": {Type: "string", Description: "Full URL of the page, starting with http:// or https://"},
		}, "url"),
		run: func(ctx context.Context, args json.RawMessage) string {
			return runWebpage(ctx, d, args)
		},
	}
}

func runWebpage(ctx context.Context, d Deps, args json.RawMessage) string {
	var a struct {
		URL string `json:"url"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}
	u, err := url.Parse(a.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fail("url must be an absolute http or https URL", fields{"url": a.URL})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fail(err.Error(), fields{"url": a.URL})
	}
	req.Header.Set("User-Agent", webpageUserAgent)
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fail(err.Error(), fields{"url": a.URL})
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(fmt.Sprintf("HTTP %d", resp.StatusCode), fields{"url": a.URL})
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, webpageMaxBytes))
	if err != nil {
		return fail(fmt.Sprintf("parse HTML: %s", err), fields{"url": a.URL})
	}
	title, text := ExtractText(doc)
	if title == "" {
		title = "No title"
	}
	text = truncate(text, webpageMaxChars)
	return ok(fields{
		"url":            a.URL,
		"title":          title,
		"content":        text,
		"content_length": utf8.RuneCountInString(text),
	})
}

// skipped elements carry no readable page content.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Header:   true,
}

// ExtractText returns the document title and its visible text, one trimmed
// text node per line. Script, style, nav, footer and header subtrees are
// dropped.
func ExtractText(doc *html.Node) (title, text string) {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.DataAtom == atom.Title {
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
			if skipped[n.DataAtom] {
				return
			}
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				lines = append(lines, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, strings.Join(lines, "\n")
}

// truncate cuts s to n runes and marks the cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + truncatedSuffix
}
