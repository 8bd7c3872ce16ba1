package builtin

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/toolchat"
)

const wordsPerMinute = 200

// TextAnalysis returns the analyze_text tool.
func TextAnalysis() toolchat.Tool {
	return &tool{
		name:        "analyze_text",
		description: "Analyzes a text: counts characters, words, sentences and paragraphs, estimates reading time and lists the most frequent words.",
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"text": {Type: "string", Description: "The text to analyze"},
		}, "text"),
		run: runTextAnalysis,
	}
}

type wordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func runTextAnalysis(_ context.Context, args json.RawMessage) string {
	var a struct {
		Text string `json:"text"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}
	if a.Text == "" {
		return fail("text is empty", nil)
	}

	chars := utf8.RuneCountInString(a.Text)
	noSpaces := utf8.RuneCountInString(strings.ReplaceAll(a.Text, " ", ""))
	words := strings.Fields(a.Text)
	sentences := strings.Count(a.Text, ".") + strings.Count(a.Text, "!") + strings.Count(a.Text, "?")
	paragraphs := 0
	for _, p := range strings.Split(a.Text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}

	return ok(fields{
		"characters":           chars,
		"characters_no_spaces": noSpaces,
		"words":                len(words),
		"sentences":            sentences,
		"paragraphs":           paragraphs,
		"reading_time_minutes": round(float64(len(words))/wordsPerMinute, 1),
		"avg_word_length":      round(float64(noSpaces)/float64(max(len(words), 1)), 1),
		"top_words":            topWords(words, 5),
	})
}

// topWords returns the n most frequent words longer than three letters,
// lowercased and stripped of punctuation. Ties keep first-seen order.
func topWords(words []string, n int) []wordCount {
	index := make(map[string]int)
	var counts []wordCount
	for _, w := range words {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, w)
		if utf8.RuneCountInString(clean) <= 3 {
			continue
		}
		if i, ok := index[clean]; ok {
			counts[i].Count++
			continue
		}
		index[clean] = len(counts)
		counts = append(counts, wordCount{Word: clean, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		counts = []wordCount{}
	}
	return counts
}
