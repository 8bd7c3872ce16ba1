package toolchat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the REPL
// automatically matches any color scheme.
type Theme struct {
	Prompt   int // "You:" prompt
	Agent    int // "Agent:" label
	ToolCall int // tool round marker
	Error    int // Error messages
	Success  int // Success indicators
	Muted    int // help text, hints
	CodeBg   int // Code block background
	Accent   int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Prompt:   4,
		Agent:    2,
		ToolCall: 3,
		Error:    1,
		Success:  2,
		Muted:    8,
		CodeBg:   0,
		Accent:   5,
	}
}
