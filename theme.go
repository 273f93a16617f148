package coursechat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg    int // User question accent
	Assistant  int // Assistant label
	Irrelevant int // Off-topic badge and border
	Error      int // Error messages
	Success    int // Correct quiz answers
	Muted      int // Status bar, placeholders
	CodeBg     int // Code block background
	Accent     int // Headings, selected quiz option
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:    4,
		Assistant:  6,
		Irrelevant: 3,
		Error:      1,
		Success:    2,
		Muted:      8,
		CodeBg:     0,
		Accent:     5,
	}
}
