package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Listen exports the bridge's listen command for testing.
func Listen(b *Bridge) tea.Cmd {
	return b.listen()
}
