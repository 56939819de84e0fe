package report

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// RenderTerminal 在终端中渲染 Markdown 报告
func RenderTerminal(markdown []byte, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	return r.Render(string(markdown))
}
