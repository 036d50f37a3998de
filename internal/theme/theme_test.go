package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestDefaultThemeColors(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	th := DefaultTheme()
	if out := th.Error.Render("x"); out == "x" {
		t.Fatalf("expected colored output")
	}
	if th.Frame.GetBorderStyle() != lipgloss.RoundedBorder() {
		t.Fatalf("frame should use a rounded border")
	}
}

func TestPlainRendersVerbatim(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	th := Plain()
	if out := th.Question.Render("Project?"); out != "Project?" {
		t.Fatalf("plain output = %q", out)
	}
}
