package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name); got.Name != name {
			t.Fatalf("GetTheme(%s).Name = %q, want %s", name, got.Name, name)
		}
	}
	if got := GetTheme("Unknown"); got.Name != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got.Name)
	}
}

func TestThemesDefinePendingColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		if th.Pending == "" {
			t.Fatalf("theme %s has no Pending color", name)
		}
		if got := hex(parseHex(th.Pending)); got != strings.ToLower(th.Pending) {
			t.Fatalf("theme %s Pending round trip = %q, want %q", name, got, strings.ToLower(th.Pending))
		}
	}
}

func TestThemesKeepPendingDistinct(t *testing.T) {
	seen := map[string]string{}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		p := strings.ToLower(th.Pending)
		for _, chrome := range []string{th.Background, th.Surface, th.Panel} {
			if p == strings.ToLower(chrome) {
				t.Fatalf("theme %s Pending %s matches a chrome color", name, th.Pending)
			}
		}
		if other, ok := seen[p]; ok {
			t.Fatalf("themes %s and %s share Pending %s", other, name, th.Pending)
		}
		seen[p] = name
	}
}

func TestBgStyleRenderKeepsWidth(t *testing.T) {
	bg := NewBgStyle("#192330")
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#cdcecf"))

	tests := []string{"", "fractile", "L 3/120", "two  spaces", " edge "}
	for _, text := range tests {
		if got := lipgloss.Width(bg.Render(text, style)); got != len(text) {
			t.Fatalf("Render(%q) width = %d, want %d", text, got, len(text))
		}
	}
	if got := lipgloss.Width(bg.Spaces(3)); got != 3 {
		t.Fatalf("Spaces(3) width = %d, want 3", got)
	}
	if got := lipgloss.Width(bg.FillLine("ab", 10)); got != 10 {
		t.Fatalf("FillLine width = %d, want 10", got)
	}
}
