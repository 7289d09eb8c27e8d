package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
)

func TestIconSetCloneCreatesIndependentCopy(t *testing.T) {
	source := IconSet{"folder": "📁"}
	clone := source.clone()

	source["folder"] = "mutated"

	if got, want := clone["folder"], "📁"; got != want {
		t.Errorf("IconSet.clone(%v)[%q] = %q, want %q", source, "folder", got, want)
	}
}

func TestThemeIconLookupOrder(t *testing.T) {
	theme := Theme{
		icons:    IconSet{"primary": "icon"},
		fallback: IconSet{"fallback": "fallback-icon"},
	}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "primary", key: "primary", want: "icon"},
		{name: "fallback", key: "fallback", want: "fallback-icon"},
		{name: "missing", key: "missing", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := theme.Icon(tc.key); got != tc.want {
				t.Errorf("Theme.Icon(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestNewAppliesCustomOptions(t *testing.T) {
	customColors := Colors{
		Primary:    lipgloss.Color("#111111"),
		Accent:     lipgloss.Color("#333333"),
		Background: lipgloss.Color("#444444"),
		Muted:      lipgloss.Color("#555555"),
		Success:    lipgloss.Color("#666666"),
		Warning:    lipgloss.Color("#777777"),
		Error:      lipgloss.Color("#888888"),
	}
	theme := New(WithColors(customColors), WithIconSet(IconSet{"arrow": "=>"}))

	if diff := cmp.Diff(customColors, theme.Colors()); diff != "" {
		t.Errorf("Colors() mismatch (-want +got):\n%s", diff)
	}
	if got := theme.Icon("arrow"); got != "=>" {
		t.Errorf("Icon(arrow) = %q, want %q", got, "=>")
	}
	if got := theme.Icon("folder"); got != "[D]" {
		t.Errorf("Icon(folder) = %q, want ASCII fallback %q", got, "[D]")
	}
}

func TestIsLimitedTerminalOverSSH(t *testing.T) {
	t.Setenv("SSH_TTY", "/dev/pts/1")
	if !isLimitedTerminal() {
		t.Error("isLimitedTerminal() = false over SSH, want true")
	}
	if got := Default().Icon("folder"); got != "[D]" {
		t.Errorf("Default().Icon(folder) over SSH = %q, want %q", got, "[D]")
	}
}

func TestBadgeStyleVariants(t *testing.T) {
	th := Default()
	colors := th.Colors()
	tests := []struct {
		kind BadgeKind
		want lipgloss.TerminalColor
	}{
		{BadgeInfo, colors.Accent},
		{BadgeSuccess, colors.Success},
		{BadgeWarning, colors.Warning},
		{BadgeError, colors.Error},
	}
	for _, tc := range tests {
		if got := th.BadgeStyle(tc.kind).GetBackground(); got != tc.want {
			t.Errorf("BadgeStyle(%d) background = %v, want %v", tc.kind, got, tc.want)
		}
	}
}
