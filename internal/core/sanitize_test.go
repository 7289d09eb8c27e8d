package core

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"Plain", "How I Met Your Mother", "How I Met Your Mother", false},
		{"Colon", "Star Trek: Discovery", "Star Trek Discovery", false},
		{"Slashes", "AC/DC Live", "AC DC Live", false},
		{"CollapsedSpaces", "  Show   Name  ", "Show Name", false},
		{"ControlChars", "Show\tName\n", "Show Name", false},
		{"Empty", "", "", true},
		{"OnlyReserved", "<>|", "", true},
		{"Dot", ".", "", true},
		{"DotDot", "..", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeName(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("SanitizeName(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
