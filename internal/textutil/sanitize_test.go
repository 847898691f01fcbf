package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"clip.mp4", "clip.mp4"},
		{"  spaced name  ", "spaced name"},
		{"a/b\\c:d", "a-b-c-d"},
		{`what?"<>|`, "what"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Street Dance 01", "street_dance_01"},
		{"UPPER-case", "upper-case"},
		{"", "unknown"},
		{"***", "unknown"},
	}
	for _, tc := range cases {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
