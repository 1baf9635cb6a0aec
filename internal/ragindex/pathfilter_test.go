package ragindex

import "testing"

func TestIgnored(t *testing.T) {
	dirs := []string{"vendor/", "node_modules/", "docs"}
	cases := []struct {
		path string
		want bool
	}{
		{"vendor/foo/bar.go", true},
		{"node_modules/x.js", true},
		{"docs", true},
		{"docs/readme.md", true},
		{"src/main.go", false},
	}
	for _, c := range cases {
		if got := Ignored(c.path, dirs); got != c.want {
			t.Errorf("Ignored(%q, %v) = %v, want %v", c.path, dirs, got, c.want)
		}
	}
	if Ignored("anything", nil) {
		t.Error("empty ignore list should never ignore")
	}
}
