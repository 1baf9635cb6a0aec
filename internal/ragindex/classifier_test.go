package ragindex

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"Dockerfile", "dockerfile"},
		{"Makefile", "make"},
		{"go.mod", "gomod"},
		{"path/to/go.mod", "gomod"},
		{"main.go", "go"},
		{"app.py", "python"},
		{"index.TS", "typescript"},
		{"README.md", "markdown"},
		{"noext", ""},
		{"weird.xyz", ""},
	}
	for _, c := range cases {
		if got := Classify(c.filename); got != c.want {
			t.Errorf("Classify(%q) = %q, want %q", c.filename, got, c.want)
		}
	}
}

func TestAllLanguagesIncludesRestrictedSet(t *testing.T) {
	all := map[string]struct{}{}
	for _, l := range AllLanguages() {
		all[l] = struct{}{}
	}
	for _, want := range []string{"go", "gomod", "python"} {
		if _, ok := all[want]; !ok {
			t.Errorf("AllLanguages() missing %q", want)
		}
	}
}
