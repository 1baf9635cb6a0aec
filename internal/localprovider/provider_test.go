package localprovider

import "testing"

func TestIsValidUTF8(t *testing.T) {
	if !isValidUTF8([]byte("hello world")) {
		t.Error("expected valid utf-8 text to pass")
	}
	if !isValidUTF8(nil) {
		t.Error("expected empty input to pass")
	}
	if isValidUTF8([]byte{0xff, 0xfe, 0xfd}) {
		t.Error("expected invalid utf-8 bytes to fail")
	}
}

func TestRepoPath(t *testing.T) {
	p := New("/tmp/clones", "https://github.com/", "", nil)
	got := p.repoPath("owner/repo")
	want := "/tmp/clones/owner/repo"
	if got != want {
		t.Errorf("repoPath = %q, want %q", got, want)
	}
}
