package ragindex

import "testing"

func TestIndexName(t *testing.T) {
	cases := []struct {
		repo, branch, want string
	}{
		{"owner/repo", "main", "owner_repo_main"},
		{"owner/repo", "feature/test", "owner_repo_feature_test"},
		{"a/b/c", "x/y", "a_b_c_x_y"},
	}
	for _, c := range cases {
		if got := IndexName(c.repo, c.branch); got != c.want {
			t.Errorf("IndexName(%q, %q) = %q, want %q", c.repo, c.branch, got, c.want)
		}
	}
}
