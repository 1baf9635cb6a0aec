package githubprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/rag-index-manager/internal/core"
)

func TestEditTypeFromStatus(t *testing.T) {
	cases := []struct {
		status string
		want   core.EditType
		ok     bool
	}{
		{"added", core.EditAdded, true},
		{"modified", core.EditModified, true},
		{"changed", core.EditModified, true},
		{"removed", core.EditDeleted, true},
		{"renamed", core.EditRenamed, true},
		{"weird", core.EditUnknown, false},
	}
	for _, c := range cases {
		got, ok := editTypeFromStatus(c.status)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.ok, ok)
	}
}

func TestSplitSlug(t *testing.T) {
	owner, repo, err := splitSlug("owner/repo")
	assert.NoError(t, err)
	assert.Equal(t, "owner", owner)
	assert.Equal(t, "repo", repo)

	_, _, err = splitSlug("invalid")
	assert.Error(t, err)
}
