// Package core defines the essential interfaces and data structures shared
// across the RAG Index Manager and its collaborators. These components are
// designed to be abstract, allowing for flexible and decoupled
// implementations of the application's logic.
package core

// EditType classifies how a file changed between a PR's base and head.
type EditType int

const (
	// EditUnknown is the zero value and maps to the UnknownEditType skip path.
	EditUnknown EditType = iota
	EditAdded
	EditModified
	EditDeleted
	EditRenamed
)

func (e EditType) String() string {
	switch e {
	case EditAdded:
		return "ADDED"
	case EditModified:
		return "MODIFIED"
	case EditDeleted:
		return "DELETED"
	case EditRenamed:
		return "RENAMED"
	default:
		return "UNKNOWN"
	}
}

// FileChange is a tagged record describing one file's change in a PR diff.
// HeadContent is the file's content at the PR head, empty for pure deletes.
type FileChange struct {
	Filename    string
	OldFilename string
	EditType    EditType
	HeadContent string
}

// Metadata is the structured portion of a Document.
type Metadata struct {
	FileName  string `json:"file_name"`
	Language  string `json:"language,omitempty"`
	SplitType string `json:"split_type,omitempty"`
}

// Document is a single RAG-indexed unit of text. DocID is empty until the
// backend assigns one on creation; thereafter it is the stable handle used
// for updates and deletes.
type Document struct {
	DocID    string   `json:"doc_id,omitempty"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Plan is the disjoint create/update/delete output of the Diff Planner.
type Plan struct {
	Creates []Document
	Updates []Document
	Deletes []Document
}

// Empty reports whether applying this plan would issue no backend calls.
func (p Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// PRRef identifies a pull request the Lifecycle Coordinator operates on.
type PRRef struct {
	RepoSlug       string // e.g. "owner/repo"
	Number         int
	HeadBranch     string
	BaseBranch     string
	DefaultBranch  string
	InstallationID int64
}

// QueryParams carries the generation parameters forwarded to the RAG backend
// query operation. Zero values are replaced with the original source's
// defaults (temperature 0.7, max tokens 1000, top-k 5) by the Query
// Dispatcher.
type QueryParams struct {
	Temperature float64
	MaxTokens   int
	TopK        int
}

// QueryResponse is the RAG backend's response, passed through verbatim.
type QueryResponse struct {
	Response string         `json:"response"`
	Sources  []string       `json:"sources,omitempty"`
	Raw      map[string]any `json:"-"`
}
