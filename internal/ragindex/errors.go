package ragindex

import "github.com/sevigo/rag-index-manager/internal/core"

// Re-exported so callers of this package can use errors.Is against
// ragindex.ErrX without importing internal/core directly.
var (
	ErrProviderUnavailable = core.ErrProviderUnavailable
	ErrIndexMissing        = core.ErrIndexMissing
	ErrPolicyBlocked       = core.ErrPolicyBlocked
	ErrBackendTransient    = core.ErrBackendTransient
	ErrBackendFatal        = core.ErrBackendFatal
	ErrDecodeFailure       = core.ErrDecodeFailure
	ErrUnknownEditType     = core.ErrUnknownEditType
)
