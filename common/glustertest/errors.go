package glustertest

import "github.com/pkg/errors"

// Sentinel errors returned (wrapped) by cluster queries and by the
// brick selection logic. Use errors.Cause to test for them.
var (
	// ErrQuorumConfig indicates that the quorum or redundancy
	// configuration of a volume is internally inconsistent, e.g. a
	// fixed quorum type without a quorum count.
	ErrQuorumConfig = errors.New("invalid quorum configuration")

	// ErrUnavailable indicates that a cluster query (volume info,
	// topology) could not be completed. It is distinct from a valid
	// empty result.
	ErrUnavailable = errors.New("cluster query failed")

	// ErrStatusUnavailable indicates that a volume status snapshot
	// could not be fetched. Wait operations surface it instead of
	// retrying.
	ErrStatusUnavailable = errors.New("volume status unavailable")
)
