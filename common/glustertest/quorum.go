package glustertest

import (
	"strconv"

	"github.com/pkg/errors"
)

// QuorumType is the client quorum scheme configured on a volume.
type QuorumType int

const (
	// QuorumNone means no client quorum is enforced.
	QuorumNone QuorumType = iota
	// QuorumAuto enforces majority quorum.
	QuorumAuto
	// QuorumFixed enforces a configured minimum replica count.
	QuorumFixed
	// QuorumInvalid marks an unrecognized cluster.quorum-type value.
	QuorumInvalid
)

func (q QuorumType) String() string {
	switch q {
	case QuorumNone:
		return "none"
	case QuorumAuto:
		return "auto"
	case QuorumFixed:
		return "fixed"
	}
	return "invalid"
}

// QuorumInfo describes the client quorum configuration of one volume
// partition. Count is meaningful only for QuorumFixed, zero means the
// count is unset.
type QuorumInfo struct {
	// Applicable is false for partitions without replica redundancy,
	// where client quorum has no meaning. Without quorum data no safe
	// fault bound can be computed.
	Applicable bool
	Type       QuorumType
	Count      int
}

// VolumeQuorumInfo is the quorum configuration of a volume and, for
// tiered volumes, of each tier. The quorum options are volume wide; per
// tier applicability depends on the tier's own type.
type VolumeQuorumInfo struct {
	Volume   QuorumInfo
	HotTier  *QuorumInfo
	ColdTier *QuorumInfo
}

const (
	quorumTypeOption  = "cluster.quorum-type"
	quorumCountOption = "cluster.quorum-count"
)

func parseQuorumOptions(options map[string]string) (QuorumType, int, error) {
	qtype := QuorumNone
	switch options[quorumTypeOption] {
	case "", "none":
		qtype = QuorumNone
	case "auto":
		qtype = QuorumAuto
	case "fixed":
		qtype = QuorumFixed
	default:
		return QuorumInvalid, 0, errors.Wrapf(ErrQuorumConfig,
			"unrecognized %s value %q", quorumTypeOption, options[quorumTypeOption])
	}

	count := 0
	if value, ok := options[quorumCountOption]; ok && value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return QuorumInvalid, 0, errors.Wrapf(ErrQuorumConfig,
				"malformed %s value %q", quorumCountOption, value)
		}
		count = n
	}
	return qtype, count, nil
}

// GetClientQuorumInfo fetches the client quorum configuration of the
// named volume. For tiered volumes the same volume wide options are
// reported per tier, with applicability derived from each tier's type.
func (c *Cluster) GetClientQuorumInfo(volname string) (*VolumeQuorumInfo, error) {
	info, err := c.GetVolumeInfo(volname)
	if err != nil {
		return nil, err
	}
	qtype, count, err := parseQuorumOptions(info.Options)
	if err != nil {
		return nil, errors.Wrapf(err, "volume %s", volname)
	}
	typeInfo := volumeTypeInfoOf(info)

	quorum := &VolumeQuorumInfo{
		Volume: QuorumInfo{
			Applicable: typeInfo.Volume.Kind.Replicated(),
			Type:       qtype,
			Count:      count,
		},
	}
	if typeInfo.HotTier != nil {
		quorum.HotTier = &QuorumInfo{
			Applicable: typeInfo.HotTier.Kind.Replicated(),
			Type:       qtype,
			Count:      count,
		}
	}
	if typeInfo.ColdTier != nil {
		quorum.ColdTier = &QuorumInfo{
			Applicable: typeInfo.ColdTier.Kind.Replicated(),
			Type:       qtype,
			Count:      count,
		}
	}
	return quorum, nil
}
