package glustertest

import "github.com/pkg/errors"

// VolumeKind classifies a volume or tier by its redundancy scheme.
type VolumeKind int

const (
	KindUnknown VolumeKind = iota
	KindDistribute
	KindReplicate
	KindDistributedReplicate
	KindDisperse
	KindDistributedDisperse
	KindTier
)

func (k VolumeKind) String() string {
	switch k {
	case KindDistribute:
		return "Distribute"
	case KindReplicate:
		return "Replicate"
	case KindDistributedReplicate:
		return "Distributed-Replicate"
	case KindDisperse:
		return "Disperse"
	case KindDistributedDisperse:
		return "Distributed-Disperse"
	case KindTier:
		return "Tier"
	}
	return "Unknown"
}

// Replicated reports whether the kind carries replica redundancy.
func (k VolumeKind) Replicated() bool {
	return k == KindReplicate || k == KindDistributedReplicate
}

// Dispersed reports whether the kind carries erasure coded redundancy.
func (k VolumeKind) Dispersed() bool {
	return k == KindDisperse || k == KindDistributedDisperse
}

// ParseVolumeKind maps the typeStr emitted by the gluster CLI to a
// VolumeKind.
func ParseVolumeKind(typeStr string) VolumeKind {
	switch typeStr {
	case "Distribute":
		return KindDistribute
	case "Replicate":
		return KindReplicate
	case "Distributed-Replicate":
		return KindDistributedReplicate
	case "Disperse":
		return KindDisperse
	case "Distributed-Disperse":
		return KindDistributedDisperse
	case "Tier":
		return KindTier
	}
	return KindUnknown
}

// TypeInfo holds the redundancy parameters of one volume partition, the
// inputs of the offline-limit arithmetic.
type TypeInfo struct {
	Kind            VolumeKind
	ReplicaCount    int
	DisperseCount   int
	RedundancyCount int
	ArbiterCount    int
}

// VolumeTypeInfo is the TypeInfo of a volume and, for tiered volumes,
// of each tier.
type VolumeTypeInfo struct {
	Volume   TypeInfo
	HotTier  *TypeInfo
	ColdTier *TypeInfo
}

// GetVolumeTypeInfo fetches the redundancy parameters of the named
// volume, per tier when the volume is tiered.
func (c *Cluster) GetVolumeTypeInfo(volname string) (*VolumeTypeInfo, error) {
	info, err := c.GetVolumeInfo(volname)
	if err != nil {
		return nil, err
	}
	return volumeTypeInfoOf(info), nil
}

func volumeTypeInfoOf(info *VolumeInfo) *VolumeTypeInfo {
	typeInfo := &VolumeTypeInfo{
		Volume: TypeInfo{
			Kind:            ParseVolumeKind(info.TypeStr),
			ReplicaCount:    info.ReplicaCount,
			DisperseCount:   info.DisperseCount,
			RedundancyCount: info.RedundancyCount,
			ArbiterCount:    info.ArbiterCount,
		},
	}
	if info.HotTier != nil {
		typeInfo.HotTier = &TypeInfo{
			Kind:         ParseVolumeKind(info.HotTier.TypeStr),
			ReplicaCount: info.HotTier.ReplicaCount,
		}
	}
	if info.ColdTier != nil {
		typeInfo.ColdTier = &TypeInfo{
			Kind:            ParseVolumeKind(info.ColdTier.TypeStr),
			ReplicaCount:    info.ColdTier.ReplicaCount,
			DisperseCount:   info.ColdTier.DisperseCount,
			RedundancyCount: info.ColdTier.RedundancyCount,
		}
	}
	return typeInfo
}

// IsTieredVolume reports whether the named volume has a hot/cold
// tiering split.
func (c *Cluster) IsTieredVolume(volname string) (bool, error) {
	info, err := c.GetVolumeInfo(volname)
	if err != nil {
		return false, err
	}
	return info.IsTier(), nil
}

// groupBricks partitions an ordered brick list into consecutive groups
// of the given size. A size below 2 means there is no redundancy
// grouping and every brick forms its own group.
func groupBricks(bricks []Brick, size int) []SubvolGroup {
	if size < 2 {
		size = 1
	}
	var groups []SubvolGroup
	for start := 0; start < len(bricks); start += size {
		end := start + size
		if end > len(bricks) {
			end = len(bricks)
		}
		group := make(SubvolGroup, end-start)
		copy(group, bricks[start:end])
		groups = append(groups, group)
	}
	return groups
}

// groupSize returns the number of bricks per redundancy set for the
// partition.
func groupSize(t TypeInfo) int {
	if t.Kind.Dispersed() {
		return t.DisperseCount
	}
	return t.ReplicaCount
}

// GetSubvols fetches the subvolume grouping of the named volume. Tiered
// volumes are grouped per tier using each tier's own redundancy
// parameters.
func (c *Cluster) GetSubvols(volname string) (*Subvols, error) {
	info, err := c.GetVolumeInfo(volname)
	if err != nil {
		return nil, err
	}
	typeInfo := volumeTypeInfoOf(info)

	subvols := &Subvols{IsTier: info.IsTier()}
	if subvols.IsTier {
		if info.HotTier != nil && typeInfo.HotTier != nil {
			subvols.HotTierSubvols = groupBricks(info.HotTier.Bricks, groupSize(*typeInfo.HotTier))
		}
		if info.ColdTier != nil && typeInfo.ColdTier != nil {
			subvols.ColdTierSubvols = groupBricks(info.ColdTier.Bricks, groupSize(*typeInfo.ColdTier))
		}
		return subvols, nil
	}
	subvols.VolumeSubvols = groupBricks(info.Bricks, groupSize(typeInfo.Volume))
	return subvols, nil
}

// GetAllBricks lists every brick of the named volume. For tiered
// volumes the list contains the hot tier bricks followed by the cold
// tier bricks.
func (c *Cluster) GetAllBricks(volname string) ([]Brick, error) {
	info, err := c.GetVolumeInfo(volname)
	if err != nil {
		return nil, err
	}
	if info.IsTier() {
		var all []Brick
		if info.HotTier != nil {
			all = append(all, info.HotTier.Bricks...)
		}
		if info.ColdTier != nil {
			all = append(all, info.ColdTier.Bricks...)
		}
		return all, nil
	}
	return info.Bricks, nil
}

// GetHotTierBricks lists the hot tier bricks of a tiered volume.
func (c *Cluster) GetHotTierBricks(volname string) ([]Brick, error) {
	info, err := c.GetVolumeInfo(volname)
	if err != nil {
		return nil, err
	}
	if !info.IsTier() || info.HotTier == nil {
		return nil, errors.Errorf("volume %s is not a tiered volume", volname)
	}
	return info.HotTier.Bricks, nil
}

// GetColdTierBricks lists the cold tier bricks of a tiered volume.
func (c *Cluster) GetColdTierBricks(volname string) ([]Brick, error) {
	info, err := c.GetVolumeInfo(volname)
	if err != nil {
		return nil, err
	}
	if !info.IsTier() || info.ColdTier == nil {
		return nil, errors.Errorf("volume %s is not a tiered volume", volname)
	}
	return info.ColdTier.Bricks, nil
}
