package glustertest

import (
	"math/rand"

	"github.com/pkg/errors"
)

// offlineBrickLimit returns how many bricks of one replica set may be
// offline simultaneously without losing client quorum.
func offlineBrickLimit(replicaCount int, quorum QuorumInfo) (int, error) {
	switch quorum.Type {
	case QuorumFixed:
		if quorum.Count < 1 {
			return 0, errors.Wrap(ErrQuorumConfig, "quorum type is fixed but no quorum count is set")
		}
		return replicaCount - quorum.Count, nil
	case QuorumAuto:
		// Auto quorum demands that more than half of the replicas stay
		// online; ceil(replica/2) is the upper bound on removable
		// bricks used throughout the cluster's own tooling.
		return (replicaCount + 1) / 2, nil
	case QuorumNone:
		// keep at least one replica alive
		return replicaCount - 1, nil
	default:
		return 0, errors.Wrapf(ErrQuorumConfig, "unrecognized quorum type %q", quorum.Type)
	}
}

// pickFromGroups draws, for every subvolume group independently, a
// uniform count in [1, limit] and then that many distinct bricks from
// the group without replacement. Groups are failure independent, so
// verifying the bound per group is sufficient. Groups for which no safe
// fault exists (limit below 1) are skipped.
func pickFromGroups(rng *rand.Rand, subvols []SubvolGroup, limit int) []Brick {
	var picked []Brick
	for _, group := range subvols {
		max := limit
		if max > len(group) {
			max = len(group)
		}
		if max < 1 {
			continue
		}
		count := 1 + rng.Intn(max)
		for _, i := range rng.Perm(len(group))[:count] {
			picked = append(picked, group[i])
		}
	}
	return picked
}

// bricksToBringOfflineFromReplicated picks a quorum safe random brick
// subset from each replica set of a replicated partition. A partition
// without applicable quorum data yields an empty selection, safety
// cannot be established for it.
func bricksToBringOfflineFromReplicated(rng *rand.Rand, subvols []SubvolGroup, replicaCount int, quorum QuorumInfo) ([]Brick, error) {
	if !quorum.Applicable {
		return nil, nil
	}
	limit, err := offlineBrickLimit(replicaCount, quorum)
	if err != nil {
		return nil, err
	}
	return pickFromGroups(rng, subvols, limit), nil
}

// bricksToBringOfflineFromDispersed picks a random brick subset from
// each disperse set. An erasure coded set tolerates losing exactly its
// redundancy count of bricks.
func bricksToBringOfflineFromDispersed(rng *rand.Rand, subvols []SubvolGroup, redundancyCount int) []Brick {
	return pickFromGroups(rng, subvols, redundancyCount)
}

// selectPartitionBricks applies the partition's redundancy scheme.
// Distribute-only partitions have no redundancy to exploit and always
// yield an empty selection.
func (c *Cluster) selectPartitionBricks(volname string, typeInfo TypeInfo, subvols []SubvolGroup, quorum QuorumInfo) []Brick {
	switch {
	case typeInfo.Kind.Replicated():
		bricks, err := bricksToBringOfflineFromReplicated(c.rng, subvols, typeInfo.ReplicaCount, quorum)
		if err != nil {
			c.log.Error(err, "abandoning brick selection", "volume", volname, "type", typeInfo.Kind.String())
			return nil
		}
		return bricks
	case typeInfo.Kind.Dispersed():
		return bricksToBringOfflineFromDispersed(c.rng, subvols, typeInfo.RedundancyCount)
	default:
		return nil
	}
}

// SelectBricksToBringOffline randomly selects bricks which can be
// brought offline without affecting cluster availability. It never
// fails: when the volume cannot be queried, its configuration is
// inconsistent, or no safe fault exists, the returned fault set is
// empty. Tiered volumes are selected per tier with each tier's own
// type and quorum parameters.
func (c *Cluster) SelectBricksToBringOffline(volname string) FaultSet {
	var faults FaultSet

	typeInfo, err := c.GetVolumeTypeInfo(volname)
	if err != nil {
		c.log.Error(err, "unable to get volume type info", "volume", volname)
		return faults
	}
	subvols, err := c.GetSubvols(volname)
	if err != nil {
		c.log.Error(err, "unable to get subvolumes", "volume", volname)
		return faults
	}
	quorum, err := c.GetClientQuorumInfo(volname)
	if err != nil {
		c.log.Error(err, "unable to get quorum info", "volume", volname)
		return faults
	}

	if typeInfo.Volume.Kind == KindTier {
		faults.IsTier = true
		if typeInfo.HotTier != nil && quorum.HotTier != nil {
			faults.HotTierBricks = c.selectPartitionBricks(volname, *typeInfo.HotTier, subvols.HotTierSubvols, *quorum.HotTier)
		}
		if typeInfo.ColdTier != nil && quorum.ColdTier != nil {
			faults.ColdTierBricks = c.selectPartitionBricks(volname, *typeInfo.ColdTier, subvols.ColdTierSubvols, *quorum.ColdTier)
		}
	} else {
		faults.VolumeBricks = c.selectPartitionBricks(volname, typeInfo.Volume, subvols.VolumeSubvols, quorum.Volume)
	}

	c.log.Info("selected bricks to bring offline", "volume", volname,
		"volumeBricks", brickNames(faults.VolumeBricks),
		"hotTierBricks", brickNames(faults.HotTierBricks),
		"coldTierBricks", brickNames(faults.ColdTierBricks))
	return faults
}
