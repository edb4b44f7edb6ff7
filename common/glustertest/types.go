package glustertest

import (
	"strings"

	"github.com/pkg/errors"
)

// Brick identifies one storage unit of a volume by the node hosting it
// and the export directory on that node.
type Brick struct {
	Node string
	Path string
}

// String renders the brick in the node:path form used by the gluster CLI.
func (b Brick) String() string {
	return b.Node + ":" + b.Path
}

// ParseBrick parses the node:path form emitted by the gluster CLI.
func ParseBrick(s string) (Brick, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Brick{}, errors.Errorf("malformed brick name %q", s)
	}
	return Brick{Node: parts[0], Path: parts[1]}, nil
}

// SubvolGroup is one replica or disperse set. The bricks of a group
// store the same data, so the group is the unit of quorum arithmetic.
type SubvolGroup []Brick

// Subvols is the subvolume grouping of a volume. For tiered volumes the
// hot and cold tiers are grouped separately and VolumeSubvols is empty.
type Subvols struct {
	IsTier          bool
	VolumeSubvols   []SubvolGroup
	HotTierSubvols  []SubvolGroup
	ColdTierSubvols []SubvolGroup
}

// FaultSet is the outcome of a brick selection: per volume partition,
// the bricks which can be brought offline without losing availability.
// Hot and cold tier selections are kept separate because the tiers have
// independent redundancy.
type FaultSet struct {
	IsTier         bool
	VolumeBricks   []Brick
	HotTierBricks  []Brick
	ColdTierBricks []Brick
}

// Empty reports whether the selection contains no bricks at all.
func (f FaultSet) Empty() bool {
	return len(f.VolumeBricks) == 0 && len(f.HotTierBricks) == 0 && len(f.ColdTierBricks) == 0
}

// All returns every selected brick regardless of partition.
func (f FaultSet) All() []Brick {
	var all []Brick
	all = append(all, f.VolumeBricks...)
	all = append(all, f.HotTierBricks...)
	all = append(all, f.ColdTierBricks...)
	return all
}

func brickNames(bricks []Brick) []string {
	names := make([]string, 0, len(bricks))
	for _, b := range bricks {
		names = append(names, b.String())
	}
	return names
}
