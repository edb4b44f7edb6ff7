package glustertest

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Volume lifecycle operations, used by suites that run against a
// scratch volume instead of a pre-provisioned one.

// CreateReplicatedVolume creates a replicated (or distributed
// replicated) volume over the given bricks. The brick directories must
// already exist on their nodes.
func (c *Cluster) CreateReplicatedVolume(volname string, replicaCount int, bricks []Brick) error {
	if replicaCount < 2 {
		return errors.Errorf("replica count %d is not a replicated layout", replicaCount)
	}
	if len(bricks) == 0 || len(bricks)%replicaCount != 0 {
		return errors.Errorf("brick count %d does not fit replica count %d", len(bricks), replicaCount)
	}
	cmd := fmt.Sprintf("gluster volume create %s replica %d %s force --mode=script --xml",
		volname, replicaCount, strings.Join(brickNames(bricks), " "))
	_, err := c.runCLI(cmd)
	return err
}

// StartVolume starts the named volume.
func (c *Cluster) StartVolume(volname string) error {
	_, err := c.runCLI(fmt.Sprintf("gluster volume start %s --xml", volname))
	return err
}

// StopVolume force stops the named volume.
func (c *Cluster) StopVolume(volname string) error {
	_, err := c.runCLI(fmt.Sprintf("gluster volume stop %s force --mode=script --xml", volname))
	return err
}

// DeleteVolume deletes the named volume. The volume must be stopped.
func (c *Cluster) DeleteVolume(volname string) error {
	_, err := c.runCLI(fmt.Sprintf("gluster volume delete %s --mode=script --xml", volname))
	return err
}

// SetVolumeOption sets a single volume option, e.g. cluster.quorum-type.
func (c *Cluster) SetVolumeOption(volname, name, value string) error {
	_, err := c.runCLI(fmt.Sprintf("gluster volume set %s %s %s --xml", volname, name, value))
	return err
}
