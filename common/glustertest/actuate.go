package glustertest

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"glusterfs-e2e/common"
)

// Methods used to transition bricks offline and back online. When a
// call supplies several methods one is picked at random per brick.
const (
	MethodServiceKill      = "service_kill"
	MethodGlusterdRestart  = "glusterd_restart"
	MethodVolumeStartForce = "volume_start_force"
)

// BringBricksOffline brings the listed bricks offline on their hosting
// nodes. The only supported method is service_kill, which terminates
// the brick's glusterfsd process.
func (c *Cluster) BringBricksOffline(volname string, bricks []Brick, methods ...string) error {
	if len(methods) == 0 {
		methods = []string{MethodServiceKill}
	}

	var failed []Brick
	for _, brick := range bricks {
		method := methods[c.rng.Intn(len(methods))]
		if method != MethodServiceKill {
			return errors.Errorf("invalid method %q to bring bricks offline", method)
		}
		// The brick pid file is named after the node and the export
		// path with slashes flattened to dashes.
		pidPattern := brick.Node + strings.ReplaceAll(brick.Path, "/", "-") + ".pid"
		cmd := fmt.Sprintf(
			"pid=`ps -ef | grep -ve 'grep' | grep -e '%s' | awk '{print $2}'` && kill -15 $pid || kill -9 $pid",
			pidPattern)
		if _, err := c.exec.Exec(brick.Node, cmd); err != nil {
			c.log.Error(err, "unable to kill the brick", "brick", brick.String())
			failed = append(failed, brick)
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("unable to bring bricks offline: %s", strings.Join(brickNames(failed), ", "))
	}
	c.log.Info("brought bricks offline", "volume", volname, "bricks", brickNames(bricks))
	return nil
}

// BringBricksOnline brings the listed bricks back online. The default
// method set is glusterd_restart and volume_start_force; one method is
// picked at random per brick. Starting the volume with force brings
// every brick back at once, so that method short-circuits the loop.
// Callers confirm recovery with WaitForBricksToBeOnline.
func (c *Cluster) BringBricksOnline(volname string, bricks []Brick, methods ...string) error {
	if len(methods) == 0 {
		methods = []string{MethodGlusterdRestart, MethodVolumeStartForce}
	}
	c.log.Info("bringing bricks online", "volume", volname,
		"bricks", brickNames(bricks), "methods", methods)

	var failed []Brick
loop:
	for _, brick := range bricks {
		method := methods[c.rng.Intn(len(methods))]
		switch method {
		case MethodGlusterdRestart:
			cmd := "systemctl restart " + common.GlusterdService
			if _, err := c.exec.Exec(brick.Node, cmd); err != nil {
				c.log.Error(err, "unable to restart glusterd", "node", brick.Node)
				failed = append(failed, brick)
			}
		case MethodVolumeStartForce:
			cmd := fmt.Sprintf("gluster volume start %s force", volname)
			if _, err := c.exec.Exec(c.primary, cmd); err != nil {
				c.log.Error(err, "unable to start the volume with force", "volume", volname)
				failed = append(failed, brick)
				continue
			}
			// all bricks of the volume are started by this command
			c.log.Info("restarted volume to bring all bricks online", "volume", volname)
			break loop
		default:
			return errors.Errorf("invalid method %q to bring bricks online", method)
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("unable to bring bricks online: %s", strings.Join(brickNames(failed), ", "))
	}
	return nil
}

// DeleteBricks wipes the export directories of the listed bricks on
// their hosting nodes and verifies the removal.
func (c *Cluster) DeleteBricks(bricks []Brick) error {
	var failed []Brick
	for _, brick := range bricks {
		// best effort removal, verified by the listing below
		_, _ = c.exec.Exec(brick.Node, "rm -rf "+brick.Path)
		if _, err := c.exec.Exec(brick.Node, "ls "+brick.Path); err == nil {
			c.log.Info("brick directory still present after removal", "brick", brick.String())
			failed = append(failed, brick)
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("unable to delete bricks: %s", strings.Join(brickNames(failed), ", "))
	}
	return nil
}
