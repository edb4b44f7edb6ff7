package glustertest

import (
	"time"
)

// brickOnlinePollInterval is the fixed re-poll interval of the wait
// operations. There is no backoff and no jitter; a poll in flight
// cannot be interrupted before the next wake-up.
const brickOnlinePollInterval = 10 * time.Second

// AreBricksOnline verifies that every listed brick is online in a fresh
// status snapshot. A failure to fetch the snapshot is returned as an
// error, distinct from the validated negative (false, nil).
func (c *Cluster) AreBricksOnline(volname string, bricks []Brick) (bool, error) {
	status, err := c.GetVolumeStatus(volname)
	if err != nil {
		return false, err
	}
	var notOnline []Brick
	for _, b := range bricks {
		st, ok := status.Bricks[b]
		if !ok || !st.Online {
			notOnline = append(notOnline, b)
		}
	}
	if len(notOnline) > 0 {
		c.log.Info("bricks are not online", "volume", volname, "bricks", brickNames(notOnline))
		return false, nil
	}
	return true, nil
}

// AreBricksOffline verifies that none of the listed bricks is online in
// a fresh status snapshot. A brick missing from the snapshot has no
// running process and counts as offline.
func (c *Cluster) AreBricksOffline(volname string, bricks []Brick) (bool, error) {
	status, err := c.GetVolumeStatus(volname)
	if err != nil {
		return false, err
	}
	var online []Brick
	for _, b := range bricks {
		if st, ok := status.Bricks[b]; ok && st.Online {
			online = append(online, b)
		}
	}
	if len(online) > 0 {
		c.log.Info("bricks are not offline", "volume", volname, "bricks", brickNames(online))
		return false, nil
	}
	return true, nil
}

// GetOnlineBricks lists the bricks of the volume which are online in a
// fresh status snapshot.
func (c *Cluster) GetOnlineBricks(volname string) ([]Brick, error) {
	return c.bricksByState(volname, true)
}

// GetOfflineBricks lists the bricks of the volume which are offline in
// a fresh status snapshot.
func (c *Cluster) GetOfflineBricks(volname string) ([]Brick, error) {
	return c.bricksByState(volname, false)
}

func (c *Cluster) bricksByState(volname string, online bool) ([]Brick, error) {
	status, err := c.GetVolumeStatus(volname)
	if err != nil {
		return nil, err
	}
	all, err := c.GetAllBricks(volname)
	if err != nil {
		return nil, err
	}
	var matched []Brick
	for _, b := range all {
		st, ok := status.Bricks[b]
		if (ok && st.Online) == online {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// WaitForBricksToBeOnline blocks until every brick of the volume is
// online or the timeout expires. The false return distinguishes a
// timeout, which the caller may retry with a longer budget, from a
// status query failure, which is returned as an error and never
// silently retried.
func (c *Cluster) WaitForBricksToBeOnline(volname string, timeout time.Duration) (bool, error) {
	bricks, err := c.GetAllBricks(volname)
	if err != nil {
		return false, err
	}

	for elapsed := time.Duration(0); elapsed < timeout; elapsed += brickOnlinePollInterval {
		online, err := c.AreBricksOnline(volname, bricks)
		if err != nil {
			return false, err
		}
		if online {
			c.log.Info("all bricks are online", "volume", volname)
			return true, nil
		}
		c.clock.Sleep(brickOnlinePollInterval)
	}

	c.log.Info("bricks did not come online within the timeout", "volume", volname, "timeout", timeout)
	return false, nil
}
