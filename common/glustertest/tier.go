package glustertest

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// TierNodeStatus is the migration state reported by one node taking
// part in a tier or detach-tier operation.
type TierNodeStatus struct {
	NodeName      string `xml:"nodeName"`
	StatusStr     string `xml:"statusStr"`
	PromotedFiles int    `xml:"promotedFiles"`
	DemotedFiles  int    `xml:"demotedFiles"`
	Files         int    `xml:"files"`
	Failures      int    `xml:"failures"`
	Skipped       int    `xml:"skipped"`
}

// TierStatus is the parsed output of `gluster volume tier <vol> status`.
type TierStatus struct {
	TaskID    string           `xml:"task-id"`
	NodeCount int              `xml:"nodeCount"`
	Nodes     []TierNodeStatus `xml:"node"`
}

// DetachTierStatus is the parsed output of
// `gluster volume tier <vol> detach status`. Aggregate carries the
// cluster wide migration state; completion is judged on it.
type DetachTierStatus struct {
	NodeCount int              `xml:"nodeCount"`
	Nodes     []TierNodeStatus `xml:"node"`
	Aggregate *TierNodeStatus  `xml:"aggregate"`
	TaskID    string           `xml:"task-id"`
}

const detachTierPollInterval = 10 * time.Second

// GetTierStatus fetches the migration status of the hot tier.
func (c *Cluster) GetTierStatus(volname string) (*TierStatus, error) {
	env, err := c.runCLI(fmt.Sprintf("gluster volume tier %s status --xml", volname))
	if err != nil {
		return nil, err
	}
	if env.VolRebalance == nil {
		return nil, errors.Wrapf(ErrUnavailable, "no tier status reported for volume %s", volname)
	}
	return env.VolRebalance, nil
}

// TierDetachStart starts detaching the hot tier of the volume and
// returns the rebalance task id.
func (c *Cluster) TierDetachStart(volname string) (string, error) {
	env, err := c.runCLI(fmt.Sprintf("gluster volume tier %s detach start --xml", volname))
	if err != nil {
		return "", err
	}
	if env.VolDetachTier == nil {
		return "", errors.Wrapf(ErrUnavailable, "detach start reported nothing for volume %s", volname)
	}
	return env.VolDetachTier.TaskID, nil
}

// TierDetachStop stops an in-progress tier detach.
func (c *Cluster) TierDetachStop(volname string) error {
	_, err := c.runCLI(fmt.Sprintf("gluster volume tier %s detach stop --xml", volname))
	return err
}

// TierDetachCommit commits a completed tier detach.
func (c *Cluster) TierDetachCommit(volname string) error {
	_, err := c.runCLI(fmt.Sprintf("gluster volume tier %s detach commit --xml", volname))
	return err
}

// GetDetachTierStatus fetches the migration status of an in-progress
// tier detach.
func (c *Cluster) GetDetachTierStatus(volname string) (*DetachTierStatus, error) {
	env, err := c.runCLI(fmt.Sprintf("gluster volume tier %s detach status --xml", volname))
	if err != nil {
		return nil, err
	}
	if env.VolDetachTier == nil {
		return nil, errors.Wrapf(ErrUnavailable, "no detach status reported for volume %s", volname)
	}
	return env.VolDetachTier, nil
}

// WaitForDetachTierToComplete blocks until the detach migration reports
// completed on the aggregate status or the timeout expires. A status
// query failure is returned as an error, not retried.
func (c *Cluster) WaitForDetachTierToComplete(volname string, timeout time.Duration) (bool, error) {
	for elapsed := time.Duration(0); elapsed < timeout; elapsed += detachTierPollInterval {
		status, err := c.GetDetachTierStatus(volname)
		if err != nil {
			return false, err
		}
		if status.Aggregate != nil && status.Aggregate.StatusStr == "completed" {
			c.log.Info("detach tier completed", "volume", volname)
			return true, nil
		}
		c.clock.Sleep(detachTierPollInterval)
	}
	c.log.Info("detach tier did not complete within the timeout", "volume", volname, "timeout", timeout)
	return false, nil
}
