package glustertest

import (
	"fmt"
	"time"

	"github.com/facebookgo/clock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

func detachStatusCmd(vol string) string {
	return fmt.Sprintf("gluster volume tier %s detach status --xml", vol)
}

func detachStatusXML(aggregateStatus string) string {
	return fmt.Sprintf(`%s<volDetachTier>
<nodeCount>3</nodeCount>
<node><nodeName>localhost</nodeName><statusStr>%s</statusStr><files>10</files><failures>0</failures><skipped>0</skipped></node>
<node><nodeName>s2</nodeName><statusStr>%s</statusStr><files>4</files><failures>0</failures><skipped>0</skipped></node>
<aggregate><statusStr>%s</statusStr><files>14</files><failures>0</failures><skipped>0</skipped></aggregate>
</volDetachTier></cliOutput>`, cliHeader, aggregateStatus, aggregateStatus, aggregateStatus)
}

var _ = Describe("tier operations", func() {
	It("parses the tier migration status", func() {
		exec := newFakeExec()
		exec.replies["gluster volume tier tiered status --xml"] = fmt.Sprintf(`%s<volRebalance>
<task-id>2ed28cbd-4246-493a-87b8-1fdcce313b34</task-id><nodeCount>2</nodeCount>
<node><nodeName>localhost</nodeName><statusStr>in progress</statusStr><promotedFiles>3</promotedFiles><demotedFiles>1</demotedFiles></node>
<node><nodeName>s2</nodeName><statusStr>in progress</statusStr><promotedFiles>0</promotedFiles><demotedFiles>0</demotedFiles></node>
</volRebalance></cliOutput>`, cliHeader)
		cluster := NewCluster("mgmt-0", WithExecutor(exec))

		status, err := cluster.GetTierStatus("tiered")
		Expect(err).ToNot(HaveOccurred())
		Expect(status.TaskID).To(Equal("2ed28cbd-4246-493a-87b8-1fdcce313b34"))
		Expect(status.Nodes).To(HaveLen(2))
		Expect(status.Nodes[0].PromotedFiles).To(Equal(3))
		Expect(status.Nodes[0].StatusStr).To(Equal("in progress"))
	})

	It("returns the task id from detach start", func() {
		exec := newFakeExec()
		exec.replies["gluster volume tier tiered detach start --xml"] = fmt.Sprintf(
			`%s<volDetachTier><task-id>8020835c-ff0d-4ea1-9f07-62dd067e92d4</task-id></volDetachTier></cliOutput>`, cliHeader)
		cluster := NewCluster("mgmt-0", WithExecutor(exec))

		taskID, err := cluster.TierDetachStart("tiered")
		Expect(err).ToNot(HaveOccurred())
		Expect(taskID).To(Equal("8020835c-ff0d-4ea1-9f07-62dd067e92d4"))
	})

	It("issues detach stop and commit on the management node", func() {
		exec := newFakeExec()
		exec.replies["gluster volume tier tiered detach stop --xml"] = cliHeader + `</cliOutput>`
		exec.replies["gluster volume tier tiered detach commit --xml"] = cliHeader + `</cliOutput>`
		cluster := NewCluster("mgmt-0", WithExecutor(exec))

		Expect(cluster.TierDetachStop("tiered")).To(Succeed())
		Expect(cluster.TierDetachCommit("tiered")).To(Succeed())
		Expect(exec.callCount("gluster volume tier tiered detach stop --xml")).To(Equal(1))
		Expect(exec.callCount("gluster volume tier tiered detach commit --xml")).To(Equal(1))
	})

	It("parses the aggregate detach status", func() {
		exec := newFakeExec()
		exec.replies[detachStatusCmd("tiered")] = detachStatusXML("in progress")
		cluster := NewCluster("mgmt-0", WithExecutor(exec))

		status, err := cluster.GetDetachTierStatus("tiered")
		Expect(err).ToNot(HaveOccurred())
		Expect(status.Aggregate).ToNot(BeNil())
		Expect(status.Aggregate.StatusStr).To(Equal("in progress"))
		Expect(status.Nodes).To(HaveLen(2))
	})
})

var _ = Describe("waiting for tier detach", func() {
	It("returns as soon as the aggregate reports completed", func() {
		exec := newFakeExec()
		exec.replies[detachStatusCmd("tiered")] = detachStatusXML("completed")
		cluster := NewCluster("mgmt-0", WithExecutor(exec))

		done, err := cluster.WaitForDetachTierToComplete("tiered", 300*time.Second)
		Expect(err).ToNot(HaveOccurred())
		Expect(done).To(BeTrue())
		Expect(exec.callCount(detachStatusCmd("tiered"))).To(Equal(1))
	})

	It("times out while the migration is in progress", func() {
		exec := newFakeExec()
		exec.replies[detachStatusCmd("tiered")] = detachStatusXML("in progress")
		mock := clock.NewMock()
		cluster := NewCluster("mgmt-0", WithExecutor(exec), WithClock(mock))

		var done bool
		var err error
		finished := make(chan struct{})
		go func() {
			defer close(finished)
			done, err = cluster.WaitForDetachTierToComplete("tiered", 20*time.Second)
		}()
		for {
			select {
			case <-finished:
				Expect(err).ToNot(HaveOccurred())
				Expect(done).To(BeFalse())
				Expect(exec.callCount(detachStatusCmd("tiered"))).To(Equal(2))
				return
			default:
				mock.Add(detachTierPollInterval)
				time.Sleep(time.Millisecond)
			}
		}
	})

	It("surfaces a status query failure", func() {
		exec := newFakeExec()
		exec.errs[detachStatusCmd("tiered")] = errors.New("no route to host")
		cluster := NewCluster("mgmt-0", WithExecutor(exec))

		_, err := cluster.WaitForDetachTierToComplete("tiered", 30*time.Second)
		Expect(err).To(HaveOccurred())
		Expect(errors.Cause(err)).To(Equal(ErrUnavailable))
	})
})
