package glustertest

import (
	"strings"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

// recordingExec captures every command issued per host.
type recordingExec struct {
	mu   sync.Mutex
	seen map[string][]string
	fail func(host, cmd string) error
}

func newRecordingExec() *recordingExec {
	return &recordingExec{seen: map[string][]string{}}
}

func (r *recordingExec) Exec(host string, cmd string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[host] = append(r.seen[host], cmd)
	if r.fail != nil {
		return "", r.fail(host, cmd)
	}
	return "", nil
}

var _ = Describe("bringing bricks offline", func() {
	bricks := []Brick{
		{Node: "s1", Path: "/bricks/b0"},
		{Node: "s2", Path: "/bricks/b0"},
	}

	It("kills the brick process on the hosting node", func() {
		exec := newRecordingExec()
		cluster := NewCluster("mgmt-0", WithExecutor(exec), WithRand(testRand()))

		Expect(cluster.BringBricksOffline("vol", bricks)).To(Succeed())
		Expect(exec.seen["s1"]).To(HaveLen(1))
		Expect(exec.seen["s1"][0]).To(ContainSubstring("s1-bricks-b0.pid"))
		Expect(exec.seen["s1"][0]).To(ContainSubstring("kill -15"))
		Expect(exec.seen["s2"]).To(HaveLen(1))
		Expect(exec.seen["mgmt-0"]).To(BeEmpty())
	})

	It("rejects unknown offline methods", func() {
		exec := newRecordingExec()
		cluster := NewCluster("mgmt-0", WithExecutor(exec), WithRand(testRand()))
		err := cluster.BringBricksOffline("vol", bricks, "power_cut")
		Expect(err).To(HaveOccurred())
	})

	It("reports the bricks it could not kill", func() {
		exec := newRecordingExec()
		exec.fail = func(host, cmd string) error {
			if host == "s2" {
				return errors.New("agent unreachable")
			}
			return nil
		}
		cluster := NewCluster("mgmt-0", WithExecutor(exec), WithRand(testRand()))
		err := cluster.BringBricksOffline("vol", bricks)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("s2:/bricks/b0"))
		Expect(err.Error()).ToNot(ContainSubstring("s1:/bricks/b0"))
	})
})

var _ = Describe("bringing bricks online", func() {
	bricks := []Brick{
		{Node: "s1", Path: "/bricks/b0"},
		{Node: "s2", Path: "/bricks/b0"},
	}

	It("restarts glusterd on each brick node", func() {
		exec := newRecordingExec()
		cluster := NewCluster("mgmt-0", WithExecutor(exec), WithRand(testRand()))

		Expect(cluster.BringBricksOnline("vol", bricks, MethodGlusterdRestart)).To(Succeed())
		Expect(exec.seen["s1"]).To(Equal([]string{"systemctl restart glusterd"}))
		Expect(exec.seen["s2"]).To(Equal([]string{"systemctl restart glusterd"}))
	})

	It("starts the volume with force exactly once", func() {
		exec := newRecordingExec()
		cluster := NewCluster("mgmt-0", WithExecutor(exec), WithRand(testRand()))

		Expect(cluster.BringBricksOnline("vol", bricks, MethodVolumeStartForce)).To(Succeed())
		// one volume wide command brings every brick back
		Expect(exec.seen["mgmt-0"]).To(Equal([]string{"gluster volume start vol force"}))
		Expect(exec.seen["s1"]).To(BeEmpty())
	})

	It("rejects unknown online methods", func() {
		exec := newRecordingExec()
		cluster := NewCluster("mgmt-0", WithExecutor(exec), WithRand(testRand()))
		err := cluster.BringBricksOnline("vol", bricks, "hope")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("deleting bricks", func() {
	It("wipes the export directory and verifies removal", func() {
		exec := newRecordingExec()
		// ls after rm must fail for the deletion to count as done
		exec.fail = func(host, cmd string) error {
			if strings.HasPrefix(cmd, "ls ") {
				return errors.New("no such file or directory")
			}
			return nil
		}
		cluster := NewCluster("mgmt-0", WithExecutor(exec))

		bricks := []Brick{{Node: "s1", Path: "/bricks/b0"}}
		Expect(cluster.DeleteBricks(bricks)).To(Succeed())
		Expect(exec.seen["s1"]).To(Equal([]string{"rm -rf /bricks/b0", "ls /bricks/b0"}))
	})

	It("fails when the directory survives", func() {
		exec := newRecordingExec()
		cluster := NewCluster("mgmt-0", WithExecutor(exec))
		err := cluster.DeleteBricks([]Brick{{Node: "s1", Path: "/bricks/b0"}})
		Expect(err).To(HaveOccurred())
	})
})
