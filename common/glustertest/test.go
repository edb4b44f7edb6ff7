package glustertest

import (
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	client "glusterfs-e2e/common/e2e-agent"
	"glusterfs-e2e/common/e2e_config"
	"glusterfs-e2e/common/loki"
	"glusterfs-e2e/common/reporter"
)

// InitTesting initialises the test run and sets class and file names
// for reports.
func InitTesting(t *testing.T, classname string, reportname string) {
	RegisterFailHandler(Fail)
	RunSpecsWithDefaultAndCustomReporters(t, classname, reporter.GetReporters(reportname))
	loki.SendLokiMarker("Start of test " + classname)
}

// SetupTestEnv connects to the trusted pool named in the configuration
// and verifies the node agents are reachable.
func SetupTestEnv() (*Cluster, error) {
	logf.SetLogger(zap.New(zap.UseDevMode(true), zap.WriteTo(GinkgoWriter)))

	cfg := e2e_config.GetConfig()
	fmt.Printf("Primary node is \"%s\"\n", cfg.Cluster.PrimaryNode)
	if cfg.Cluster.PrimaryNode == "" {
		return nil, errors.New("no primary node configured")
	}

	By("checking node agents are reachable")
	if len(cfg.Cluster.Servers) != 0 {
		if err := client.WaitAgentsReachable(cfg.Cluster.Servers); err != nil {
			return nil, err
		}
	}
	return NewCluster(cfg.Cluster.PrimaryNode), nil
}
