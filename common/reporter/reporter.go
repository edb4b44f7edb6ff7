package reporter

import (
	"glusterfs-e2e/common/e2e_config"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/reporters"
)

// testGroupPrefix namespaces the report files of this repository in a
// shared reports directory.
const testGroupPrefix = "gluster-e2e."

// GetReporters returns a JUnit reporter writing to the configured
// reports directory, or no reporters when none is configured.
func GetReporters(name string) []Reporter {
	cfg := e2e_config.GetConfig()
	if cfg.ReportsDir == "" {
		return []Reporter{}
	}
	xmlFileSpec := cfg.ReportsDir + "/" + testGroupPrefix + name + "-junit.xml"
	return []Reporter{reporters.NewJUnitReporter(xmlFileSpec)}
}
