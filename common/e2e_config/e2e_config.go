package e2e_config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/ilyakaznacheev/cleanenv"
)

const ConfigDir = "/configurations"

// E2EConfig is the application configuration structure
type E2EConfig struct {
	ConfigName string `yaml:"configName" env-default:"default"`

	Cluster struct {
		// PrimaryNode is the management node, all gluster CLI commands
		// are executed there.
		PrimaryNode string `yaml:"primaryNode" env:"e2e_primary_node"`
		// Servers are all the storage nodes of the trusted pool.
		Servers []string `yaml:"servers" env:"e2e_servers"`
		// AgentPort is the port the node resident e2e-agent listens on.
		AgentPort string `yaml:"agentPort" env:"e2e_agent_port" env-default:"10012"`
		// BrickRootDir is where scratch volumes place their bricks on
		// each server.
		BrickRootDir string `yaml:"brickRootDir" env:"e2e_brick_root_dir" env-default:"/bricks"`
	} `yaml:"cluster"`

	E2eRootDir string `yaml:"e2eRootDir" env:"e2e_root_dir"`

	// Run configuration
	ReportsDir string `yaml:"reportsDir" env:"e2e_reports_dir"`

	// Individual test parameters
	BrickFault struct {
		Volume string `yaml:"volume" env:"e2e_brick_fault_volume"`
		// OnlineTimeoutSecs bounds the wait for bricks to come back
		// online after repair.
		OnlineTimeoutSecs int `yaml:"onlineTimeoutSecs" env-default:"300"`
		Iterations        int `yaml:"iterations" env-default:"5"`
	} `yaml:"brickFault"`
	TierDetach struct {
		Volume      string `yaml:"volume" env:"e2e_tier_detach_volume"`
		TimeoutSecs int    `yaml:"timeoutSecs" env-default:"300"`
	} `yaml:"tierDetach"`
}

var once sync.Once
var e2eConfig E2EConfig

// GetConfig returns the resolved configuration.
// This function is called early from junit and various bits have not been
// initialised yet so we cannot use logf or Expect, instead we use
// fmt.Print... and panic.
func GetConfig() E2EConfig {
	once.Do(func() {
		var err error
		// - if OS envvar e2e_config_file is defined the named file in the
		//   configuration directory (or an absolute path to a file) is
		//   used as the config file
		// - otherwise settings are resolved from environment variables
		//   and defaults only, which suffices for unit level runs.
		value, ok := os.LookupEnv("e2e_config_file")
		if ok {
			configFile := value
			if _, err = os.Stat(value); err != nil {
				e2eRootDir := os.Getenv("e2e_root_dir")
				configFile = path.Clean(e2eRootDir + ConfigDir + "/" + value)
			}
			fmt.Printf("Using configuration file %s\n", configFile)
			err = cleanenv.ReadConfig(configFile, &e2eConfig)
			if err != nil {
				panic(fmt.Sprintf("%v", err))
			}
		} else {
			err = cleanenv.ReadEnv(&e2eConfig)
			if err != nil {
				panic(fmt.Sprintf("%v", err))
			}
		}

		// The environment variable overrides the configuration setting,
		// this makes it possible to use a configuration file written out
		// previously to replicate a test run configuration.
		if e2eRootDir, okRootDir := os.LookupEnv("e2e_root_dir"); okRootDir {
			if e2eRootDir != e2eConfig.E2eRootDir && e2eConfig.E2eRootDir != "" {
				fmt.Printf("overriding configuration e2e root dir from %s to %s\n", e2eConfig.E2eRootDir, e2eRootDir)
			}
			e2eConfig.E2eRootDir = e2eRootDir
		}

		if e2eConfig.E2eRootDir != "" {
			cfgBytes, _ := yaml.Marshal(e2eConfig)
			cfgUsedFile := path.Clean(e2eConfig.E2eRootDir + "/artifacts/used-" + e2eConfig.ConfigName + ".yaml")
			err = ioutil.WriteFile(cfgUsedFile, cfgBytes, 0644)
			if err == nil {
				fmt.Printf("Resolved config written to %s\n", cfgUsedFile)
			}
		}
	})

	return e2eConfig
}
