package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"glusterfs-e2e/common/e2e_config"
)

// restPort is the port on which the node agents listen, resolved from
// the configuration.
func restPort() string {
	return e2e_config.GetConfig().Cluster.AgentPort
}

// CmdArgs carries a shell command to be executed on the node
type CmdArgs struct {
	Cmd string `json:"cmd"`
}

// ServiceArgs names a systemd service to operate on
type ServiceArgs struct {
	Service string `json:"service"`
}

func sendRequest(reqType, url string, data interface{}) (string, error) {
	client := &http.Client{}
	reqData := new(bytes.Buffer)
	if err := json.NewEncoder(reqData).Encode(data); err != nil {
		return "", err
	}
	req, err := http.NewRequest(reqType, url, reqData)
	if err != nil {
		return "", err
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("agent returned %d: %s", resp.StatusCode, bodyBytes)
	}
	return string(bodyBytes), nil
}

// IsAgentReachable checks if the agent on the node is reachable
func IsAgentReachable(serverAddr string) error {
	url := "http://" + serverAddr + ":" + restPort() + "/"
	_, err := sendRequest("GET", url, nil)
	return err
}

// Exec runs a shell command on the node and returns its combined output
func Exec(serverAddr string, cmd string) (string, error) {
	url := "http://" + serverAddr + ":" + restPort() + "/exec"
	data := CmdArgs{
		Cmd: cmd,
	}
	return sendRequest("POST", url, data)
}

// RestartService restarts a systemd service on the node
func RestartService(serverAddr string, service string) error {
	logf.Log.Info("Restarting service", "addr", serverAddr, "service", service)
	url := "http://" + serverAddr + ":" + restPort() + "/restartService"
	data := ServiceArgs{
		Service: service,
	}
	_, err := sendRequest("POST", url, data)
	return err
}

// UngracefulReboot crashes and reboots the host machine
func UngracefulReboot(serverAddr string) error {
	logf.Log.Info("Ungracefully rebooting node", "addr", serverAddr)
	url := "http://" + serverAddr + ":" + restPort() + "/ungracefulReboot"
	_, err := sendRequest("POST", url, nil)
	return err
}

// WaitAgentsReachable probes the agent on every node and reports the
// first one that cannot be reached.
func WaitAgentsReachable(serverAddrs []string) error {
	for _, addr := range serverAddrs {
		if err := IsAgentReachable(addr); err != nil {
			return fmt.Errorf("agent on %s is not reachable: %v", addr, err)
		}
	}
	return nil
}
