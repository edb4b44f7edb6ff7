package loki

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"glusterfs-e2e/common/e2e_config"

	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

const pushURL = "https://logs-prod-us-central1.grafana.net/loki/api/v1/push"

type markerStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

type markerPayload struct {
	Streams []markerStream `json:"streams"`
}

var once sync.Once
var apiUser string
var apiPw string
var runID string
var enabled bool

func initMarkers() {
	apiUser = os.Getenv("grafana_api_user")
	apiPw = os.Getenv("grafana_api_pw")
	runID = os.Getenv("loki_run_id")

	if apiUser != "" && apiPw != "" && runID != "" {
		enabled = true
		return
	}
	// all three must be set or none
	if apiUser != "" || apiPw != "" || runID != "" {
		logf.Log.Info("Loki markers disabled, incomplete configuration",
			"userSet", apiUser != "", "passwordSet", apiPw != "", "runIdSet", runID != "")
	}
}

// SendLokiMarker pushes a run marker to Loki so that test boundaries
// can be correlated with cluster logs. Markers are silently disabled
// unless the grafana credentials and a run id are present in the
// environment.
func SendLokiMarker(text string) {
	once.Do(initMarkers)
	if !enabled {
		return
	}

	payload := markerPayload{
		Streams: []markerStream{{
			Stream: map[string]string{
				"run":    runID,
				"config": e2e_config.GetConfig().ConfigName,
				"app":    "marker",
			},
			Values: [][]string{{
				strconv.FormatInt(time.Now().UnixNano(), 10),
				text,
			}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logf.Log.Info("Failed to encode Loki marker", "error", err)
		return
	}
	req, err := http.NewRequest("POST", pushURL, bytes.NewReader(body))
	if err != nil {
		logf.Log.Info("Failed to create Loki marker request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(apiUser, apiPw)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		logf.Log.Info("Failed to send Loki marker", "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logf.Log.Info("Unexpected response from Grafana / Loki", "status code", resp.StatusCode)
	}
}
