package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/gorilla/mux"
)

// CmdArgs carries a shell command to execute on this node
type CmdArgs struct {
	Cmd string `json:"cmd"`
}

// ServiceArgs names a systemd service to operate on
type ServiceArgs struct {
	Service string `json:"service"`
}

const (
	InternalServerErrorCode      = 500
	UnprocessableEntityErrorCode = 422
)

func homePage(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "e2e-agent ready\n")
}

func main() {
	handleRequests()
}

func handleRequests() {
	nodeIP := os.Getenv("MY_NODE_IP")
	restPort := os.Getenv("REST_PORT")
	if restPort == "" {
		restPort = "10012"
	}
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/", homePage)
	router.HandleFunc("/exec", execCmd).Methods("POST")
	router.HandleFunc("/restartService", restartService).Methods("POST")
	router.HandleFunc("/ungracefulReboot", ungracefulReboot).Methods("POST")
	log.Fatal(http.ListenAndServe(nodeIP+":"+restPort, router))
}

func ungracefulReboot(w http.ResponseWriter, r *http.Request) {
	go func() {
		if err := UngracefulReboot(); err != nil {
			log.Print(err)
		}
	}()
}

func restartService(w http.ResponseWriter, r *http.Request) {
	var args ServiceArgs
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&args); err != nil {
		fmt.Fprint(w, err.Error())
	}
	if args.Service == "" {
		w.WriteHeader(UnprocessableEntityErrorCode)
		fmt.Fprint(w, "no service passed")
		return
	}
	log.Printf("restarting %s", args.Service)
	output, err := exec.Command("systemctl", "restart", args.Service).CombinedOutput()
	if err != nil {
		w.WriteHeader(InternalServerErrorCode)
		fmt.Fprintf(w, "%v: %s", err, output)
		return
	}
	fmt.Fprintf(w, "restarted %s\n", args.Service)
}

func execCmd(w http.ResponseWriter, r *http.Request) {
	var cmdline CmdArgs
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&cmdline); err != nil {
		fmt.Fprint(w, err.Error())
	}
	if len(cmdline.Cmd) == 0 {
		w.WriteHeader(UnprocessableEntityErrorCode)
		fmt.Fprint(w, "no command passed")
		return
	}
	// brick kill commands are shell pipelines, hand them to a shell
	// rather than splitting the argument vector ourselves
	var cmd *exec.Cmd
	if strings.ContainsAny(cmdline.Cmd, "|&`$") {
		cmd = exec.Command("sh", "-c", cmdline.Cmd)
		log.Printf("sh -c %q", cmdline.Cmd)
	} else {
		cmdArgs := strings.Fields(cmdline.Cmd)
		cmd = exec.Command(cmdArgs[0], cmdArgs[1:]...)
		log.Printf("%s", cmdline.Cmd)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		w.WriteHeader(InternalServerErrorCode)
		fmt.Fprintf(w, "%v: %s", err, output)
	} else {
		fmt.Fprint(w, string(output))
	}
}
