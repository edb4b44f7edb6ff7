package main

import (
	"fmt"
	"log"
	"os"
	"time"

	flags "github.com/jessevdk/go-flags"

	"glusterfs-e2e/common/glustertest"
)

// brickfault drives a single fault-injection round against a live
// cluster, for manual debugging outside the test suites.

type options struct {
	PrimaryNode string `short:"n" long:"node" required:"true" description:"management node to run gluster CLI commands on"`
	Volume      string `short:"v" long:"volume" required:"true" description:"volume to operate on"`
	Timeout     int    `short:"t" long:"timeout" default:"300" description:"seconds to wait for bricks to come back online"`
	Recover     bool   `short:"r" long:"recover" description:"bring the bricks back online after injecting the fault"`
}

func banner() {
	fmt.Println("brickfault started")
}

func main() {
	banner()

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Brick fault injector"
	parser.LongDescription = "Selects a quorum-safe set of bricks on a volume and brings them offline"

	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		os.Exit(code)
	}

	cluster := glustertest.NewCluster(opts.PrimaryNode)

	faults := cluster.SelectBricksToBringOffline(opts.Volume)
	if faults.Empty() {
		log.Fatalf("no bricks can be safely brought offline on volume %s", opts.Volume)
	}
	for _, brick := range faults.All() {
		fmt.Printf("selected %s\n", brick)
	}

	if err := cluster.BringBricksOffline(opts.Volume, faults.All()); err != nil {
		log.Fatalf("failed to bring bricks offline: %v", err)
	}
	offline, err := cluster.AreBricksOffline(opts.Volume, faults.All())
	if err != nil {
		log.Fatalf("failed to verify brick state: %v", err)
	}
	if !offline {
		log.Fatalf("selected bricks did not go offline on volume %s", opts.Volume)
	}
	fmt.Println("bricks offline")

	if !opts.Recover {
		return
	}

	if err := cluster.BringBricksOnline(opts.Volume, faults.All()); err != nil {
		log.Fatalf("failed to bring bricks online: %v", err)
	}
	online, err := cluster.WaitForBricksToBeOnline(opts.Volume, time.Duration(opts.Timeout)*time.Second)
	if err != nil {
		log.Fatalf("failed while waiting for bricks: %v", err)
	}
	if !online {
		log.Fatalf("bricks did not come online within %ds", opts.Timeout)
	}
	fmt.Println("bricks online")
}
