package main

import (
	"os"
)

// UngracefulReboot forces an immediate reboot via sysrq, skipping
// filesystem sync so the node behaves like a power failure.
func UngracefulReboot() error {
	f, err := os.OpenFile("/proc/sysrq-trigger", os.O_WRONLY, 0200)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err = f.Write([]byte("c")); err != nil {
		return err
	}
	return nil
}
