package common

import (
	"strings"

	"github.com/google/uuid"
)

// UniqueVolumeName returns a volume name which is safe to use when
// several test runs share the same cluster.
func UniqueVolumeName(prefix string) string {
	id := strings.Split(uuid.New().String(), "-")[0]
	return prefix + "-" + id
}
