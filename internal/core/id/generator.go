// Package id provides ID generation for merge invocations
package id

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invocation generates an ID that is collision-free across concurrent
// processes. The process ID keeps parallel batch workers apart; the random
// suffix keeps repeated invocations within one process apart.
func Invocation(name string) string {
	safeName := sanitize(name)

	timestamp := time.Now().Unix()
	randomSuffix := uuid.New().String()[:8]

	if safeName == "" {
		return fmt.Sprintf("%d-%d-%s", os.Getpid(), timestamp, randomSuffix)
	}
	return fmt.Sprintf("%s-%d-%d-%s", safeName, os.Getpid(), timestamp, randomSuffix)
}

// sanitize reduces a name to lowercase alphanumerics and hyphens
func sanitize(name string) string {
	safeName := strings.ToLower(name)
	safeName = strings.ReplaceAll(safeName, " ", "-")
	safeName = strings.ReplaceAll(safeName, "_", "-")

	var cleaned []rune
	for _, r := range safeName {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			cleaned = append(cleaned, r)
		}
	}
	safeName = string(cleaned)

	if len(safeName) > 20 {
		safeName = safeName[:20]
	}

	return safeName
}
