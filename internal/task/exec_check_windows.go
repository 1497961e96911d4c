//go:build windows

package task

import (
	"os"
	"strings"
)

func isExecutable(info os.FileInfo) bool {
	name := strings.ToLower(info.Name())
	return strings.HasSuffix(name, ".exe") || strings.HasSuffix(name, ".bat") || strings.HasSuffix(name, ".cmd")
}
