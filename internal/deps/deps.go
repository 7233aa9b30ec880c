// Package deps verifies the external binaries narration runs depend on.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names one external binary and what the pipeline uses it for.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the probe result for one requirement. Command holds the
// resolved path when the binary is available.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Check probes a single requirement on PATH.
func Check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// CheckBinaries probes every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(req))
	}
	return results
}
