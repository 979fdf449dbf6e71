// Package cli implements the operational subcommands of the kindred binary.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kindred-stories/kindred/internal/adminroles"
	"github.com/kindred-stories/kindred/internal/dashboard"
	"github.com/kindred-stories/kindred/jobs"
)

// ExitAnomalies is returned by scan when stored role values failed to parse.
const ExitAnomalies = 10

// RolesOptions defines flags shared by the roles commands.
type RolesOptions struct {
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

func (o *RolesOptions) defaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// CheckSummary is the JSON output of roles check.
type CheckSummary struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// CheckCommand re-runs the role table and tab table self-checks.
func CheckCommand(opts RolesOptions) int {
	opts.defaults()
	err := errors.Join(adminroles.Validate(), dashboard.ValidateTabs())
	summary := CheckSummary{OK: err == nil}
	if err != nil {
		summary.Errors = strings.Split(err.Error(), "\n")
	}
	if opts.JSONOutput {
		if encErr := json.NewEncoder(opts.Stdout).Encode(summary); encErr != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "roles check: encode json: %v\n", encErr)
			return 1
		}
	} else if summary.OK {
		_, _ = fmt.Fprintf(opts.Stdout, "ok: %d roles, %d capabilities, %d tabs\n",
			len(adminroles.Roles()), len(adminroles.Capabilities()), len(dashboard.Tabs()))
	} else {
		for _, line := range summary.Errors {
			_, _ = fmt.Fprintln(opts.Stderr, line)
		}
	}
	if !summary.OK {
		return 1
	}
	return 0
}

// MatrixCommand prints every role with its granted capabilities.
func MatrixCommand(opts RolesOptions) int {
	opts.defaults()
	matrix := adminroles.Matrix()
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(matrix); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "roles matrix: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	tw := tabwriter.NewWriter(opts.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROLE\tLABEL\tCAPABILITIES")
	for _, def := range matrix {
		granted := def.Permissions.Granted()
		names := make([]string, len(granted))
		for i, c := range granted {
			names[i] = c.String()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Role, def.Label, strings.Join(names, ","))
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "roles matrix: %v\n", err)
		return 1
	}
	return 0
}

// ScanSummary is the JSON output of roles scan.
type ScanSummary struct {
	Scanned   int            `json:"scanned"`
	ByColumn  map[string]int `json:"by_column"`
	Anomalies []ScanAnomaly  `json:"anomalies"`
}

// ScanAnomaly is one rejected stored value.
type ScanAnomaly struct {
	UserID string `json:"user_id"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// ScanCommand runs the role integrity scan inline and reports anomalies.
// It exits with ExitAnomalies when any stored value failed to parse.
func ScanCommand(ctx context.Context, job *jobs.RoleIntegrityJob, opts RolesOptions) int {
	opts.defaults()
	report, err := job.Run(ctx, jobs.RoleIntegrityPayload{Trigger: "cli"})
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "roles scan: %v\n", err)
		return 1
	}
	summary := ScanSummary{Scanned: report.Scanned, ByColumn: report.ByColumn, Anomalies: []ScanAnomaly{}}
	for _, a := range report.Anomalies {
		summary.Anomalies = append(summary.Anomalies, ScanAnomaly{UserID: a.UserID, Column: a.Field, Value: a.Value})
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "roles scan: encode json: %v\n", err)
			return 1
		}
	} else {
		_, _ = fmt.Fprintf(opts.Stdout, "scanned %d users, %d anomalies\n", summary.Scanned, len(summary.Anomalies))
		for _, a := range summary.Anomalies {
			_, _ = fmt.Fprintf(opts.Stdout, "  %s %s=%q\n", a.UserID, a.Column, a.Value)
		}
	}
	if len(summary.Anomalies) > 0 {
		return ExitAnomalies
	}
	return 0
}
