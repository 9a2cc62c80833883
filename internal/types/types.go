// Package types defines shared types used across the application.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Credentials are the login details for the trading site.
type Credentials struct {
	Username     string `yaml:"username" validate:"required,trimmed"`
	EmailAddress string `yaml:"emailAddress" validate:"required,email"`
	Password     string `yaml:"password" validate:"required,trimmed"`
}

// Target selects which of the active listings get bumped.
type Target string

const (
	TargetAll    Target = "all"
	TargetOldest Target = "oldest"
)

// Targets lists all valid targets.
var Targets = []Target{TargetAll, TargetOldest}

// ParseTarget returns the Target for s, ignoring case and surrounding whitespace.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Targets {
		if t == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target '%s'. Must be one of [%s, %s]", s, TargetAll, TargetOldest)
}

// RunConfig is fixed for the lifetime of a bump run.
type RunConfig struct {
	Target          Target
	IntervalMinutes int
}

// Interval returns the wait between two cycles.
func (rc RunConfig) Interval() time.Duration {
	return time.Duration(rc.IntervalMinutes) * time.Minute
}

// Outcome is the result of bumping a single listing.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// BumpResult represents the outcome of one listing within a cycle.
type BumpResult struct {
	Index          int     `json:"index"`
	URL            string  `json:"url"`
	Outcome        Outcome `json:"outcome"`
	ElapsedSeconds int     `json:"elapsedSeconds"`
	Error          string  `json:"error,omitempty"`
}

// CycleReport collects the results of one discover+bump pass, in input order.
type CycleReport struct {
	Cycle    int          `json:"cycle"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Results  []BumpResult `json:"results"`
}

// NrSucceeded returns the number of successfully bumped listings.
func (r CycleReport) NrSucceeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeSuccess {
			n++
		}
	}
	return n
}

// NrFailed returns the number of listings that could not be bumped.
func (r CycleReport) NrFailed() int {
	return len(r.Results) - r.NrSucceeded()
}
