package validate

import (
	"fmt"
	"strings"

	"github.com/zuclubit/momoto-sub008/material"
)

// Check names one constraint.
type Check int

const (
	CheckEnergy Check = iota
	CheckReciprocity
	CheckSmoothness
	CheckRange
	CheckMonotonicity
)

var allChecks = []Check{CheckEnergy, CheckReciprocity, CheckSmoothness, CheckRange, CheckMonotonicity}

func (c Check) String() string {
	switch c {
	case CheckEnergy:
		return "energy"
	case CheckReciprocity:
		return "reciprocity"
	case CheckSmoothness:
		return "smoothness"
	case CheckRange:
		return "range"
	case CheckMonotonicity:
		return "monotonicity"
	}
	return "unknown"
}

// CheckResult is the outcome of one check. A check that does not apply to
// the material passes vacuously.
type CheckResult struct {
	Check        Check
	Applicable   bool
	Passed       bool
	MaxViolation float64
	Tolerance    float64
	Samples      int
	Worst        material.Context
	Detail       string
}

func (r CheckResult) String() string {
	if !r.Applicable {
		return fmt.Sprintf("%-12s n/a", r.Check)
	}
	status := "PASS"
	if !r.Passed {
		status = "FAIL"
	}
	s := fmt.Sprintf("%-12s %s max=%.3e tol=%.1e n=%d", r.Check, status, r.MaxViolation, r.Tolerance, r.Samples)
	if !r.Passed {
		s += fmt.Sprintf(" worst=(cosθi=%.4f cosθo=%.4f λ=%.0fnm)", r.Worst.CosThetaI(), r.Worst.CosThetaO(), r.Worst.Wavelength)
	}
	if r.Detail != "" {
		s += " " + r.Detail
	}
	return s
}

// Report collects every check run against one material.
type Report struct {
	Kind   material.Kind
	Checks []CheckResult
}

func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

func (r Report) Failures() []CheckResult {
	var out []CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// Result looks up the outcome of one check.
func (r Report) Result(check Check) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Check == check {
			return c, true
		}
	}
	return CheckResult{}, false
}

func (r Report) String() string {
	var b strings.Builder
	verdict := "PASSED"
	if !r.Passed() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&b, "%s: %s\n", r.Kind, verdict)
	for _, c := range r.Checks {
		b.WriteString("  ")
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}
