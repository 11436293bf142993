// Package compat checks, once per process, that the crypto primitives the
// client depends on are present and behave. A failed check is a hard stop;
// there is no fallback to weaker primitives.
package compat

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
)

// Feature names reported in Report.MissingFeatures.
const (
	FeatureSecureRandom = "secure_random"
	FeatureAEAD         = "aead"
	FeatureKDF          = "kdf"
)

// Probe checks one primitive.
type Probe struct {
	Name  string
	Check func() error
}

// DefaultProbes returns the probes for every primitive the client uses.
func DefaultProbes() []Probe {
	return []Probe{
		{Name: FeatureSecureRandom, Check: cryptox.SelfTestRandom},
		{Name: FeatureAEAD, Check: cryptox.SelfTestAEAD},
		{Name: FeatureKDF, Check: cryptox.SelfTestKDF},
	}
}

// Report is the outcome of running the probes.
type Report struct {
	Supported       bool
	MissingFeatures []string
}

// Guard runs its probes on first use and caches the report. It is safe for
// concurrent use; the report never changes afterwards.
type Guard struct {
	probes []Probe
	once   sync.Once
	report Report
}

// NewGuard returns a guard over probes, or over DefaultProbes when none
// are given.
func NewGuard(probes ...Probe) *Guard {
	if len(probes) == 0 {
		probes = DefaultProbes()
	}
	return &Guard{probes: probes}
}

// Check runs the probes once and returns the cached report.
func (g *Guard) Check() Report {
	g.once.Do(func() {
		r := Report{Supported: true}
		for _, p := range g.probes {
			if err := runProbe(p); err != nil {
				r.Supported = false
				r.MissingFeatures = append(r.MissingFeatures, p.Name)
			}
		}
		g.report = r
	})

	r := g.report
	r.MissingFeatures = append([]string(nil), g.report.MissingFeatures...)
	return r
}

// Require returns ErrUnsupportedEnvironment naming what is missing.
func (g *Guard) Require() error {
	r := g.Check()
	if r.Supported {
		return nil
	}
	return fmt.Errorf("%w: missing %s", common.ErrUnsupportedEnvironment, strings.Join(r.MissingFeatures, ", "))
}

// runProbe treats a panicking probe as a missing feature.
func runProbe(p Probe) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("probe %s panicked: %v", p.Name, rec)
		}
	}()
	if p.Check == nil {
		return fmt.Errorf("probe %s has no check", p.Name)
	}
	return p.Check()
}

var (
	defaultGuard     *Guard
	defaultGuardOnce sync.Once
)

// Default returns the process-wide guard over DefaultProbes.
func Default() *Guard {
	defaultGuardOnce.Do(func() {
		defaultGuard = NewGuard()
	})
	return defaultGuard
}
