// Package rules holds the forbidden import-direction policy and its
// evaluation.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/layerfang/pkg/layers"
)

// Reason is the message attached to every forbidden-direction violation.
const Reason = "Forbidden import direction by configured layer rules."

// Sentinel errors for policy construction.
var (
	ErrMissingSeparator = errors.New("expected 'from:to1,to2'")
	ErrEmptySource      = errors.New("empty source layer")
	ErrEmptyTargets     = errors.New("empty destinations")
	ErrUndeclaredLayer  = errors.New("layer not declared")
	ErrReservedLayer    = errors.New("reserved layer in rule")
)

// Policy maps a source layer to the set of destination layers it must not
// import. A layer absent from the map forbids nothing.
type Policy map[string]map[string]struct{}

// Parse builds a Policy from repeatable "from:to1,to2" entries. Entries with
// the same source accumulate destinations.
func Parse(entries []string) (Policy, error) {
	policy := Policy{}

	for _, entry := range entries {
		src, dstCSV, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid forbid entry %q: %w", entry, ErrMissingSeparator)
		}

		src = strings.TrimSpace(src)
		if src == "" {
			return nil, fmt.Errorf("invalid forbid entry %q: %w", entry, ErrEmptySource)
		}

		targets := splitCSV(dstCSV)
		if len(targets) == 0 {
			return nil, fmt.Errorf("invalid forbid entry %q: %w", entry, ErrEmptyTargets)
		}

		set := policy[src]
		if set == nil {
			set = make(map[string]struct{}, len(targets))
			policy[src] = set
		}

		for _, target := range targets {
			set[target] = struct{}{}
		}
	}

	return policy, nil
}

// Default returns the policy used when no explicit rules are configured:
// domain code must not depend on outer layers, and the cross-cutting layers
// must not depend on each other or on service.
func Default() Policy {
	return Policy{
		"domain":  {"dataset": {}, "adaptor": {}, "service": {}},
		"dataset": {"adaptor": {}, "service": {}},
		"adaptor": {"dataset": {}, "service": {}},
	}
}

// Validate checks that every source and destination in the policy is a
// declared, non-reserved layer name.
func (p Policy) Validate(declared layers.Names) error {
	for src, targets := range p {
		err := validateName(src, declared)
		if err != nil {
			return err
		}

		for target := range targets {
			err = validateName(target, declared)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Evaluate reports whether an import edge from fileLayer to importLayer is
// forbidden. Reserved layers on either side are never checkable; a layer may
// forbid itself.
func (p Policy) Evaluate(fileLayer, importLayer string) bool {
	if layers.IsReserved(fileLayer) || layers.IsReserved(importLayer) {
		return false
	}

	targets, ok := p[fileLayer]
	if !ok {
		return false
	}

	_, forbidden := targets[importLayer]

	return forbidden
}

func validateName(name string, declared layers.Names) error {
	if layers.IsReserved(name) {
		return fmt.Errorf("%w: %q", ErrReservedLayer, name)
	}

	if !declared.Has(name) {
		return fmt.Errorf("%w: %q", ErrUndeclaredLayer, name)
	}

	return nil
}

func splitCSV(value string) []string {
	var parts []string

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}
