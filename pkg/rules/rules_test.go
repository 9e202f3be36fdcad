package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/layerfang/pkg/layers"
	"github.com/Sumatoshi-tech/layerfang/pkg/rules"
)

func TestParse_AccumulatesEntries(t *testing.T) {
	t.Parallel()

	policy, err := rules.Parse([]string{"domain:adaptor,service", "domain:dataset", "dataset:service"})
	require.NoError(t, err)

	assert.True(t, policy.Evaluate("domain", "adaptor"))
	assert.True(t, policy.Evaluate("domain", "service"))
	assert.True(t, policy.Evaluate("domain", "dataset"))
	assert.True(t, policy.Evaluate("dataset", "service"))
	assert.False(t, policy.Evaluate("dataset", "adaptor"))
}

func TestParse_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	policy, err := rules.Parse([]string{" domain : adaptor , service "})
	require.NoError(t, err)

	assert.True(t, policy.Evaluate("domain", "adaptor"))
	assert.True(t, policy.Evaluate("domain", "service"))
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entry   string
		wantErr error
	}{
		{name: "no separator", entry: "domain", wantErr: rules.ErrMissingSeparator},
		{name: "empty source", entry: ":adaptor", wantErr: rules.ErrEmptySource},
		{name: "empty destinations", entry: "domain:", wantErr: rules.ErrEmptyTargets},
		{name: "only commas", entry: "domain:,,", wantErr: rules.ErrEmptyTargets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := rules.Parse([]string{tt.entry})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDefault_LayeredPolicy(t *testing.T) {
	t.Parallel()

	policy := rules.Default()

	assert.True(t, policy.Evaluate("domain", "dataset"))
	assert.True(t, policy.Evaluate("domain", "adaptor"))
	assert.True(t, policy.Evaluate("domain", "service"))
	assert.True(t, policy.Evaluate("dataset", "adaptor"))
	assert.True(t, policy.Evaluate("dataset", "service"))
	assert.True(t, policy.Evaluate("adaptor", "dataset"))
	assert.True(t, policy.Evaluate("adaptor", "service"))

	// Service is the outermost layer and imports freely.
	assert.False(t, policy.Evaluate("service", "domain"))
	assert.False(t, policy.Evaluate("service", "adaptor"))

	// Inward edges stay legal.
	assert.False(t, policy.Evaluate("adaptor", "domain"))
	assert.False(t, policy.Evaluate("dataset", "domain"))
}

func TestEvaluate_ReservedLayersNeverCheckable(t *testing.T) {
	t.Parallel()

	policy := rules.Default()

	assert.False(t, policy.Evaluate(layers.Root, "adaptor"))
	assert.False(t, policy.Evaluate(layers.Other, "adaptor"))
	assert.False(t, policy.Evaluate("domain", layers.Root))
	assert.False(t, policy.Evaluate("domain", layers.Other))
}

func TestEvaluate_SelfForbidden(t *testing.T) {
	t.Parallel()

	policy, err := rules.Parse([]string{"adaptor:adaptor"})
	require.NoError(t, err)

	assert.True(t, policy.Evaluate("adaptor", "adaptor"))
}

func TestEvaluate_AbsentSourceForbidsNothing(t *testing.T) {
	t.Parallel()

	policy, err := rules.Parse([]string{"domain:service"})
	require.NoError(t, err)

	assert.False(t, policy.Evaluate("adaptor", "service"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	declared := layers.NewNames([]string{"domain", "service"})

	valid, err := rules.Parse([]string{"domain:service"})
	require.NoError(t, err)
	require.NoError(t, valid.Validate(declared))

	undeclaredSrc, err := rules.Parse([]string{"adaptor:service"})
	require.NoError(t, err)
	require.ErrorIs(t, undeclaredSrc.Validate(declared), rules.ErrUndeclaredLayer)

	undeclaredDst, err := rules.Parse([]string{"domain:adaptor"})
	require.NoError(t, err)
	require.ErrorIs(t, undeclaredDst.Validate(declared), rules.ErrUndeclaredLayer)

	reserved, err := rules.Parse([]string{"root:service"})
	require.NoError(t, err)
	require.ErrorIs(t, reserved.Validate(declared), rules.ErrReservedLayer)
}
