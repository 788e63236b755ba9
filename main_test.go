package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pileup-backend/models"
)

func runPlan(t *testing.T, args ...string) map[string]json.RawMessage {
	t.Helper()
	t.Setenv("FIELD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"plan"}, args...))
	require.NoError(t, cmd.Execute())

	result := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	return result
}

func TestPlanCommand_Corner(t *testing.T) {
	result := runPlan(t, "--x", "-2", "--y", "8")

	var plan models.PileupPlan
	require.NoError(t, json.Unmarshal(result["plan"], &plan))
	assert.Equal(t, models.RegionAttackingLeftCorner, plan.Region)
	require.Len(t, plan.Targets, 1)
	assert.InDelta(t, 7.0, plan.Targets[0].Y, 1e-9)

	var b map[string]float64
	require.NoError(t, json.Unmarshal(result["boundaries"], &b))
	assert.InDelta(t, 7.875, b["their_end"], 1e-12)
	assert.InDelta(t, -1.0, b["left"], 1e-12)
}

func TestPlanCommand_CenterSeeded(t *testing.T) {
	first := runPlan(t, "--x", "0", "--y", "4", "--seed", "9")
	second := runPlan(t, "--x", "0", "--y", "4", "--seed", "9")

	assert.JSONEq(t, string(first["plan"]), string(second["plan"]))
}

func TestPlanCommand_RequiresFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"plan", "--x", "1"})
	assert.Error(t, cmd.Execute())
}
