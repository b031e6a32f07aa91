package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fieldservice/internal/adapters/in/cli"
	"fieldservice/internal/adapters/in/payload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plan = `
jobs:
  - id: 11111111-2222-4333-8444-555555555555
    location: {latitude: 52.52, longitude: 13.405}
    required_skills: [electrical]
    priority: low
    estimated_duration_hours: 2
  - id: 66666666-7777-4888-8999-aaaaaaaaaaaa
    location: {latitude: 52.50, longitude: 13.39}
    required_skills: [electrical]
    priority: emergency
    estimated_duration_hours: 1
  - id: 9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d
    location: {latitude: 52.50, longitude: 13.39}
    required_skills: [electrical]
    priority: whenever
    estimated_duration_hours: 1
workers:
  - worker_id: 2f1c5a8e-0d3b-4c55-9a61-3e7f2b8d9c10
    home_base: {latitude: 52.51, longitude: 13.40}
    skills:
      - {id: electrical, category: trade, level: expert, years_of_experience: 6}
    capacity: {max_concurrent_jobs: 3, max_daily_hours: 8}
constraints:
  - {type: max_travel_time, value: 90}
`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func TestBatchCommand(t *testing.T) {
	out, _, err := run(t, plan, "batch", "--input", "-", "--now", "2025-03-10T08:00:00Z", "--optimize")

	require.NoError(t, err)
	var results []payload.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)

	assert.Equal(t, "66666666-7777-4888-8999-aaaaaaaaaaaa", results[0].JobID)
	assert.True(t, results[0].Feasible)
	assert.Equal(t, "11111111-2222-4333-8444-555555555555", results[1].JobID)
	assert.True(t, results[1].Feasible)
	require.NotNil(t, results[0].ScheduledStart)
	assert.Equal(t, 2025, results[0].ScheduledStart.Year())

	assert.Equal(t, "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d", results[2].JobID)
	assert.Equal(t, "validation", results[2].Failure)
}

func TestBatchCommand_RejectsInvalidWorker(t *testing.T) {
	broken := strings.Replace(plan, "level: expert", "level: wizard", 1)

	_, _, err := run(t, broken, "batch", "--input", "-")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers[0]")
}

func TestJobCommand_ReadsJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"job": {
			"id": "0e6f1b52-4a3c-4d7e-8f90-1a2b3c4d5e6f",
			"location": {"latitude": 52.52, "longitude": 13.405},
			"required_skills": ["plumbing"],
			"priority": "medium",
			"estimated_duration_hours": 1.5
		},
		"workers": [{
			"worker_id": "2f1c5a8e-0d3b-4c55-9a61-3e7f2b8d9c10",
			"home_base": {"latitude": 52.51, "longitude": 13.40},
			"skills": [{"id": "plumbing", "category": "trade", "level": "advanced", "years_of_experience": 3}]
		}]
	}`), 0o600))

	out, _, err := run(t, "", "job", "--input", path, "--now", "2025-03-10T08:00:00Z")

	require.NoError(t, err)
	var result payload.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Feasible)
	require.NotNil(t, result.AssignedWorkerID)
	assert.Equal(t, "2f1c5a8e-0d3b-4c55-9a61-3e7f2b8d9c10", *result.AssignedWorkerID)
}

func TestRouteCommand_NearestNeighbourWithoutProvider(t *testing.T) {
	input := `
start: {latitude: 52.52, longitude: 13.405}
end: {latitude: 52.52, longitude: 13.405}
waypoints:
  - {latitude: 52.45, longitude: 13.30}
  - {latitude: 52.53, longitude: 13.41}
`
	out, _, err := run(t, input, "route", "--input", "-")

	require.NoError(t, err)
	var route payload.Route
	require.NoError(t, json.Unmarshal([]byte(out), &route))
	assert.Equal(t, []int{1, 0}, route.Ordering)
	assert.Len(t, route.Legs, 3)
	assert.Equal(t, "fallback", route.Source)
	assert.Greater(t, route.TotalDistanceKm, 0.0)
}

func TestRootCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"batch"}, "input"},
		{"unreadable file", []string{"batch", "--input", filepath.Join(t.TempDir(), "missing.yaml")}, "read input"},
		{"bad planning time", []string{"batch", "--input", "-", "--now", "tomorrow"}, "--now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, plan, tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
