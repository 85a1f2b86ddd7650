package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sakif/hikelog/internal/model"
)

// cliEnv runs commands against one database file in a private HOME and
// working directory, so no real hikelog.yaml or data directory is touched.
type cliEnv struct {
	t  *testing.T
	db string
}

type result struct {
	stdout, stderr string
	code           int
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return &cliEnv{t: t, db: filepath.Join(dir, "hikes.db")}
}

// run executes one CLI invocation. Each call opens and closes the database,
// as separate processes would.
func (e *cliEnv) run(stdin string, args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--db", e.db}, args...)
	code := Execute(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	res := e.run("", args...)
	require.Equal(e.t, ExitSuccess, res.code, "args %v\nstdout: %s\nstderr: %s", args, res.stdout, res.stderr)
	return res.stdout
}

// seed logs two hikes (ids 1 and 2) and two observations on hike 1.
func (e *cliEnv) seed() {
	e.t.Helper()
	e.mustRun("hike", "add", "--yes",
		"--name", "Ridge Walk", "--location", "Hill Park", "--date", "03/10/2025",
		"--distance", "8.5", "--duration", "3", "--elevation", "400", "--group-size", "4",
		"--difficulty", "moderate", "--parking", "--terrain", "rocky")
	e.mustRun("hike", "add", "--yes",
		"--name", "Lake Loop", "--location", "Lakeside", "--date", "01/15/2025",
		"--distance", "5", "--duration", "1.5", "--elevation", "50", "--group-size", "2")
	e.mustRun("obs", "add", "1", "--title", "Lunch", "--time", "2025-03-10 12:30", "--comment", "by the cairn")
	e.mustRun("obs", "add", "1", "--title", "Trailhead", "--time", "2025-03-10 08:05", "--comment", "cold start")
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// =========================================================================
// GOLDEN RENDERINGS
// =========================================================================

func TestGolden_HikeList(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	newGoldie(t).Assert(t, "hike_list", []byte(e.mustRun("hike", "list")))
}

func TestGolden_HikeListJSON(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	newGoldie(t).Assert(t, "hike_list_json", []byte(e.mustRun("--format", "json", "hike", "list")))
}

func TestGolden_HikeGet(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	newGoldie(t).Assert(t, "hike_get", []byte(e.mustRun("hike", "get", "1")))
}

func TestGolden_ObservationList(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	newGoldie(t).Assert(t, "obs_list", []byte(e.mustRun("obs", "list", "1")))
}

// =========================================================================
// HIKE COMMANDS
// =========================================================================

func TestHikeAdd_ConfirmationShowsSummary(t *testing.T) {
	e := newCLIEnv(t)

	args := []string{"hike", "add",
		"--name", "Ridge Walk", "--location", "Hill Park", "--date", "03/10/2025",
		"--distance", "8.5", "--duration", "3", "--elevation", "400", "--group-size", "4"}

	declined := e.run("n\n", args...)
	assert.Equal(t, ExitSuccess, declined.code)
	assert.Contains(t, declined.stderr, "Distance: 8.5 km")
	assert.Contains(t, declined.stderr, "Difficulty: Easy")
	assert.Contains(t, declined.stderr, "Save this hike? [y/N]: ")
	assert.Equal(t, "Cancelled.\n", declined.stdout)
	assert.Equal(t, "No hikes found.\n", e.mustRun("hike", "list"))

	accepted := e.run("yes\n", args...)
	assert.Equal(t, ExitSuccess, accepted.code, accepted.stderr)
	assert.Contains(t, accepted.stdout, "ID: 1")
}

func TestHikeAdd_EOFDeclines(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run("", "hike", "add", "--name", "a", "--location", "b", "--date", "c",
		"--distance", "1", "--duration", "1", "--elevation", "1", "--group-size", "1")
	assert.Equal(t, ExitSuccess, res.code)
	assert.Equal(t, "Cancelled.\n", res.stdout)
}

func TestHikeAdd_InvalidInput(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run("", "hike", "add", "--yes", "--name", "a", "--location", "b", "--date", "c",
		"--distance", "far", "--duration", "1", "--elevation", "1", "--group-size", "1")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "distance must be a number")
}

func TestHikeUpdate_KeepsUnsetFields(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	e.mustRun("hike", "update", "1", "--yes", "--distance", "9.25", "--difficulty", "Hard")

	var resp struct {
		Data model.Hike `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(e.mustRun("--format", "json", "hike", "get", "1")), &resp))
	assert.Equal(t, int64(1), resp.Data.ID)
	assert.Equal(t, "Ridge Walk", resp.Data.Name)
	assert.Equal(t, 9.25, resp.Data.DistanceKm)
	assert.Equal(t, model.DifficultyHard, resp.Data.Difficulty)
	assert.True(t, resp.Data.Parking)
	assert.Equal(t, "rocky", resp.Data.Terrain)
}

func TestHikeUpdate_NothingToChange(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	res := e.run("", "hike", "update", "1", "--yes")
	assert.Equal(t, ExitCommandError, res.code)
}

func TestHikeDelete_CascadesAndConfirms(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	declined := e.run("\n", "hike", "delete", "1")
	assert.Equal(t, ExitSuccess, declined.code)
	assert.Contains(t, declined.stderr, `Delete hike "Ridge Walk" and all of its observations?`)

	assert.Equal(t, "Deleted hike 1.\n", e.run("y\n", "hike", "delete", "1").stdout)

	res := e.run("", "obs", "get", "1")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "observation not found with id 1")

	res = e.run("", "obs", "list", "1")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "hike not found with id 1")
}

func TestHikeList_Filters(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	byName := e.mustRun("hike", "list", "--name", "RIDGE")
	assert.Contains(t, byName, "Ridge Walk")
	assert.NotContains(t, byName, "Lake Loop")

	assert.Equal(t, byName, e.mustRun("hike", "search", "  ridge "))

	short := e.mustRun("hike", "list", "--max-distance", "6")
	assert.Contains(t, short, "Lake Loop")
	assert.NotContains(t, short, "Ridge Walk")

	// Not a number: the distance filter is ignored.
	all := e.mustRun("hike", "list", "--max-distance", "abc")
	assert.Contains(t, all, "Lake Loop")
	assert.Contains(t, all, "Ridge Walk")

	assert.Equal(t, "No hikes found.\n", e.mustRun("hike", "list", "--date", "3/10/2025"))

	mixed := e.run("", "hike", "list", "--name", "a", "--location", "b")
	assert.Equal(t, ExitCommandError, mixed.code)
}

// =========================================================================
// OBSERVATION COMMANDS
// =========================================================================

func TestObservationAdd_DefaultsTimeToNow(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	before := model.FormatObservationTime(time.Now())
	var resp struct {
		Data model.Observation `json:"data"`
	}
	out := e.mustRun("--format", "json", "obs", "add", "2", "--title", "Heron")
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	after := model.FormatObservationTime(time.Now())

	assert.Equal(t, int64(2), resp.Data.HikeID)
	assert.GreaterOrEqual(t, resp.Data.Time, before)
	assert.LessOrEqual(t, resp.Data.Time, after)
}

func TestObservationAdd_MissingHike(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run("", "--format", "json", "obs", "add", "9", "--title", "orphan")
	assert.Equal(t, ExitFailure, res.code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "integrity_violation", resp.Error.Code)
}

func TestObservationUpdateAndDelete(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	out := e.mustRun("obs", "update", "2", "--comment", "frosty")
	assert.Contains(t, out, "Title: Trailhead")
	assert.Contains(t, out, "Comment: frosty")

	assert.Equal(t, "Deleted observation 2.\n", e.mustRun("obs", "delete", "2"))
	assert.Equal(t, ExitFailure, e.run("", "obs", "delete", "2").code)
}

// =========================================================================
// RESET / TOKEN / GLOBALS
// =========================================================================

func TestReset(t *testing.T) {
	e := newCLIEnv(t)
	e.seed()

	declined := e.run("no\n", "reset")
	assert.Equal(t, "Cancelled.\n", declined.stdout)
	assert.Contains(t, e.mustRun("hike", "list"), "Ridge Walk")

	var resp struct {
		Data map[string]int64 `yaml:"data"`
	}
	out := e.mustRun("--format", "yaml", "reset", "--yes")
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(2), resp.Data["deleted"])

	assert.Equal(t, "No hikes found.\n", e.mustRun("hike", "list"))
}

func TestToken(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run("", "token")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "auth.secret is not set")

	t.Setenv("HIKELOG_AUTH_SECRET", "0123456789abcdef0123456789abcdef")
	out := strings.TrimSpace(e.mustRun("token"))
	assert.Equal(t, 2, strings.Count(out, "."))
}

func TestUsageErrors(t *testing.T) {
	e := newCLIEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"hike", "climb"}},
		{"unknown flag", []string{"hike", "list", "--colour"}},
		{"missing id", []string{"hike", "get"}},
		{"bad id", []string{"hike", "get", "abc"}},
		{"bad format", []string{"--format", "xml", "hike", "list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.run("", tt.args...)
			assert.Equal(t, ExitCommandError, res.code, "stderr: %s", res.stderr)
		})
	}
}

func TestNotFoundExitCode(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run("", "hike", "get", "42")
	assert.Equal(t, ExitFailure, res.code)
	assert.Equal(t, "Error: hike not found with id 42\n", res.stderr)
}
