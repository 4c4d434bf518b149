package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/calvinalkan/perfagg/internal/cli"
)

func Test_Show_Prints_Metadata_And_Statistics_When_Scenario_Exists(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteScenario("run-1", "OEM_PLANTS=2\n# Supplier\nSUPPLIER_PLANTS=4\n",
		`{"Initiate Transfer": {"transaction": "Initiate Transfer", "meanResTime": 81.5, "sampleCount": 120}}`)

	got := c.MustRun("show", "results", "run-1")

	cli.AssertContains(t, got, "name=run-1")
	cli.AssertContains(t, got, "dir="+filepath.Join(c.Dir, "results", "run-1"))
	cli.AssertContains(t, got, "OEM_PLANTS=2\n")
	cli.AssertContains(t, got, "# Supplier\nSUPPLIER_PLANTS=4")
	cli.AssertContains(t, got, "[Initiate Transfer]\nmeanResTime=81.5\nsampleCount=120")
}

func Test_Show_Limits_Metrics_When_Metric_Flag_Set(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteScenario("run-1", "",
		`{"Initiate Transfer": {"meanResTime": 81.5, "sampleCount": 120}, "Other": {"sampleCount": 3}}`)

	got := c.MustRun("show", "--metric", "meanResTime", "results", "run-1")

	cli.AssertContains(t, got, "meanResTime=81.5")
	cli.AssertNotContains(t, got, "sampleCount")
	cli.AssertNotContains(t, got, "[Other]")
}

func Test_Show_Fails_When_Scenario_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteScenario("run-1", "", `{}`)

	stderr := c.MustFail("show", "results", "run-2")
	cli.AssertContains(t, stderr, "scenario not found: run-2")

	stderr = c.MustFail("show", "results")
	cli.AssertContains(t, stderr, "scenario name is required")
}
