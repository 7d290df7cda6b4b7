package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/bouncesim/internal/config"
	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/experiment"
)

func newSceneCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addSceneFlags(cmd)
	return cmd
}

func TestLoadSceneFlagsOverridePreset(t *testing.T) {
	envFile = filepath.Join(t.TempDir(), "missing.env")
	configFile = ""

	cmd := newSceneCmd()
	if err := cmd.Flags().Set("gravity", "100"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("substeps", "4"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadScene(cmd, "rain")
	if err != nil {
		t.Fatalf("loadScene failed: %v", err)
	}
	if cfg.Gravity != 100 || cfg.Substeps != 4 {
		t.Errorf("flags not applied: gravity %v substeps %d", cfg.Gravity, cfg.Substeps)
	}
	if cfg.RandomBodies != config.Presets["rain"].RandomBodies {
		t.Error("preset values lost")
	}
}

func TestLoadSceneErrors(t *testing.T) {
	envFile = filepath.Join(t.TempDir(), "missing.env")
	configFile = ""

	if _, err := loadScene(newSceneCmd(), "nope"); err == nil {
		t.Error("expected unknown scene error")
	}

	cmd := newSceneCmd()
	cmd.Flags().Set("substeps", "0")
	if _, err := loadScene(cmd, "trio"); err == nil {
		t.Error("expected invalid substeps to be rejected")
	}
}

func TestLoadSceneFromFile(t *testing.T) {
	envFile = filepath.Join(t.TempDir(), "missing.env")
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := config.GetPreset("pairs")
	cfg.Duration = 2
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	configFile = path
	defer func() { configFile = "" }()

	got, err := loadScene(newSceneCmd(), "ignored")
	if err != nil {
		t.Fatalf("loadScene failed: %v", err)
	}
	if got.Duration != 2 || len(got.Bodies) != 4 {
		t.Errorf("unexpected scene %+v", got)
	}
}

func TestSceneBuilderIsRepeatable(t *testing.T) {
	build := sceneBuilder(config.GetPreset("rain"), nil)
	a, err := build()
	if err != nil {
		t.Fatal(err)
	}
	b, err := build()
	if err != nil {
		t.Fatal(err)
	}
	sa, sb := a.World().Snapshot(), b.World().Snapshot()
	if len(sa) != len(sb) {
		t.Fatalf("different body counts %d and %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i].Pos != sb[i].Pos || sa[i].Color != sb[i].Color {
			t.Errorf("body %d differs between builds", i)
		}
	}
}

func TestFrameSeries(t *testing.T) {
	frames := []dynamo.Frame{
		{Bodies: 3, Energy: 10, Collisions: 1},
		{Bodies: 4, Energy: 12, Collisions: 0},
	}
	if got := frameSeries(frames, "bodies"); got[1] != 4 {
		t.Errorf("bodies series = %v", got)
	}
	if got := frameSeries(frames, "energy"); got[0] != 10 {
		t.Errorf("energy series = %v", got)
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"gravity=0, 250,500", "restitution=1"})
	if err != nil {
		t.Fatalf("parseGrid failed: %v", err)
	}
	if len(names) != 2 || names[0] != "gravity" || len(ranges[0]) != 3 || ranges[0][1] != 250 {
		t.Errorf("unexpected grid %v %v", names, ranges)
	}

	for _, bad := range []string{"gravity", "gravity=", "gravity=a,b"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestProgressPrinterOncePerSecond(t *testing.T) {
	cfg := config.GetPreset("trio")
	cfg.Duration = 2.5

	reg := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(reg, reg.DefaultMetrics(cfg.Gravity)); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	var buf bytes.Buffer
	exp.Simulator().AddObserver(&progressPrinter{out: &buf})

	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 progress lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "t= 1.0s bodies=") {
		t.Errorf("unexpected first line %q", lines[0])
	}
}
