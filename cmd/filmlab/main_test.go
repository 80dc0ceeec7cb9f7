package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/filmlab"
	"github.com/gogpu/filmlab/internal/config"
	imgio "github.com/gogpu/filmlab/internal/image"
	"github.com/gogpu/filmlab/lut"
)

func loadConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	f := config.Flags()
	require.NoError(t, f.Parse(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...)))
	cfg, err := config.Load(f)
	require.NoError(t, err)
	return cfg
}

func TestBuildRequest(t *testing.T) {
	dir := t.TempDir()
	adj := filepath.Join(dir, "look.json")
	require.NoError(t, os.WriteFile(adj, []byte(`{"exposure": 0.5, "film": {"intensity": 60}}`), 0o600))

	cfg := loadConfig(t, "-a", adj, "--backend", "cpu", "--timestamp", "--max-dimension", "1024")
	req, err := buildRequest(cfg)
	require.NoError(t, err)
	require.Equal(t, filmlab.PreferCPU, req.Preference)
	require.Equal(t, filmlab.ModeExport, req.Mode)
	require.Equal(t, 1024, req.MaxDimension)
	require.NotNil(t, req.Adjustments.Exposure)
	require.InDelta(t, 0.5, *req.Adjustments.Exposure, 1e-9)
	require.InDelta(t, 60, *req.Adjustments.Film.Intensity, 1e-9)
	require.True(t, *req.Adjustments.Timestamp.Enabled)
	require.Nil(t, req.Profile)
}

func TestBuildRequestRejectsUnknownPreset(t *testing.T) {
	cfg := loadConfig(t, "--preset", "no-such-film")
	_, err := buildRequest(cfg)
	require.ErrorContains(t, err, "unknown preset")
}

func TestImportLUTs(t *testing.T) {
	dir := t.TempDir()
	cube := "LUT_3D_SIZE 2\n" +
		"0 0 0\n1 0 0\n0 1 0\n1 1 0\n" +
		"0 0 1\n1 0 1\n0 1 1\n1 1 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flat.cube"), []byte(cube), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	r := lut.NewRegistry()
	before := len(r.IDs())
	require.NoError(t, importLUTs(r, dir))
	require.Len(t, r.IDs(), before+1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cube"), []byte("LUT_3D_SIZE 2\n0 0 0\n"), 0o600))
	require.Error(t, importLUTs(lut.NewRegistry(), dir))
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, filepath.Join("out", "photo.jpg"), outputPath("out", "/in/photo.png", imgio.FormatJPEG))
	require.Equal(t, filepath.Join("out", "photo.png"), outputPath("out", "photo.jpeg", imgio.FormatPNG))
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	f, err := os.Create(in)
	require.NoError(t, err)
	img := imgio.NewPool(1, 1).Get(16, 8)
	require.NoError(t, imgio.EncodePNG(f, img))
	require.NoError(t, f.Close())

	out := filepath.Join(dir, "out")
	cfg := loadConfig(t, "-o", out, "--backend", "cpu", "--gpu=false", "--format", "png")
	failed, err := run(context.Background(), cfg, []string{in, filepath.Join(dir, "missing.png")})
	require.NoError(t, err)
	require.Equal(t, 1, failed)

	got, err := imgio.Load(filepath.Join(out, "in.png"))
	require.NoError(t, err)
	require.Equal(t, 16, got.Rect.Dx())
	require.Equal(t, 8, got.Rect.Dy())
}
