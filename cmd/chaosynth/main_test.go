package main

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/chaosynth/internal/config"
	"github.com/san-kum/chaosynth/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, ctx context.Context, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"render", "--data", t.TempDir()}, args...))
	return cmd.ExecuteContext(ctx)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRenderWritesScript(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "lorenz.strudel")

	require.NoError(t, render(t, context.Background(), "--steps", "64", "--output", out, "--no-save"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "setcps(")
	assert.Equal(t, []string{"lorenz.strudel"}, dirNames(t, dir))
}

func TestRenderInvalidConfigLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "lorenz.strudel")

	err := render(t, context.Background(), "--steps=-1", "--output", out)
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Empty(t, dirNames(t, dir))
}

func TestRenderUnknownEngineLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "lorenz.out")

	require.Error(t, render(t, context.Background(), "--steps", "16", "--engine", "nope", "--output", out, "--no-save"))
	assert.Empty(t, dirNames(t, dir))
}

func TestRenderCanceledKeepsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "lorenz.strudel")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, render(t, ctx, "--steps", "64", "--output", out, "--no-save"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	assert.Equal(t, []string{"lorenz.strudel"}, dirNames(t, dir))
}

func TestHandOffCanceledRemovesStagedFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Integration.Steps = 32
	cfg.Playback.Output = filepath.Join(dir, "lorenz.strudel")

	res, err := pipeline.Compose(context.Background(), cfg, cfg.Playback.Registry, rand.New(rand.NewSource(cfg.Seed)), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = handOff(ctx, cfg, res)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dirNames(t, dir))

	engine, err := handOff(context.Background(), cfg, res)
	require.NoError(t, err)
	assert.NotNil(t, engine)
	assert.Equal(t, []string{"lorenz.strudel"}, dirNames(t, dir))
}

func TestOutputPath(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "", outputPath(cfg))

	cfg.Playback.Output = "-"
	assert.Equal(t, "", outputPath(cfg))

	cfg.Playback.Engine = "midi"
	cfg.Playback.Output = ""
	assert.Equal(t, "chaosynth.mid", outputPath(cfg))
	assert.Equal(t, "chaosynth.mid", cfg.Playback.Output)
}
