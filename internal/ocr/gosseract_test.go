// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

func TestGosseractLanguagesCustomDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chi_sim.traineddata", "eng.traineddata", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	engine := NewGosseract(types.OCRConfig{TessdataDir: dir})
	langs, err := engine.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"chi_sim", "eng"}, langs)
}

func TestGosseractRecognizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewGosseract(types.OCRConfig{PSM: 6})
	_, err := engine.Recognize(ctx, Request{ImagePath: "/tmp/none.png"})
	assert.ErrorIs(t, err, context.Canceled)
}
