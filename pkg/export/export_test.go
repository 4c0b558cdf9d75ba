package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenscraft/optibulk/pkg/analyzer"
	"github.com/lenscraft/optibulk/pkg/colorx"
	"github.com/lenscraft/optibulk/pkg/grouping"
	"github.com/lenscraft/optibulk/pkg/naming"
)

func mkImage(name string) analyzer.Image {
	color := naming.ExtractColor(name)
	if color == "" {
		color = "Mixed"
	}
	return analyzer.Image{
		Asset:      analyzer.Asset{Name: name},
		Dominant:   colorx.Unknown(),
		Palette:    []colorx.Sample{},
		Brand:      naming.ExtractBrand(name),
		Color:      color,
		Category:   "Frames",
		Confidence: 0.8,
	}
}

func TestFilenamePattern(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	assert.Equal(t, "image-analysis-color-variants-1700000000000.json", Filename(grouping.ModeColor, now))
	assert.Equal(t, "image-analysis-angle-grouped-1700000000000.json", Filename(grouping.ModeAngle, now))
	assert.Equal(t, "image-analysis-individual-1700000000000.json", Filename(grouping.ModeNone, now))
}

func TestMarshalColorMode(t *testing.T) {
	session := grouping.NewSession(context.Background(), []analyzer.Image{
		mkImage("RayBan_Aviator_Black_front.jpg"),
		mkImage("RayBan_Aviator_Brown_front.jpg"),
	}, nil)

	data, err := Marshal(session)
	require.NoError(t, err)

	var doc struct {
		Mode  string `json:"mode"`
		Items []struct {
			ProductName   string `json:"productName"`
			Brand         string `json:"brand"`
			ColorVariants []struct {
				Color        string `json:"color"`
				ImageCount   int    `json:"imageCount"`
				PrimaryImage string `json:"primaryImage"`
			} `json:"colorVariants"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "color", doc.Mode)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Aviator", doc.Items[0].ProductName)
	require.Len(t, doc.Items[0].ColorVariants, 2)
	assert.Equal(t, "Black", doc.Items[0].ColorVariants[0].Color)
	assert.Equal(t, "RayBan_Aviator_Black_front.jpg", doc.Items[0].ColorVariants[0].PrimaryImage)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	session := grouping.NewSession(context.Background(), []analyzer.Image{
		mkImage("RayBan_Aviator_Black.jpg"),
	}, nil)
	session.SetMode(context.Background(), grouping.ModeNone)

	path, err := WriteFile(session, dir)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^image-analysis-individual-\d+\.json$`), filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
