package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/model"
)

func sampleProject() model.Project {
	p := model.NewProject()
	p.Name = "Sample"
	p.Globals.CustomShapes = []model.CustomShape{model.NewCustomShape("Ship", model.ShapeHex, 20, 24)}

	box := model.NewBox("Core")
	box.Fill = model.FillSolid
	a := model.NewTray("Tokens", 0)
	a.Params.TopLoaded = []model.StackSpec{
		model.NewTopStack("hex", 8, "Damage"),
		model.NewTopStack(model.CustomRef(p.Globals.CustomShapes[0].ID), 3, "Ships"),
	}
	b := model.NewTray("Cards", 1)
	b.Params.EdgeLoaded = []model.StackSpec{
		model.NewEdgeStack(model.CardRef("mini-euro"), 40, model.OrientLengthwise, "Events"),
	}
	box.Trays = []model.Tray{a, b}
	p.Boxes = []model.Box{box}
	p.NextColorIndex = 2
	return p
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"project.json", "project.yaml"} {
		t.Run(name, func(t *testing.T) {
			orig := sampleProject()
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveProject(path, orig))

			loaded, err := LoadProject(path)
			require.NoError(t, err)
			assert.Equal(t, orig, loaded)

			before, err := generate.Generate(context.Background(), orig, 0, generate.Options{LayoutOnly: true})
			require.NoError(t, err)
			after, err := generate.Generate(context.Background(), loaded, 0, generate.Options{LayoutOnly: true})
			require.NoError(t, err)
			assert.Equal(t, before.Arrangement.Placements, after.Arrangement.Placements)
		})
	}
}

func TestYAMLUsesJSONFieldNames(t *testing.T) {
	data, err := Marshal(sampleProject(), FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "printBedSize:")
	assert.Contains(t, string(data), "topLoaded:")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(string(data)), "{"))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.YML"))
	assert.Equal(t, FormatYAML, FormatFromPath("b.yaml"))
	assert.Equal(t, FormatJSON, FormatFromPath("b.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("b.trayforge"))
}

func TestLoadProjectFillsMissingLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	raw := `{"name":"Old","boxes":[{"id":"b1","name":"B","trays":[{"id":"t1","name":"T","params":{}}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, 256.0, p.Globals.PrintBedSize, "missing globals keep their defaults")
	assert.NotNil(t, p.Globals.CustomShapes)
	assert.Equal(t, model.FillWallsOnly, p.Boxes[0].Fill)
	assert.NotNil(t, p.Boxes[0].Trays[0].Params.TopLoaded)
	assert.NotNil(t, p.Boxes[0].Trays[0].Params.EdgeLoaded)
}

func TestLoadProjectErrors(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("boxes: [unclosed"), 0644))
	_, err = LoadProject(bad)
	assert.Error(t, err)
}

func TestNormalizeShapeRefs(t *testing.T) {
	p := sampleProject()
	ship := p.Globals.CustomShapes[0]
	tray := &p.Boxes[0].Trays[0]
	tray.Params.TopLoaded[1].Shape = model.CustomRef(ship.Name)
	tray.Params.TopLoaded = append(tray.Params.TopLoaded, model.NewTopStack(model.CustomRef("Unknown"), 1, ""))

	n := NormalizeShapeRefs(&p)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.CustomRef(ship.ID), tray.Params.TopLoaded[1].Shape)
	assert.Equal(t, model.CustomRef("Unknown"), tray.Params.TopLoaded[2].Shape, "unresolvable refs are left for the fallback")
	assert.Equal(t, 0, NormalizeShapeRefs(&p))
}
