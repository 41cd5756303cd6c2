package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TrayForge/internal/engine"
	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/mesh"
	"github.com/piwi3910/TrayForge/internal/model"
)

func testParams() model.ResolvedParams {
	return model.ResolvedParams{Global: model.DefaultGlobalParams(), Tray: model.DefaultTrayParams()}
}

func layoutFor(t *testing.T, p model.ResolvedParams) *engine.TrayLayout {
	t.Helper()
	l, err := engine.LayoutTray(p, nil)
	require.NoError(t, err)
	return l
}

func TestBuildTray_EdgeSlotOpensFrontWall(t *testing.T) {
	p := testParams()
	p.Tray.EdgeLoaded = []model.StackSpec{
		model.NewEdgeStack(model.CardRef("mini-euro"), 30, model.OrientLengthwise, "Deck"),
	}
	l := layoutFor(t, p)

	m, err := BuildTray(p, l, "Cards", l.NaturalHeight, 0)
	require.NoError(t, err)
	st := mesh.Analyze(m)

	// Block 19.6 × 48.6 × 72 minus the slot 15.6 wide, running from the
	// front face to 46.6, 70 deep.
	want := 19.6*48.6*72 - 15.6*46.6*70
	assert.InDelta(t, want, st.Volume, 0.5)
	assert.Equal(t, 0, st.Degenerate)
	assert.InDelta(t, 19.6, st.Size.X, 1e-4)
	assert.InDelta(t, 48.6, st.Size.Y, 1e-4)
	assert.InDelta(t, 72, st.Size.Z, 1e-4)
	assert.True(t, st.Watertight)
}

func TestBuildTray_SideLanesOpenSideWalls(t *testing.T) {
	p := testParams()
	for i := 0; i < 4; i++ {
		p.Tray.EdgeLoaded = append(p.Tray.EdgeLoaded,
			model.NewEdgeStack("square", 150, model.OrientLengthwise, ""))
	}
	l := layoutFor(t, p)
	require.Equal(t, engine.OpenLeft, l.Pockets[2].Open)
	require.Equal(t, engine.OpenRight, l.Pockets[3].Open)

	m, err := BuildTray(p, l, "Side", l.NaturalHeight, 0)
	require.NoError(t, err)
	st := mesh.Analyze(m)

	// Each slot is cut from the floor up and through the wall it opens.
	cut := 0.0
	for _, pk := range l.Pockets {
		s := pk.Slot
		area := s.W * s.D
		switch pk.Open {
		case engine.OpenFront:
			area = s.W * (s.Y + s.D)
		case engine.OpenBack:
			area = s.W * (l.Depth - s.Y)
		case engine.OpenLeft:
			area = (s.X + s.W) * s.D
		case engine.OpenRight:
			area = (l.Width - s.X) * s.D
		}
		cut += area * (l.NaturalHeight - p.Tray.FloorThickness)
	}
	assert.InDelta(t, l.Width*l.Depth*l.NaturalHeight-cut, st.Volume, 0.5)
	assert.True(t, st.Watertight)
}

func TestBuildTray_TopPocketsAndPushHoles(t *testing.T) {
	p := testParams()
	p.Tray.TopLoaded = []model.StackSpec{
		model.NewTopStack("square", 10, ""),
		model.NewTopStack("hex", 10, ""),
		model.NewTopStack("circle", 10, ""),
	}
	l := layoutFor(t, p)

	m, err := BuildTray(p, l, "Tokens", l.NaturalHeight, 0)
	require.NoError(t, err)
	st := mesh.Analyze(m)

	block := l.Width * l.Depth * l.NaturalHeight
	assert.Less(t, st.Volume, block)
	// Three pockets of roughly 16 × 16 × 15 are removed.
	assert.Greater(t, st.Volume, block-3*16.5*16.5*15-3*200)
	assert.Equal(t, 0, st.Degenerate)
	// Pocket walls split the floor and outer faces; the split edges must
	// still pair up.
	assert.True(t, st.Watertight)
}

func TestBuildTray_SpacerAddsRiser(t *testing.T) {
	p := testParams()
	p.Tray.TopLoaded = []model.StackSpec{model.NewTopStack("square", 5, "")}
	l := layoutFor(t, p)

	plain, err := BuildTray(p, l, "t", l.NaturalHeight, 0)
	require.NoError(t, err)
	raised, err := BuildTray(p, l, "t", l.NaturalHeight+10, 10)
	require.NoError(t, err)

	_, max := raised.Bounds()
	assert.InDelta(t, l.NaturalHeight+10, max.Z, 1e-4)
	// The riser is solid apart from the push-out hole.
	assert.True(t, mesh.Analyze(raised).Watertight)
	extra := mesh.Analyze(raised).Volume - mesh.Analyze(plain).Volume
	assert.Greater(t, extra, (l.Width*l.Depth-60)*10)
	assert.Less(t, extra, l.Width*l.Depth*10)
}

func TestBuildTray_Deterministic(t *testing.T) {
	p := testParams()
	p.Tray.TopLoaded = []model.StackSpec{model.NewTopStack("hex", 6, ""), model.NewTopStack("triangle", 4, "")}
	p.Tray.EdgeLoaded = []model.StackSpec{model.NewEdgeStack(model.CardRef("standard"), 10, model.OrientWidthwise, "")}
	l := layoutFor(t, p)

	a, err := BuildTray(p, l, "Same", l.NaturalHeight+5, 5)
	require.NoError(t, err)
	b, err := BuildTray(p, l, "Same", l.NaturalHeight+5, 5)
	require.NoError(t, err)

	require.Equal(t, a.TriangleCount(), b.TriangleCount())
	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, a.Normals, b.Normals)
}

func TestBuildTray_NoFloorIsGenerationError(t *testing.T) {
	p := testParams()
	l := layoutFor(t, p)
	_, err := BuildTray(p, l, "bad", 3, 5)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.ErrCodeGeneration))
}

func singleTrayBox(t *testing.T, mutate func(*model.Box)) (model.Box, *engine.Arrangement) {
	t.Helper()
	box := model.NewBox("Box")
	box.Trays = []model.Tray{model.NewTray("T", 0)}
	if mutate != nil {
		mutate(&box)
	}
	arr, err := engine.Arrange(box, []*engine.TrayLayout{{Width: 100, Depth: 50, NaturalHeight: 30}}, 256)
	require.NoError(t, err)
	return box, arr
}

func TestBuildBox_WallsAndGroove(t *testing.T) {
	box, arr := singleTrayBox(t, func(b *model.Box) { b.Lid.SnapLock = false })
	m, err := BuildBox(box, arr)
	require.NoError(t, err)
	st := mesh.Analyze(m)

	exterior := 107.0 * 57 * 36.5
	cavity := 101.0 * 51 * 34.5
	grooveRing := (105.0*55 - 101.0*51) * 4.5
	assert.InDelta(t, exterior-cavity-grooveRing, st.Volume, 0.5)
	assert.InDelta(t, 107, st.Size.X, 1e-4)
	assert.InDelta(t, 57, st.Size.Y, 1e-4)
	assert.InDelta(t, 36.5, st.Size.Z, 1e-4)
	assert.Equal(t, 0, st.Degenerate)
	assert.True(t, st.Watertight)
}

func TestBuildBox_SnapDetents(t *testing.T) {
	box, arr := singleTrayBox(t, func(b *model.Box) { b.Lid.SnapLock = false })
	plain, err := BuildBox(box, arr)
	require.NoError(t, err)

	box.Lid.SnapLock = true
	snap, err := BuildBox(box, arr)
	require.NoError(t, err)

	// Four recesses 0.3 deep into the lip, 6.2 wide, 4/3 + 0.2 tall.
	want := 4 * 0.3 * 6.2 * (4.0/3 + 0.2)
	assert.InDelta(t, want, mesh.Analyze(plain).Volume-mesh.Analyze(snap).Volume, 0.2)
	assert.True(t, mesh.Analyze(snap).Watertight)
}

func TestBuildBox_SolidFill(t *testing.T) {
	walls, arr := singleTrayBox(t, func(b *model.Box) { b.CustomWidth = 150; b.Lid.SnapLock = false })
	open, err := BuildBox(walls, arr)
	require.NoError(t, err)

	walls.Fill = model.FillSolid
	filled, err := BuildBox(walls, arr)
	require.NoError(t, err)

	// The 43 mm strip beside the tray is filled up to the tray tops.
	extra := mesh.Analyze(filled).Volume - mesh.Analyze(open).Volume
	assert.InDelta(t, 43.0*51*30, extra, 1.0)
}

func TestBuildBox_EmptyArrangement(t *testing.T) {
	box := model.NewBox("Empty")
	arr, err := engine.Arrange(box, nil, 256)
	require.NoError(t, err)

	m, err := BuildBox(box, arr)
	require.NoError(t, err)
	assert.Zero(t, m.TriangleCount())

	lid, err := BuildLid(box, arr)
	require.NoError(t, err)
	assert.Zero(t, lid.TriangleCount())
}

func TestBuildLid_Geometry(t *testing.T) {
	box, arr := singleTrayBox(t, func(b *model.Box) { b.Lid.EmbossName = false })
	m, err := BuildLid(box, arr)
	require.NoError(t, err)
	st := mesh.Analyze(m)

	plate := 107.0 * 57 * 2
	ledge := (107.0*57 - 101.6*51.6) * 1
	rail := (104.0*54 - 101.6*51.6) * 4
	bumps := 4 * 6 * 0.7 * (4.0 / 3)
	notches := 2 * 0.5 * (0.5 * 48 * 64 * 0.13052619222005157) * 1.5
	assert.InDelta(t, plate+ledge+rail+bumps-notches, st.Volume, 0.5)
	assert.InDelta(t, LidTop(box.Lid), st.Max.Z, 1e-4)
	assert.InDelta(t, 0, st.Min.Z, 1e-4)
	assert.Equal(t, 0, st.Degenerate)
	assert.True(t, st.Watertight)
}

func TestBuildLid_SnapBumps(t *testing.T) {
	box, arr := singleTrayBox(t, func(b *model.Box) { b.Lid.EmbossName = false })
	snap, err := BuildLid(box, arr)
	require.NoError(t, err)

	box.Lid.SnapLock = false
	plain, err := BuildLid(box, arr)
	require.NoError(t, err)

	// Four bumps 6 wide, 0.7 proud of the rail, a third of the rail tall.
	diff := mesh.Analyze(snap).Volume - mesh.Analyze(plain).Volume
	assert.InDelta(t, 4*6*0.7*(4.0/3), diff, 0.2)
}

func TestBuildLid_Emboss(t *testing.T) {
	box, arr := singleTrayBox(t, func(b *model.Box) { b.Name = "Ob" })
	plain := box
	plain.Lid.EmbossName = false

	withText, err := BuildLid(box, arr)
	require.NoError(t, err)
	without, err := BuildLid(plain, arr)
	require.NoError(t, err)

	_, max := withText.Bounds()
	assert.InDelta(t, LidTop(box.Lid)+box.Lid.EmbossHeight, max.Z, 1e-4)
	assert.Greater(t, mesh.Analyze(withText).Volume, mesh.Analyze(without).Volume)
}

func TestTextContoursAndHoles(t *testing.T) {
	contours, err := TextContours("o")
	require.NoError(t, err)
	require.Len(t, contours, 2)

	groups := groupContours(contours)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].holes, 1)

	space, err := TextContours(" ")
	require.NoError(t, err)
	assert.Empty(t, space)
}
