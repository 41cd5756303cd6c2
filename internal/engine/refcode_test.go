package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TrayForge/internal/model"
)

func TestTrayLetter(t *testing.T) {
	cases := map[int]string{
		0:  "A",
		1:  "B",
		25: "Z",
		26: "AA",
		27: "BB",
		51: "ZZ",
		52: "AAA",
		78: "AAAA",
	}
	for idx, want := range cases {
		assert.Equal(t, want, TrayLetter(idx), "index %d", idx)
	}
}

func TestRefLabels_OrderAndCodes(t *testing.T) {
	p := defaultTestParams()
	p.Tray.TopLoaded = []model.StackSpec{
		model.NewTopStack("hex", 8, "Infantry"),
		model.NewTopStack("circle", 4, "Tokens"),
	}
	p.Tray.EdgeLoaded = []model.StackSpec{
		model.NewEdgeStack(model.CardRef("standard"), 20, model.OrientLengthwise, "Events"),
	}
	l, err := LayoutTray(p, nil)
	require.NoError(t, err)

	labels := RefLabels("Army", TrayLetter(27), l)
	require.Len(t, labels, 3)
	assert.Equal(t, "BB1", labels[0].RefCode)
	assert.Equal(t, "BB2", labels[1].RefCode)
	assert.Equal(t, "BB3", labels[2].RefCode)
	assert.Equal(t, "Events", labels[2].Label)
	assert.Equal(t, model.LoadingEdge, labels[2].Loading)
	assert.Equal(t, 8, labels[0].Count)
	assert.Equal(t, "hex", labels[0].Shape)
	assert.Equal(t, "Army", labels[0].TrayName)
	assert.Equal(t, l.Pockets[1].Slot.Center(), labels[1].Position)
}
