package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSimpleLoaf(t *testing.T) {
	c := newTestCatalog()

	res, err := Resolve(c.gk, 1)
	require.NoError(t, err)

	assert.Equal(t, c.gk, res.Base)
	assert.Equal(t, 1, res.Units)
	assert.InDelta(t, 1.0, res.BaseUnits, 1e-9)

	// the starter never reaches the bakery pool
	assert.NotContains(t, res.Bakery, "Levain froment")
	assert.InDelta(t, 168.0, res.Starters["Levain froment"], 1e-9)

	// soaked seeds carry their diverted water, debited from the water line
	assert.InDelta(t, 156.0, res.Bakery["Graines kasha (soaked)"], 1e-9)
	assert.InDelta(t, 293.0, res.Bakery["Eau"], 1e-9)
	assert.Nil(t, res.SubBatch)
}

func TestResolveWaterConservation(t *testing.T) {
	c := newTestCatalog()

	res, err := Resolve(c.gk, 3)
	require.NoError(t, err)

	// water charged to the bakery plus water diverted to soaking equals the
	// recipe's water, before any rounding
	soak := res.Soaks["Graines kasha"]
	require.NotNil(t, soak)
	assert.InDelta(t, 371.0*3, res.Bakery["Eau"]+soak.Liquid, 1e-9)
	assert.InDelta(t, 78.0*3, soak.Dry, 1e-9)
	assert.Equal(t, "Eau", soak.Source)
}

func TestResolveVariantBaseUnits(t *testing.T) {
	c := newTestCatalog()

	res, err := Resolve(c.tgk, 2)
	require.NoError(t, err)

	assert.Equal(t, c.gk, res.Base)
	assert.Equal(t, 2, res.Units)
	assert.InDelta(t, 4.0, res.BaseUnits, 1e-9)

	// two double loaves consume four base recipes worth of flour
	assert.InDelta(t, 599.0*4, res.Bakery["Farine blé"], 1e-9)
}

func TestResolveBatchRounding(t *testing.T) {
	c := newTestCatalog()

	res, err := Resolve(c.psa, 5)
	require.NoError(t, err)

	// baked by pairs: five ordered, six baked
	assert.Equal(t, 6, res.Units)
	assert.InDelta(t, 3.0, res.BaseUnits, 1e-9)
	assert.InDelta(t, 423.0*3, res.Bakery["Eau"], 1e-9)
}

func TestResolveSubBatch(t *testing.T) {
	c := newTestCatalog()

	res, err := Resolve(c.foc, 1)
	require.NoError(t, err)

	// one part still commits a full tray
	assert.Equal(t, 48, res.Units)
	assert.InDelta(t, 2.5, res.BaseUnits, 1e-9)
	require.NotNil(t, res.SubBatch)

	// dough weight includes the starter: the dough physically contains it
	assert.InDelta(t, (637+446+159+12.75)*2.5, res.Dough, 1e-9)

	// topping lines get the same soak decomposition as base lines
	assert.InDelta(t, 100*2.5*(1+1.5), res.SubBatch["Tomates séchées (soaked)"], 1e-9)
	assert.InDelta(t, 150*2.5-100*2.5*1.5, res.SubBatch["Huile olive"], 1e-9)
	assert.InDelta(t, 200*2.5, res.SubBatch["Olives"], 1e-9)
}

func TestResolveMultipleSoaks(t *testing.T) {
	c := newTestCatalog()

	res, err := Resolve(c.br, 2)
	require.NoError(t, err)

	// rice flakes absorb ten times their mass, raisins their own mass
	assert.InDelta(t, (10+100)*2, res.Bakery["Flocons de riz (soaked)"], 1e-9)
	assert.InDelta(t, (47+47)*2, res.Bakery["Raisins secs (soaked)"], 1e-9)
	assert.InDelta(t, (160-100-47)*2, res.Bakery["Eau"], 1e-9)

	require.Len(t, res.Soaks, 2)
	assert.InDelta(t, 200.0, res.Soaks["Flocons de riz"].Liquid, 1e-9)
	assert.InDelta(t, 94.0, res.Soaks["Raisins secs"].Liquid, 1e-9)
	assert.InDelta(t, 256.0, res.Starters["Levain froment"], 1e-9)
}

func TestRoundMass(t *testing.T) {
	tests := []struct {
		name string
		qty  float64
		want float64
	}{
		{"Farine blé", 293, 290},
		{"Farine blé", 5, 10},
		{"Farine blé", 4.9, 0},
		{"Eau", -65, -70},
		{"Tomates séchées (soaked)", 625, 630},
		{"Sel", 11.98, 12},
		{"Sel", 2.5, 3},
		{"Oeufs", 1.5, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundMass(tt.name, tt.qty), "%s %v", tt.name, tt.qty)
	}
}
