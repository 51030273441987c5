package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

func TestFoldStripsAccents(t *testing.T) {
	assert.Equal(t, "malaga", Fold("Málaga"))
	assert.Equal(t, "hibrido (madrid)", Fold("Híbrido (Madrid)"))
	assert.Equal(t, "", Fold("  "))
}

func TestLookupCity(t *testing.T) {
	tbl := NewLocationTable(DefaultLocations)

	cat, mode := tbl.Lookup("Madrid, España")
	assert.Equal(t, "madrid", cat)
	assert.Equal(t, model.RemoteOnsite, mode)
}

func TestLookupAccentedCity(t *testing.T) {
	tbl := NewLocationTable(DefaultLocations)

	cat, _ := tbl.Lookup("Málaga")
	assert.Equal(t, "malaga", cat)
}

func TestLookupHybrid(t *testing.T) {
	tbl := NewLocationTable(DefaultLocations)

	cat, mode := tbl.Lookup("Híbrido (Barcelona)")
	assert.Equal(t, "barcelona", cat)
	assert.Equal(t, model.RemoteHybrid, mode)
}

func TestLookupRemote(t *testing.T) {
	tbl := NewLocationTable(DefaultLocations)

	cat, mode := tbl.Lookup("Remoto (España)")
	assert.Equal(t, "remote", cat)
	assert.Equal(t, model.RemoteRemote, mode)
}

func TestLookupUnknownIsOther(t *testing.T) {
	tbl := NewLocationTable(DefaultLocations)

	cat, mode := tbl.Lookup("Oviedo")
	assert.Equal(t, LocationOther, cat)
	assert.Equal(t, model.RemoteOnsite, mode)
}

func TestLookupEmpty(t *testing.T) {
	tbl := NewLocationTable(DefaultLocations)

	cat, mode := tbl.Lookup("")
	assert.Equal(t, LocationOther, cat)
	assert.Equal(t, model.RemoteUnknown, mode)
}
