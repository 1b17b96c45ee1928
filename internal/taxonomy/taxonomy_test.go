package taxonomy

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/grocery_cart/internal/domain"
)

func TestTaxonomy_Lookup(t *testing.T) {
	tax := New()
	require.NoError(t, tax.Add("Fresh food", "Fruit", "Vegetables"))

	assert.True(t, tax.CategoryExists("Fresh food"))
	assert.False(t, tax.CategoryExists("Frozen food"))

	assert.True(t, tax.SubcategoryExists("Fresh food", "fruit"))
	assert.True(t, tax.SubcategoryExists("Fresh food", "VEGETABLES"))
	assert.False(t, tax.SubcategoryExists("Fresh food", "Fish"))
	assert.False(t, tax.SubcategoryExists("Frozen food", "Fruit"))
}

func TestTaxonomy_Add_Invalid(t *testing.T) {
	tax := New()

	assert.ErrorIs(t, tax.Add(" ", "Fruit"), domain.ErrInvalidArgument)
	assert.ErrorIs(t, tax.Add("Fresh food"), domain.ErrInvalidArgument)
	assert.ErrorIs(t, tax.Add("Fresh food", " "), domain.ErrInvalidArgument)
}

func TestTaxonomy_Load(t *testing.T) {
	input := "Φρέσκα τρόφιμα (Φρούτα@Λαχανικά@Ψάρια)\n\nDrinks ( Beer @Wine)\n"
	tax := New()

	require.NoError(t, tax.Load(strings.NewReader(input)))

	assert.Equal(t, map[string][]string{
		"Φρέσκα τρόφιμα": {"Φρούτα", "Λαχανικά", "Ψάρια"},
		"Drinks":         {"Beer", "Wine"},
	}, tax.Categories())
	assert.True(t, tax.SubcategoryExists("Drinks", "beer"))
}

func TestTaxonomy_Load_MalformedLeavesTaxonomyUnchanged(t *testing.T) {
	tax := New()
	require.NoError(t, tax.Add("Drinks", "Beer"))

	err := tax.Load(strings.NewReader("Fresh (Fruit)\nbroken line\n"))

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, map[string][]string{"Drinks": {"Beer"}}, tax.Categories())
}

func TestTaxonomy_SaveLoadRoundTrip(t *testing.T) {
	tax := New()
	require.NoError(t, tax.Add("Drinks", "Beer", "Wine"))
	require.NoError(t, tax.Add("Bakery", "Bread"))

	var buf bytes.Buffer
	require.NoError(t, tax.Save(&buf))
	assert.Equal(t, "Bakery (Bread)\nDrinks (Beer@Wine)\n", buf.String())

	path := filepath.Join(t.TempDir(), "categories.txt")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tax.Categories(), loaded.Categories())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	assert.True(t, Default().SubcategoryExists("Φρέσκα τρόφιμα", "Ψάρια"))
}
