package catalogfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

const sampleCatalog = `Title: Πορτοκάλια 1kg
Description: Φρέσκα πορτοκάλια, ιδανικά για χυμό ή κατανάλωση.
Category: Φρέσκα τρόφιμα
Subcategory: Φρούτα
Price: €1.20
Quantity: 200.0 κιλά

Title: Φιλέτο Σολομού 300g
Description: Φρέσκος σολομός φιλέτο έτοιμος για μαγείρεμα.
Category: Φρέσκα τρόφιμα
Subcategory: Ψάρια
Price: €12.00
Quantity: 50 τεμάχια

`

func TestDecode(t *testing.T) {
	products, err := Decode(strings.NewReader(sampleCatalog), logger.New("test"))

	require.NoError(t, err)
	require.Len(t, products, 2)

	oranges := products[0].Snapshot()
	assert.Equal(t, "Πορτοκάλια 1kg", oranges.Title)
	assert.Equal(t, "Φρούτα", oranges.Subcategory)
	assert.Equal(t, 1.2, oranges.Price)
	assert.Equal(t, domain.UnitKilograms, oranges.Unit)
	assert.Equal(t, 200.0, oranges.Quantity)

	salmon := products[1].Snapshot()
	assert.Equal(t, 12.0, salmon.Price)
	assert.Equal(t, domain.UnitPieces, salmon.Unit)
	assert.Equal(t, 50.0, salmon.Quantity)
}

func TestDecode_SkipsMalformedRecords(t *testing.T) {
	input := `Title: Broken price
Description: d
Category: c
Subcategory: s
Price: €abc
Quantity: 5 τεμάχια

Title: Missing description
Category: c
Subcategory: s
Price: €1.00
Quantity: 5 τεμάχια

Title: Unknown unit
Description: d
Category: c
Subcategory: s
Price: €1.00
Quantity: 5 litres

Title: Fractional pieces
Description: d
Category: c
Subcategory: s
Price: €1.00
Quantity: 2.5 τεμάχια

Title: Carrots
Description: Crunchy
Category: Veg
Subcategory: Orange
Price: 1,00
Quantity: 12,5 kg

Title: Truncated
Description: d
`
	var logs bytes.Buffer

	products, err := Decode(strings.NewReader(input), logger.NewWithWriter(&logs))

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Carrots", products[0].Title())
	assert.Equal(t, 12.5, products[0].Available())
	assert.Equal(t, 5, strings.Count(logs.String(), "Skipping malformed catalog record"))
}

func TestEncode(t *testing.T) {
	oranges, err := domain.NewWeightProduct("Oranges", "Juicy", "Fresh food", "Fruit", 1.2, 200)
	require.NoError(t, err)
	carrots, err := domain.NewWeightProduct("Carrots", "Crunchy", "Fresh food", "Vegetables", 1, 12.75)
	require.NoError(t, err)
	salmon, err := domain.NewPieceProduct("Salmon", "Fillet", "Fresh food", "Fish", 12, 50)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []*domain.Product{oranges, carrots, salmon}))

	want := `Title: Oranges
Description: Juicy
Category: Fresh food
Subcategory: Fruit
Price: €1.20
Quantity: 200.0 κιλά

Title: Carrots
Description: Crunchy
Category: Fresh food
Subcategory: Vegetables
Price: €1.00
Quantity: 12.75 κιλά

Title: Salmon
Description: Fillet
Category: Fresh food
Subcategory: Fish
Price: €12.00
Quantity: 50 τεμάχια

`
	assert.Equal(t, want, buf.String())
}

func TestSaveAndLoadFile(t *testing.T) {
	products, err := Decode(strings.NewReader(sampleCatalog), logger.New("test"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "products.txt")

	require.NoError(t, SaveFile(path, products))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog, string(written))

	loaded, err := LoadFile(path, logger.New("test"))
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, products[1].Title(), loaded[1].Title())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"), logger.New("test"))
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"€1,20", 1.2},
		{"€ 12.00", 12},
		{"3.5", 3.5},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParsePrice("€")
	assert.Error(t, err)
}
