package catalog

import "github.com/Pesokrava/grocery_cart/internal/domain"

const freshFood = "Φρέσκα τρόφιμα"

// DefaultProducts builds the products a brand new store starts with
func DefaultProducts() ([]*domain.Product, error) {
	builders := []func() (*domain.Product, error){
		func() (*domain.Product, error) {
			return domain.NewWeightProduct("Πορτοκάλια 1kg",
				"Φρέσκα πορτοκάλια, ιδανικά για χυμό ή κατανάλωση.",
				freshFood, "Φρούτα", 1.20, 200)
		},
		func() (*domain.Product, error) {
			return domain.NewWeightProduct("Καρότα 1kg",
				"Τραγανά καρότα, κατάλληλα για σαλάτες και μαγείρεμα.",
				freshFood, "Λαχανικά", 1.00, 150)
		},
		func() (*domain.Product, error) {
			return domain.NewPieceProduct("Φιλέτο Σολομού 300g",
				"Φρέσκος σολομός φιλέτο έτοιμος για μαγείρεμα.",
				freshFood, "Ψάρια", 12.00, 50)
		},
		func() (*domain.Product, error) {
			return domain.NewPieceProduct("Κιμάς Μοσχαρίσιος 500g",
				"Φρέσκος κιμάς μοσχαρίσιος από τοπικό κρεοπωλείο.",
				freshFood, "Κρέατα", 6.50, 100)
		},
	}

	products := make([]*domain.Product, 0, len(builders))
	for _, build := range builders {
		p, err := build()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
