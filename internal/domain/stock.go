package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Unit is the unit of sale of a product
type Unit string

const (
	// UnitPieces is used for products sold in whole-unit counts
	UnitPieces Unit = "pieces"

	// UnitKilograms is used for products sold by continuous weight
	UnitKilograms Unit = "kg"
)

// Valid reports whether u is one of the known units
func (u Unit) Valid() bool {
	switch u {
	case UnitPieces, UnitKilograms:
		return true
	default:
		return false
	}
}

// Stock is the variant-specific availability of a product.
// The only implementations are PieceStock and WeightStock.
type Stock interface {
	// Unit is the discriminant of the variant
	Unit() Unit

	// Amount returns the available quantity in the variant's unit
	Amount() float64

	accepts(amount float64) bool
	covers(amount float64) bool
	withdraw(amount float64) Stock
	deposit(amount float64) Stock
	valid() bool
}

// PieceStock is the availability of a product sold by the piece
type PieceStock struct {
	Pieces int
}

func (s PieceStock) Unit() Unit { return UnitPieces }
func (s PieceStock) Amount() float64 { return float64(s.Pieces) }

// accepts reports whether amount is a positive whole number
func (s PieceStock) accepts(amount float64) bool {
	return amount > 0 && isWhole(amount)
}

func (s PieceStock) covers(amount float64) bool {
	return amount <= float64(s.Pieces)
}

func (s PieceStock) withdraw(amount float64) Stock {
	return PieceStock{Pieces: s.Pieces - int(amount)}
}

func (s PieceStock) deposit(amount float64) Stock {
	return PieceStock{Pieces: s.Pieces + int(amount)}
}

func (s PieceStock) valid() bool { return s.Pieces >= 0 }

// WeightStock is the availability, in kilograms, of a product sold by weight
type WeightStock struct {
	Kilograms float64
}

func (s WeightStock) Unit() Unit { return UnitKilograms }
func (s WeightStock) Amount() float64 { return s.Kilograms }

func (s WeightStock) accepts(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}

func (s WeightStock) covers(amount float64) bool {
	return amount <= s.Kilograms
}

// Kilograms are added and subtracted as decimals so that fractional holds
// given back restore the exact starting weight.
func (s WeightStock) withdraw(amount float64) Stock {
	kg := decimal.NewFromFloat(s.Kilograms).Sub(decimal.NewFromFloat(amount))
	return WeightStock{Kilograms: kg.InexactFloat64()}
}

func (s WeightStock) deposit(amount float64) Stock {
	kg := decimal.NewFromFloat(s.Kilograms).Add(decimal.NewFromFloat(amount))
	return WeightStock{Kilograms: kg.InexactFloat64()}
}

func (s WeightStock) valid() bool { return s.Kilograms >= 0 && !math.IsNaN(s.Kilograms) }

// NewStock builds the stock variant for unit holding quantity.
// Piece stock only accepts whole numbers.
func NewStock(unit Unit, quantity float64) (Stock, error) {
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return nil, fmt.Errorf("%w: stock cannot be %v", ErrInvalidQuantity, quantity)
	}

	switch unit {
	case UnitPieces:
		if !isWhole(quantity) || quantity > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %v is not a whole number of pieces", ErrInvalidQuantity, quantity)
		}
		return PieceStock{Pieces: int(quantity)}, nil
	case UnitKilograms:
		return WeightStock{Kilograms: quantity}, nil
	default:
		return nil, fmt.Errorf("%w: unknown unit %q", ErrInvalidArgument, unit)
	}
}

func isWhole(v float64) bool {
	return !math.IsInf(v, 0) && v == math.Trunc(v)
}
