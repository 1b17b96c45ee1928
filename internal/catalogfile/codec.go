// Package catalogfile reads and writes the plain-text catalog format:
//
//	Title: <string>
//	Description: <string>
//	Category: <string>
//	Subcategory: <string>
//	Price: €<decimal>
//	Quantity: <integer> τεμάχια | <decimal> κιλά | <decimal> kg
//	<blank line>
package catalogfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

const (
	suffixPieces     = "τεμάχια"
	suffixKilograms  = "κιλά"
	suffixKilogramsL = "kg"
	currencySymbol   = "€"
	recordLines      = 6
)

var fieldNames = [recordLines]string{"Title", "Description", "Category", "Subcategory", "Price", "Quantity"}

// Decode reads every well-formed record from r. A malformed record is logged
// and skipped; only a read failure aborts decoding.
func Decode(r io.Reader, log *logger.Logger) ([]*domain.Product, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var products []*domain.Product
	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], "Title:") {
			continue
		}

		p, err := decodeRecord(lines[i:])
		if err != nil {
			log.WithFields(map[string]interface{}{
				"line":  i + 1,
				"error": err.Error(),
			}).Warn("Skipping malformed catalog record")
			continue
		}

		products = append(products, p)
		i += recordLines - 1
	}

	return products, nil
}

func decodeRecord(lines []string) (*domain.Product, error) {
	if len(lines) < recordLines {
		return nil, fmt.Errorf("record is truncated")
	}

	var values [recordLines]string
	for n, name := range fieldNames {
		v, err := field(lines[n], name)
		if err != nil {
			return nil, err
		}
		values[n] = v
	}

	price, err := ParsePrice(values[4])
	if err != nil {
		return nil, err
	}

	quantity := values[5]
	switch {
	case strings.HasSuffix(quantity, suffixPieces):
		pieces, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(quantity, suffixPieces)))
		if err != nil {
			return nil, fmt.Errorf("invalid piece quantity %q: %w", quantity, err)
		}
		return domain.NewPieceProduct(values[0], values[1], values[2], values[3], price, pieces)
	case strings.HasSuffix(quantity, suffixKilograms), strings.HasSuffix(quantity, suffixKilogramsL):
		text := strings.TrimSuffix(strings.TrimSuffix(quantity, suffixKilograms), suffixKilogramsL)
		weight, err := parseDecimal(text)
		if err != nil {
			return nil, fmt.Errorf("invalid weight quantity %q: %w", quantity, err)
		}
		return domain.NewWeightProduct(values[0], values[1], values[2], values[3], price, weight)
	default:
		return nil, fmt.Errorf("invalid quantity format: %q", quantity)
	}
}

func field(line, name string) (string, error) {
	key, value, ok := strings.Cut(line, ": ")
	if !ok || strings.TrimSpace(key) != name {
		return "", fmt.Errorf("expected %s field, got %q", name, line)
	}
	return strings.TrimSpace(value), nil
}

// ParsePrice parses a price such as "€1,20" or "12.00"
func ParsePrice(text string) (float64, error) {
	price, err := parseDecimal(strings.TrimPrefix(strings.TrimSpace(text), currencySymbol))
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", text, err)
	}
	return price, nil
}

func parseDecimal(text string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// Encode writes products in catalog format, each record followed by a blank
// line. Quantities are the stock on hand.
func Encode(w io.Writer, products []*domain.Product) error {
	bw := bufio.NewWriter(w)
	for _, p := range products {
		v := p.Stored()
		fmt.Fprintf(bw, "Title: %s\n", v.Title)
		fmt.Fprintf(bw, "Description: %s\n", v.Description)
		fmt.Fprintf(bw, "Category: %s\n", v.Category)
		fmt.Fprintf(bw, "Subcategory: %s\n", v.Subcategory)
		fmt.Fprintf(bw, "Price: %s%s\n", currencySymbol, decimal.NewFromFloat(v.Price).StringFixed(2))

		switch v.Unit {
		case domain.UnitPieces:
			fmt.Fprintf(bw, "Quantity: %d %s\n", int(v.Quantity), suffixPieces)
		case domain.UnitKilograms:
			fmt.Fprintf(bw, "Quantity: %s %s\n", formatWeight(v.Quantity), suffixKilograms)
		default:
			return fmt.Errorf("%w: unknown unit %q for %q", domain.ErrInvalidArgument, v.Unit, v.Title)
		}

		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// formatWeight always keeps one fractional digit for whole weights ("200.0")
func formatWeight(kg float64) string {
	d := decimal.NewFromFloat(kg)
	if d.IsInteger() {
		return d.StringFixed(1)
	}
	return d.String()
}

// LoadFile decodes the catalog stored at path
func LoadFile(path string, log *logger.Logger) ([]*domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return Decode(f, log)
}

// SaveFile writes products to path, replacing its content
func SaveFile(path string, products []*domain.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}

	if err := Encode(f, products); err != nil {
		f.Close()
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return f.Close()
}
