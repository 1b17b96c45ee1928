package taxonomy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Pesokrava/grocery_cart/internal/domain"
)

// Taxonomy maps categories to their subcategories. It implements domain.CategoryLookup.
type Taxonomy struct {
	mu         sync.RWMutex
	categories map[string][]string
}

var _ domain.CategoryLookup = (*Taxonomy)(nil)

// New creates an empty taxonomy
func New() *Taxonomy {
	return &Taxonomy{categories: make(map[string][]string)}
}

// Add registers a category with its subcategories, replacing any previous entry
func (t *Taxonomy) Add(category string, subcategories ...string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("%w: category cannot be empty", domain.ErrInvalidArgument)
	}

	subs := make([]string, 0, len(subcategories))
	for _, s := range subcategories {
		if s = strings.TrimSpace(s); s != "" {
			subs = append(subs, s)
		}
	}
	if len(subs) == 0 {
		return fmt.Errorf("%w: category %q needs at least one subcategory", domain.ErrInvalidArgument, category)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.categories[category] = subs
	return nil
}

// CategoryExists reports whether the category is known
func (t *Taxonomy) CategoryExists(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.categories[strings.TrimSpace(name)]
	return ok
}

// SubcategoryExists reports whether sub belongs to category, ignoring the case of sub
func (t *Taxonomy) SubcategoryExists(category, sub string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sub = strings.TrimSpace(sub)
	for _, s := range t.categories[strings.TrimSpace(category)] {
		if strings.EqualFold(s, sub) {
			return true
		}
	}
	return false
}

// Categories returns a copy of the taxonomy
func (t *Taxonomy) Categories() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string][]string, len(t.categories))
	for c, subs := range t.categories {
		out[c] = append([]string(nil), subs...)
	}
	return out
}

// Load replaces the taxonomy with the content of r. Each non-blank line reads
// "Category (Sub1@Sub2@Sub3)". A malformed line fails the whole load and leaves
// the taxonomy unchanged.
func (t *Taxonomy) Load(r io.Reader) error {
	loaded := make(map[string][]string)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		category, subs, err := parseLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		loaded[category] = subs
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read taxonomy: %w", err)
	}

	t.mu.Lock()
	t.categories = loaded
	t.mu.Unlock()
	return nil
}

// Save writes the taxonomy in the format read by Load, categories sorted by name
func (t *Taxonomy) Save(w io.Writer) error {
	categories := t.Categories()
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		if _, err := fmt.Fprintf(bw, "%s (%s)\n", name, strings.Join(categories[name], "@")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadFile reads the taxonomy from path
func LoadFile(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy file: %w", err)
	}
	defer f.Close()

	t := New()
	if err := t.Load(f); err != nil {
		return nil, fmt.Errorf("failed to load taxonomy file %s: %w", path, err)
	}
	return t, nil
}

func parseLine(line string) (string, []string, error) {
	open := strings.Index(line, "(")
	if open <= 0 || !strings.HasSuffix(line, ")") {
		return "", nil, fmt.Errorf("%w: invalid taxonomy line %q", domain.ErrInvalidArgument, line)
	}

	category := strings.TrimSpace(line[:open])
	body := strings.TrimSuffix(line[open+1:], ")")
	var subs []string
	for _, s := range strings.Split(body, "@") {
		if s = strings.TrimSpace(s); s != "" {
			subs = append(subs, s)
		}
	}
	if category == "" || len(subs) == 0 {
		return "", nil, fmt.Errorf("%w: invalid taxonomy line %q", domain.ErrInvalidArgument, line)
	}
	return category, subs, nil
}

// Default returns the taxonomy of the seed catalog, used when no taxonomy file is configured
func Default() *Taxonomy {
	t := New()
	_ = t.Add("Φρέσκα τρόφιμα", "Φρούτα", "Λαχανικά", "Ψάρια", "Κρέατα")
	return t
}
