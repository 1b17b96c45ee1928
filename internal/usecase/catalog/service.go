package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/grocery_cart/internal/catalogfile"
	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/grocery_cart/internal/pkg/validator"
)

const (
	eventsSubject = "catalog.events"

	defaultTopSelling = 5
	maxTopSelling     = 50
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// SearchCache caches the product IDs a search returned
type SearchCache interface {
	GetSearch(ctx context.Context, criteria domain.Criteria) ([]uuid.UUID, error)
	SetSearch(ctx context.Context, criteria domain.Criteria, ids []uuid.UUID) error
	InvalidateSearch(ctx context.Context) error
}

// ProductEvent is published after every catalog change
type ProductEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
}

// RegisterInput describes a new product
type RegisterInput struct {
	Title       string      `validate:"required,notblank,max=255"`
	Description string      `validate:"required,notblank"`
	Category    string      `validate:"required,notblank,max=255"`
	Subcategory string      `validate:"required,notblank,max=255"`
	Price       float64     `validate:"gt=0"`
	Unit        domain.Unit `validate:"required,oneof=pieces kg"`
	Quantity    float64     `validate:"gte=0"`
}

// EditInput holds the editable fields of a product
type EditInput struct {
	Title       string  `validate:"required,notblank,max=255"`
	Description string  `validate:"required,notblank"`
	Price       float64 `validate:"gt=0"`
	Quantity    float64 `validate:"gte=0"`
}

// Statistics is the administrator's view of the catalog
type Statistics struct {
	TotalProducts    int                   `json:"total_products"`
	UnavailableCount int                   `json:"unavailable_count"`
	Unavailable      []domain.ProductView  `json:"unavailable"`
	MostOrdered      []domain.ProductSales `json:"most_ordered"`
}

// Service keeps the in-memory catalog and its persistent copy in step
type Service struct {
	catalog     *domain.Catalog
	repo        domain.ProductRepository
	sales       domain.SalesRepository
	taxonomy    domain.CategoryLookup
	cache       SearchCache
	publisher   EventPublisher
	validate    *validator.Validate
	logger      *logger.Logger
	catalogFile string
}

// NewService creates a new catalog service. catalogFile may be empty.
func NewService(
	catalog *domain.Catalog,
	repo domain.ProductRepository,
	sales domain.SalesRepository,
	taxonomy domain.CategoryLookup,
	cache SearchCache,
	publisher EventPublisher,
	catalogFile string,
	log *logger.Logger,
) *Service {
	return &Service{
		catalog:     catalog,
		repo:        repo,
		sales:       sales,
		taxonomy:    taxonomy,
		cache:       cache,
		publisher:   publisher,
		validate:    pkgvalidator.Get(),
		logger:      log,
		catalogFile: catalogFile,
	}
}

// Bootstrap fills the empty in-memory catalog. Stored products win; an empty
// store is seeded from the catalog file and, failing that, from the default
// products when seedDefaults is set. It returns how many products were loaded.
func (s *Service) Bootstrap(ctx context.Context, seedDefaults bool) (int, error) {
	stored, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count stored products", err)
		return 0, err
	}

	if stored > 0 {
		views, err := s.repo.List(ctx)
		if err != nil {
			s.logger.Error("Failed to list stored products", err)
			return 0, err
		}
		for _, v := range views {
			p, err := domain.RestoreProduct(v)
			if err != nil {
				s.logger.WithFields(map[string]interface{}{
					"product_id": v.ID,
				}).Error("Skipping invalid stored product", err)
				continue
			}
			if err := s.catalog.Add(p); err != nil {
				return 0, err
			}
		}
		s.logStartup("database")
		return s.catalog.Len(), nil
	}

	products, source, err := s.initialProducts(seedDefaults)
	if err != nil {
		return 0, err
	}

	for _, p := range products {
		if err := s.Add(ctx, p); err != nil {
			return 0, err
		}
	}
	s.logStartup(source)

	if source == "defaults" {
		// Later restarts read the file back instead of reseeding
		if err := s.SaveCatalogFile(); err != nil {
			s.logger.Warnf("Default catalog was not written to file: %v", err)
		}
	}

	return s.catalog.Len(), nil
}

func (s *Service) initialProducts(seedDefaults bool) ([]*domain.Product, string, error) {
	if s.catalogFile != "" {
		products, err := catalogfile.LoadFile(s.catalogFile, s.logger)
		if err == nil {
			return products, "file", nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("Failed to load catalog file", err)
			return nil, "", err
		}
		s.logger.Warnf("Catalog file %s not found", s.catalogFile)
	}

	if !seedDefaults {
		return nil, "empty", nil
	}

	products, err := DefaultProducts()
	return products, "defaults", err
}

func (s *Service) logStartup(source string) {
	s.logger.WithFields(map[string]interface{}{
		"source":   source,
		"products": s.catalog.Len(),
	}).Info("Catalog loaded")
}

// Register validates input against the taxonomy and adds the new product
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		s.logger.Error("Product validation failed", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, pkgvalidator.Message(err))
	}

	if s.taxonomy != nil {
		if !s.taxonomy.CategoryExists(in.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidArgument, in.Category)
		}
		if !s.taxonomy.SubcategoryExists(in.Category, in.Subcategory) {
			return nil, fmt.Errorf("%w: unknown subcategory %q of %q", domain.ErrInvalidArgument, in.Subcategory, in.Category)
		}
	}

	var (
		p   *domain.Product
		err error
	)
	switch in.Unit {
	case domain.UnitPieces:
		if in.Quantity != math.Trunc(in.Quantity) {
			return nil, fmt.Errorf("%w: pieces must be a whole number", domain.ErrInvalidQuantity)
		}
		p, err = domain.NewPieceProduct(in.Title, in.Description, in.Category, in.Subcategory, in.Price, int(in.Quantity))
	default:
		p, err = domain.NewWeightProduct(in.Title, in.Description, in.Category, in.Subcategory, in.Price, in.Quantity)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Add(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Add puts an already built product into the catalog and the store.
// Adding the same product twice fails with domain.ErrDuplicateProduct.
func (s *Service) Add(ctx context.Context, p *domain.Product) error {
	if err := s.catalog.Add(p); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p.Stored()); err != nil {
		s.logger.Error("Failed to create product", err)
		if _, rmErr := s.catalog.Remove(p.ID()); rmErr != nil {
			s.logger.Error("Failed to roll back catalog entry", rmErr)
		}
		return err
	}

	s.invalidateSearch(ctx)
	s.publishEvent("product.created", p)

	s.logger.WithFields(map[string]interface{}{
		"product_id": p.ID(),
		"title":      p.Title(),
	}).Info("Product registered successfully")

	return nil
}

// Get retrieves a catalog product by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := s.catalog.Get(id)
	if err != nil {
		s.logger.Debugf("Product not found: %s", id)
		return nil, err
	}
	return p, nil
}

// List returns every catalog product in registration order
func (s *Service) List(ctx context.Context) []*domain.Product {
	return s.catalog.List()
}

// Search filters the catalog by exact, case-insensitive title, category and
// subcategory. Results are served from cache when possible.
func (s *Service) Search(ctx context.Context, criteria domain.Criteria) []*domain.Product {
	if criteria.IsEmpty() || s.cache == nil {
		return s.catalog.Search(criteria)
	}

	ids, err := s.cache.GetSearch(ctx, criteria)
	if err == nil {
		s.logger.Debugf("Cache hit for search %+v", criteria)
		products := make([]*domain.Product, 0, len(ids))
		for _, id := range ids {
			// Removed products may linger until the entry expires
			if p, err := s.catalog.Get(id); err == nil {
				products = append(products, p)
			}
		}
		return products
	}

	s.logger.Debugf("Cache miss for search %+v", criteria)
	products := s.catalog.Search(criteria)

	ids = make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID()
	}
	if err := s.cache.SetSearch(ctx, criteria, ids); err != nil {
		s.logger.Warnf("Failed to cache search %+v: %v", criteria, err)
	}

	return products
}

// Edit changes title, description, price and stock of a product at once
func (s *Service) Edit(ctx context.Context, id uuid.UUID, in EditInput) (*domain.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		s.logger.Error("Product validation failed", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, pkgvalidator.Message(err))
	}

	p, err := s.catalog.Get(id)
	if err != nil {
		return nil, err
	}

	before := p.Snapshot()
	if err := p.Edit(domain.ProductEdit{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p.Stored()); err != nil {
		s.logger.Error("Failed to update product", err)
		if revertErr := p.Edit(domain.ProductEdit{
			Title:       before.Title,
			Description: before.Description,
			Price:       before.Price,
			Quantity:    before.Quantity,
		}); revertErr != nil {
			s.logger.Error("Failed to revert product edit", revertErr)
		}
		return nil, err
	}

	s.invalidateSearch(ctx)
	s.publishEvent("product.updated", p)

	s.logger.WithFields(map[string]interface{}{
		"product_id": p.ID(),
		"title":      p.Title(),
	}).Info("Product updated successfully")

	return p, nil
}

// Remove takes a product out of the catalog. Orders that already contain it
// are not affected.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	p, err := s.catalog.Remove(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to delete product", err)
			if addErr := s.catalog.Add(p); addErr != nil {
				s.logger.Error("Failed to restore catalog entry", addErr)
			}
			return err
		}
		s.logger.Warnf("Product %s was already missing from the store", id)
	}

	s.invalidateSearch(ctx)
	s.publishEvent("product.deleted", p)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product removed successfully")

	return nil
}

// Statistics reports unavailable products and the most ordered ones
func (s *Service) Statistics(ctx context.Context, limit int) (*Statistics, error) {
	if limit <= 0 || limit > maxTopSelling {
		limit = defaultTopSelling
	}

	unavailable := s.catalog.Unavailable()
	views := make([]domain.ProductView, len(unavailable))
	for i, p := range unavailable {
		views[i] = p.Snapshot()
	}

	stats := &Statistics{
		TotalProducts:    s.catalog.Len(),
		UnavailableCount: len(views),
		Unavailable:      views,
		MostOrdered:      []domain.ProductSales{},
	}

	if s.sales != nil {
		top, err := s.sales.TopSelling(ctx, limit)
		if err != nil {
			s.logger.Error("Failed to load sales statistics", err)
			return nil, err
		}
		stats.MostOrdered = top
	}

	return stats, nil
}

// SyncStock writes the stock on hand of every product back to the store
func (s *Service) SyncStock(ctx context.Context) error {
	products := s.catalog.List()
	views := make([]domain.ProductView, len(products))
	for i, p := range products {
		views[i] = p.Stored()
	}

	if err := s.repo.UpdateStock(ctx, views); err != nil {
		s.logger.Error("Failed to sync stock", err)
		return err
	}
	return nil
}

// SaveCatalogFile writes the catalog to the configured text file, if any
func (s *Service) SaveCatalogFile() error {
	if s.catalogFile == "" {
		return nil
	}

	if err := catalogfile.SaveFile(s.catalogFile, s.catalog.List()); err != nil {
		s.logger.Error("Failed to save catalog file", err)
		return err
	}

	s.logger.Infof("Catalog saved to %s", s.catalogFile)
	return nil
}

func (s *Service) invalidateSearch(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Stale results would hide new products or show removed ones
	if err := s.cache.InvalidateSearch(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate search cache: %v", err)
	}
}

// publishEvent publishes a product event (non-blocking)
func (s *Service) publishEvent(eventType string, p *domain.Product) {
	if s.publisher == nil {
		return
	}

	event := ProductEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		ProductID: p.ID(),
		Title:     p.Title(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for product %s", p.ID())
		return
	}

	go func() {
		if err := s.publisher.Publish(context.Background(), eventsSubject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for product %s", p.ID())
		}
	}()
}
