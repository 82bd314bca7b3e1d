package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"equipment-console/internal/domain"
	"equipment-console/internal/ports"
)

const (
	SectionProducts    = "products"
	SectionDocuments   = "documents"
	SectionUsers       = "users"
	SectionInventories = "inventories"
)

type DashboardStats struct {
	TotalProducts        int       `json:"total_products"`
	TotalDocuments       int       `json:"total_documents"`
	TotalUsers           int       `json:"total_users"`
	TotalInventories     int       `json:"total_inventories"`
	ActiveEquipment      int       `json:"active_equipment"`
	MaintenanceEquipment int       `json:"maintenance_equipment"`
	ExpiringDocuments    int       `json:"expiring_documents"`
	ExpiredDocuments     int       `json:"expired_documents"`
	Unavailable          []string  `json:"unavailable"`
	GeneratedAt          time.Time `json:"generated_at"`
}

type DashboardService struct {
	products    ports.Lister[domain.Product]
	documents   ports.Lister[domain.Document]
	users       ports.Lister[domain.User]
	inventories ports.Lister[domain.Inventory]
	logger      ports.Logger
	window      time.Duration
	now         func() time.Time
}

func NewDashboardService(
	products ports.Lister[domain.Product],
	documents ports.Lister[domain.Document],
	users ports.Lister[domain.User],
	inventories ports.Lister[domain.Inventory],
	logger ports.Logger,
	window time.Duration,
) *DashboardService {
	if window <= 0 {
		window = domain.ExpiryWarningWindow
	}
	return &DashboardService{
		products:    products,
		documents:   documents,
		users:       users,
		inventories: inventories,
		logger:      logger,
		window:      window,
		now:         time.Now,
	}
}

// Stats fetches the four collections concurrently. A failed section counts
// as zero and is listed in Unavailable; an error is returned only when every
// section failed.
func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	now := s.now()
	stats := DashboardStats{Unavailable: []string{}, GeneratedAt: now.UTC()}

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(section string, err error) {
		s.logger.Warn(ctx, "dashboard section unavailable", "section", section, "error", err)
		mu.Lock()
		defer mu.Unlock()
		stats.Unavailable = append(stats.Unavailable, section)
		errs = append(errs, fmt.Errorf("%s: %w", section, err))
	}

	var g errgroup.Group
	g.Go(func() error {
		products, err := s.products.List(ctx)
		if err != nil {
			fail(SectionProducts, err)
			return nil
		}
		total := products.Len()
		if products.Page != nil {
			total = products.Page.Total
		}
		active, maintenance := 0, 0
		for _, p := range products.Items {
			if p.IsActive() {
				active++
			}
			if p.Status == domain.ProductMaintenance {
				maintenance++
			}
		}
		mu.Lock()
		defer mu.Unlock()
		stats.TotalProducts, stats.ActiveEquipment, stats.MaintenanceEquipment = total, active, maintenance
		return nil
	})
	g.Go(func() error {
		documents, err := s.documents.List(ctx)
		if err != nil {
			fail(SectionDocuments, err)
			return nil
		}
		expiring, expired := 0, 0
		for _, d := range documents.Items {
			switch domain.ClassifyExpiry(d.ExpiryDate, now, s.window) {
			case domain.ValidityExpiringSoon:
				expiring++
			case domain.ValidityExpired:
				expired++
			}
		}
		mu.Lock()
		defer mu.Unlock()
		stats.TotalDocuments, stats.ExpiringDocuments, stats.ExpiredDocuments = documents.Len(), expiring, expired
		return nil
	})
	g.Go(func() error {
		users, err := s.users.List(ctx)
		if err != nil {
			fail(SectionUsers, err)
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		stats.TotalUsers = users.Len()
		return nil
	})
	g.Go(func() error {
		inventories, err := s.inventories.List(ctx)
		if err != nil {
			fail(SectionInventories, err)
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		stats.TotalInventories = inventories.Len()
		return nil
	})
	_ = g.Wait()

	if len(errs) == 4 {
		return stats, errors.Join(errs...)
	}
	return stats, nil
}
