package memory

import (
	"context"
	"strings"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func (st *state) CreateVendor(_ context.Context, vendor domain.Vendor) (domain.Vendor, error) {
	if strings.TrimSpace(vendor.Name) == "" {
		return domain.Vendor{}, domain.ErrNameRequired
	}
	st.nextVendorID++
	vendor.ID = st.nextVendorID
	st.vendors[vendor.ID] = vendor
	return vendor, nil
}

func (st *state) CreateProduct(_ context.Context, product domain.Product) (domain.Product, error) {
	if product.VendorID != 0 {
		if _, ok := st.vendors[product.VendorID]; !ok {
			return domain.Product{}, domain.ErrVendorNotFound
		}
	}
	st.nextProductID++
	product.ID = st.nextProductID
	st.products[product.ID] = product
	return product, nil
}

func (st *state) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	product, ok := st.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (s *Store) CreateVendor(ctx context.Context, vendor domain.Vendor) (domain.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateVendor(ctx, vendor)
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateProduct(ctx, product)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetProduct(ctx, id)
}
