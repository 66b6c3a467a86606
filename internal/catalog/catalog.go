// Package catalog загружает продавцов и товары из YAML-файла в хранилище.
//
// Формат файла:
//
//	vendors:
//	  - name: Safari
//	    products:
//	      - name: Hat
//	        description: Wide brim
//	        price: "19.99"
//	products:
//	  - name: Gift card
//	    price: "50"
//
// Товары верхнего уровня сохраняются без продавца.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// File — разобранный YAML-каталог.
type File struct {
	Vendors  []VendorEntry  `yaml:"vendors"`
	Products []ProductEntry `yaml:"products"`
}

type VendorEntry struct {
	Name     string         `yaml:"name"`
	Products []ProductEntry `yaml:"products"`
}

type ProductEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
}

// Result описывает, что было сохранено.
type Result struct {
	Vendors  int
	Products int
}

// Parse разбирает каталог и проверяет все записи до обращения к хранилищу.
func Parse(data []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Vendors) == 0 && len(file.Products) == 0 {
		return File{}, errors.New("catalog is empty")
	}

	for i, v := range file.Vendors {
		if strings.TrimSpace(v.Name) == "" {
			return File{}, fmt.Errorf("vendors[%d]: %w", i, domain.ErrNameRequired)
		}
		for j, p := range v.Products {
			if _, err := p.product(0); err != nil {
				return File{}, fmt.Errorf("vendors[%d].products[%d]: %w", i, j, err)
			}
		}
	}
	for i, p := range file.Products {
		if _, err := p.product(0); err != nil {
			return File{}, fmt.Errorf("products[%d]: %w", i, err)
		}
	}
	return file, nil
}

func (e ProductEntry) product(vendorID int64) (domain.Product, error) {
	raw := strings.TrimSpace(e.Price)
	if raw == "" {
		raw = "0"
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.Product{}, fmt.Errorf("price %q: %w", e.Price, err)
	}
	p := domain.Product{
		Name:        strings.TrimSpace(e.Name),
		Description: e.Description,
		Price:       price,
		VendorID:    vendorID,
	}
	if errs := p.Validate(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}
	return p, nil
}

// Load сохраняет каталог одной транзакцией: при ошибке не остаётся ни одной записи.
func Load(ctx context.Context, store domain.Store, file File, logger *log.Entry) (Result, error) {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}

	var res Result
	err := store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		res = Result{}
		for _, v := range file.Vendors {
			vendor, err := tx.CreateVendor(ctx, domain.Vendor{Name: strings.TrimSpace(v.Name)})
			if err != nil {
				return fmt.Errorf("create vendor %q: %w", v.Name, err)
			}
			res.Vendors++
			for _, entry := range v.Products {
				if err := createProduct(ctx, tx, entry, vendor.ID); err != nil {
					return err
				}
				res.Products++
			}
		}
		for _, entry := range file.Products {
			if err := createProduct(ctx, tx, entry, 0); err != nil {
				return err
			}
			res.Products++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.WithFields(log.Fields{"vendors": res.Vendors, "products": res.Products}).Info("catalog loaded")
	return res, nil
}

func createProduct(ctx context.Context, tx domain.Repositories, entry ProductEntry, vendorID int64) error {
	p, err := entry.product(vendorID)
	if err != nil {
		return fmt.Errorf("product %q: %w", entry.Name, err)
	}
	if _, err := tx.CreateProduct(ctx, p); err != nil {
		return fmt.Errorf("create product %q: %w", entry.Name, err)
	}
	return nil
}
