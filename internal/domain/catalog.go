package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User — зарегистрированный покупатель. PasswordHash никогда не отдаётся наружу.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Vendor — продавец, которому принадлежат товары.
type Vendor struct {
	ID   int64
	Name string
}

// Product — товар каталога.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	// VendorID равен 0, если продавец не указан.
	VendorID int64
}

// Validate проверяет обязательные поля товара.
func (p *Product) Validate() []error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if p.Price.IsNegative() {
		errs = append(errs, ErrPriceNegative)
	}
	return errs
}
