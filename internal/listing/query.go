// Package listing реализует общий механизм постраничной выдачи: сортировку по
// разрешённым полям, фильтр по подстроке и расчёт количества страниц.
package listing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultPerPage используется, если размер страницы не передан.
	DefaultPerPage = 10
	// MaxPerPage ограничивает размер одной страницы.
	MaxPerPage = 100
)

// ErrInvalidQuery — общий предок всех ошибок валидации параметров выдачи.
var ErrInvalidQuery = errors.New("invalid listing query")

// Direction задаёт направление сортировки.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Query описывает запрос одной страницы коллекции.
type Query struct {
	Page      int
	PerPage   int
	SortBy    string
	Direction Direction
	Filter    string
}

// Fields описывает коллекцию: какие поля можно сортировать и по какому полю фильтровать.
type Fields struct {
	// Sortable сопоставляет публичное имя поля с колонкой хранилища.
	Sortable map[string]string
	// DefaultSort применяется, если SortBy пустой. Должен присутствовать в Sortable.
	DefaultSort string
	// FilterColumn — текстовая колонка для фильтра по подстроке.
	FilterColumn string
	// TieBreaker — колонка, восстанавливающая порядок хранения при равенстве ключей.
	TieBreaker string
}

// Normalize проверяет запрос против описания коллекции и подставляет значения по умолчанию.
// Ошибка всегда оборачивает ErrInvalidQuery.
func (q Query) Normalize(f Fields) (Query, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Page < 1 {
		return Query{}, fmt.Errorf("%w: page must be >= 1", ErrInvalidQuery)
	}

	if q.PerPage == 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage < 1 || q.PerPage > MaxPerPage {
		return Query{}, fmt.Errorf("%w: per_page must be between 1 and %d", ErrInvalidQuery, MaxPerPage)
	}

	q.SortBy = strings.TrimSpace(q.SortBy)
	if q.SortBy == "" {
		q.SortBy = f.DefaultSort
	}
	if _, ok := f.Sortable[q.SortBy]; !ok {
		return Query{}, fmt.Errorf("%w: sort_by %q is not allowed", ErrInvalidQuery, q.SortBy)
	}

	switch Direction(strings.ToLower(strings.TrimSpace(string(q.Direction)))) {
	case "", Asc:
		q.Direction = Asc
	case Desc:
		q.Direction = Desc
	default:
		return Query{}, fmt.Errorf("%w: order must be asc or desc", ErrInvalidQuery)
	}

	q.Filter = strings.TrimSpace(q.Filter)
	return q, nil
}

// Offset возвращает количество пропускаемых элементов. При переполнении
// возвращает math.MaxInt: такая страница заведомо лежит за концом коллекции.
func (q Query) Offset() int {
	if q.Page < 1 || q.PerPage < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PerPage {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PerPage
}

// Page — результат выдачи одной страницы.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Pages   int
	Total   int
}

// NewPage собирает страницу и считает общее число страниц.
func NewPage[T any](items []T, q Query, total int) Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return Page[T]{
		Items:   items,
		Page:    q.Page,
		PerPage: q.PerPage,
		Pages:   PageCount(total, q.PerPage),
		Total:   total,
	}
}

// PageCount возвращает ceil(total / perPage).
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Map преобразует элементы страницы, сохраняя счётчики.
func Map[T, R any](p Page[T], fn func(T) R) Page[R] {
	items := make([]R, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[R]{
		Items:   items,
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   p.Pages,
		Total:   p.Total,
	}
}
