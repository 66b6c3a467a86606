package listing

import (
	"sort"
	"strings"
)

// Accessor описывает, как сравнивать и фильтровать элементы для in-memory выдачи.
type Accessor[T any] struct {
	// Less по публичному имени поля сравнивает два элемента по возрастанию.
	Less map[string]func(a, b T) bool
	// Text возвращает значение поля фильтра.
	Text func(T) string
}

// Apply фильтрует, стабильно сортирует и нарезает items. Ожидается, что items
// уже в порядке хранения и q прошёл Normalize.
func Apply[T any](items []T, q Query, acc Accessor[T]) Page[T] {
	filtered := make([]T, 0, len(items))
	needle := strings.ToLower(q.Filter)
	for _, item := range items {
		if needle != "" && acc.Text != nil && !strings.Contains(strings.ToLower(acc.Text(item)), needle) {
			continue
		}
		filtered = append(filtered, item)
	}

	if less, ok := acc.Less[q.SortBy]; ok {
		if q.Direction == Desc {
			sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[j], filtered[i]) })
		} else {
			sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[i], filtered[j]) })
		}
	}

	total := len(filtered)
	start := q.Offset()
	if start >= total {
		return NewPage[T](nil, q, total)
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}

	return NewPage(filtered[start:end], q, total)
}
