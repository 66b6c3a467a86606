package listing

import (
	"fmt"
	"strings"
)

// SQLClause — фрагменты запроса, построенные из нормализованного Query.
type SQLClause struct {
	// Where — условие фильтра без ключевого слова WHERE; пустое, если фильтра нет.
	Where string
	// Args — аргументы для Where.
	Args []any
	// OrderBy — выражение сортировки без ключевых слов ORDER BY.
	OrderBy string
	Limit   int
	Offset  int
}

// DefaultLower — SQL-функция приведения к нижнему регистру для фильтра.
const DefaultLower = "LOWER"

// SQL строит фрагменты запроса с DefaultLower. argIndex — номер первого плейсхолдера ($N),
// доступного для условия фильтра. Колонки берутся только из Fields, поэтому
// пользовательский ввод в текст запроса не попадает.
func (q Query) SQL(f Fields, argIndex int) (SQLClause, error) {
	return q.SQLWithLower(f, argIndex, DefaultLower)
}

// SQLWithLower — как SQL, но колонка фильтра приводится к нижнему регистру функцией
// lower. Нужна движкам, чей LOWER не понимает Unicode.
func (q Query) SQLWithLower(f Fields, argIndex int, lower string) (SQLClause, error) {
	if lower == "" {
		lower = DefaultLower
	}
	column, ok := f.Sortable[q.SortBy]
	if !ok {
		return SQLClause{}, fmt.Errorf("%w: sort_by %q is not allowed", ErrInvalidQuery, q.SortBy)
	}

	dir := "ASC"
	if q.Direction == Desc {
		dir = "DESC"
	}

	clause := SQLClause{
		OrderBy: column + " " + dir,
		Limit:   q.PerPage,
		Offset:  q.Offset(),
	}
	if f.TieBreaker != "" && f.TieBreaker != column {
		clause.OrderBy += ", " + f.TieBreaker + " ASC"
	}

	if q.Filter != "" && f.FilterColumn != "" {
		clause.Where = fmt.Sprintf(`%s(%s) LIKE $%d ESCAPE '\'`, lower, f.FilterColumn, argIndex)
		clause.Args = append(clause.Args, "%"+escapeLike(strings.ToLower(q.Filter))+"%")
	}

	return clause, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
