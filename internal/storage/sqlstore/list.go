package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/shop/internal/listing"
)

// pageSource описывает коллекцию, из которой listing выбирает страницу.
type pageSource struct {
	columns string
	table   string
	// scope — обязательное условие выборки (например, "user_id = $1"); может быть пустым.
	scope     string
	scopeArgs []any
	fields    listing.Fields
}

// selectPage выполняет COUNT и выборку страницы по уже нормализованному запросу.
func selectPage[T any](
	ctx context.Context,
	r *repos,
	src pageSource,
	q listing.Query,
	scan func(rows *sql.Rows) (T, error),
) (listing.Page[T], error) {
	clause, err := q.SQLWithLower(src.fields, len(src.scopeArgs)+1, r.lowerFunc())
	if err != nil {
		return listing.Page[T]{}, err
	}

	var conds []string
	if src.scope != "" {
		conds = append(conds, src.scope)
	}
	if clause.Where != "" {
		conds = append(conds, clause.Where)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	args := append(append([]any{}, src.scopeArgs...), clause.Args...)

	var total int
	if err := r.queryRow(ctx, "SELECT COUNT(*) FROM "+src.table+where, args...).Scan(&total); err != nil {
		return listing.Page[T]{}, fmt.Errorf("count %s: %w", src.table, err)
	}
	if clause.Offset >= total {
		return listing.NewPage[T](nil, q, total), nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
		src.columns, src.table, where, clause.OrderBy, clause.Limit, clause.Offset)
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return listing.Page[T]{}, fmt.Errorf("list %s: %w", src.table, err)
	}
	defer rows.Close()

	items := make([]T, 0, clause.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return listing.Page[T]{}, fmt.Errorf("scan %s: %w", src.table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return listing.Page[T]{}, fmt.Errorf("iterate %s: %w", src.table, err)
	}

	return listing.NewPage(items, q, total), nil
}
