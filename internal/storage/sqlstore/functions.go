package sqlstore

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"

	"github.com/vladislavdragonenkov/shop/internal/listing"
)

// sqliteLower — замена встроенного LOWER, который в SQLite понимает только ASCII.
const sqliteLower = "shop_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLower, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// lowerFunc возвращает функцию нижнего регистра для фильтра listing.
func (r *repos) lowerFunc() string {
	if r.driver == DriverSQLite {
		return sqliteLower
	}
	return listing.DefaultLower
}
