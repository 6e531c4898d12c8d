package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"casetrend/pkg/records"
)

// Statement returns the SELECT to run for cfg. quoteFQN quotes a possibly
// schema-qualified table name in the backend's dialect.
func Statement(cfg Config, quoteFQN func(string) string) (string, error) {
	if q := strings.TrimSpace(cfg.Query); q != "" {
		return q, nil
	}
	t := strings.TrimSpace(cfg.Table)
	if t == "" {
		return "", fmt.Errorf("storage: table or query is required")
	}
	return "SELECT * FROM " + quoteFQN(t), nil
}

// QuoteFQN splits name on dots, trims the parts, drops empty ones and quotes
// each remaining part with quote.
func QuoteFQN(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// QueryRecords runs stmt on db and converts every row with ScanRows.
func QueryRecords(ctx context.Context, db *sql.DB, stmt string) ([]records.Record, error) {
	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return ScanRows(rows)
}

// ScanRows drains rows into records, rendering every value with Stringify.
func ScanRows(rows *sql.Rows) ([]records.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	var out []records.Record
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[i] = records.Field{Key: c, Value: Stringify(vals[i])}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Stringify renders a driver value the way it would appear in a CSV export.
// NULL becomes the empty string and timestamps become ISO dates.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.DateOnly)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return ""
		}
		if _, again := dv.(driver.Valuer); again {
			return fmt.Sprint(dv)
		}
		return Stringify(dv)
	default:
		return fmt.Sprint(x)
	}
}
