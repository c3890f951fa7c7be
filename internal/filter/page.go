package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000
)

// Order — одно правило сортировки.
type Order struct {
	Field string
	Desc  bool
}

// Page — параметры пагинации и сортировки в стиле Spring: page, size, sort=field,dir.
type Page struct {
	Number int
	Size   int
	Sort   []Order
}

// ParsePage читает page, size и sort. Сортировать можно только по известным полям.
func ParsePage(values url.Values, fields []Field) (Page, error) {
	page := Page{Number: 0, Size: DefaultPageSize}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, fmt.Errorf("%w: page=%s", ErrInvalidFilter, raw)
		}
		page.Number = n
	}
	if raw := values.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, fmt.Errorf("%w: size=%s", ErrInvalidFilter, raw)
		}
		page.Size = min(n, MaxPageSize)
	}

	known := make(map[string]Field, len(fields))
	for _, f := range fields {
		known[f.Name] = f
	}

	for _, raw := range values["sort"] {
		parts := strings.Split(raw, ",")
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		field, ok := known[name]
		if !ok {
			return page, fmt.Errorf("%w: сортировка по неизвестному полю %q", ErrInvalidFilter, name)
		}
		order := Order{Field: field.Column}
		if len(parts) > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[1])) {
			case "asc", "":
			case "desc":
				order.Desc = true
			default:
				return page, fmt.Errorf("%w: направление сортировки %q", ErrInvalidFilter, parts[1])
			}
		}
		page.Sort = append(page.Sort, order)
	}

	return page, nil
}

// Offset возвращает смещение первой строки страницы.
func (p Page) Offset() uint64 {
	return uint64(p.Number) * uint64(p.Size)
}

// Limit возвращает размер страницы.
func (p Page) Limit() uint64 {
	return uint64(p.Size)
}

// OrderBy собирает выражения ORDER BY. В конец всегда добавляется id, чтобы страницы не перекрывались.
func (p Page) OrderBy() []string {
	clauses := make([]string, 0, len(p.Sort)+1)
	byID := false
	for _, o := range p.Sort {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		clauses = append(clauses, o.Field+" "+dir)
		if o.Field == "id" {
			byID = true
		}
	}
	if !byID {
		clauses = append(clauses, "id ASC")
	}
	return clauses
}

// TotalPages считает количество страниц для total записей.
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
