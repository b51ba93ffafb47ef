package query

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyField is the projected field appended to every ordering so rows that
// share a sort value keep a stable position across pages.
const KeyField = "Id"

// maxSearchLen bounds search terms in runes.
const maxSearchLen = 100

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// condition renders one WHERE term. bind registers an argument and returns its placeholder.
type condition func(bind func(arg any) string) string

// Builder builds list, count and single-record queries over a projection.
// Placeholders are numbered in the order conditions were added.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort SortField
}

// NewBuilder creates a Builder for the given projection.
// The optional defaultSort applies when no explicit ordering is set.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	b := &Builder{projection: projection}
	if len(defaultSort) > 0 {
		b.defaultSort = defaultSort[0]
	}
	return b
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return "SELECT COUNT(*) FROM " + b.projection.Table() + where, args
}

// BuildPage returns a SELECT for one page. page is 1-based.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.buildWhere()
	offset := max(page-1, 0) * pageSize

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.buildOrderBy(),
		pageSize,
		offset,
	)
	return sql, args
}

// BuildSingle returns a SELECT for the record whose idField equals id.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.Table(),
		b.projection.Column(idField),
	)
	return sql, []any{id}
}

// OrderByFields replaces the ordering. Fields not in the projection are ignored.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = b.sort[:0]
	for _, f := range fields {
		if b.projection.Has(f.Field) {
			b.sort = append(b.sort, f)
		}
	}
	return b
}

// WhereEquals adds an equality condition. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if value == nil {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(bind func(any) string) string {
		return col + " = " + bind(value)
	})
}

// WhereIn adds an IN condition. Empty slices are ignored.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(bind func(any) string) string {
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = bind(v)
		}
		return col + " IN (" + strings.Join(placeholders, ", ") + ")"
	})
}

// WhereContains adds a case-insensitive substring match. Nil or blank values are ignored.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	return b.WhereSearch(value, field)
}

// WhereSearch matches the term as a literal substring of any of fields.
// LIKE wildcards in the term are escaped and the term is cut to maxSearchLen runes.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || len(fields) == 0 {
		return b
	}
	term := strings.TrimSpace(*search)
	if term == "" {
		return b
	}
	if r := []rune(term); len(r) > maxSearchLen {
		term = string(r[:maxSearchLen])
	}
	pattern := "%" + likeEscaper.Replace(term) + "%"

	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}

	return b.where(func(bind func(any) string) string {
		clauses := make([]string, len(cols))
		for i, col := range cols {
			clauses[i] = col + " ILIKE " + bind(pattern)
		}
		return "(" + strings.Join(clauses, " OR ") + ")"
	})
}

func (b *Builder) where(c condition) *Builder {
	b.conditions = append(b.conditions, c)
	return b
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	var args []any
	bind := func(arg any) string {
		args = append(args, arg)
		return "$" + strconv.Itoa(len(args))
	}

	clauses := make([]string, len(b.conditions))
	for i, c := range b.conditions {
		clauses[i] = c(bind)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) buildOrderBy() string {
	fields := b.sort
	if len(fields) == 0 && b.defaultSort.Field != "" {
		fields = []SortField{b.defaultSort}
	}

	clauses := make([]string, 0, len(fields)+1)
	keyed := false
	for _, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		clauses = append(clauses, b.projection.Column(f.Field)+" "+dir)
		keyed = keyed || f.Field == KeyField
	}

	if !keyed && b.projection.Has(KeyField) {
		clauses = append(clauses, b.projection.Column(KeyField)+" ASC")
	}
	if len(clauses) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
