// Package query builds SQL queries against a projection of logical field
// names onto qualified columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to qualified column references for
// one table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjectionMap creates a ProjectionMap for schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps a database column onto a logical field name.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[field] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Column returns the qualified column for field; unknown fields fall back
// to the field name itself qualified by the alias.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.columns[field]; ok {
		return col
	}
	return p.alias + "." + field
}

// Columns returns the projected column list in declaration order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}

// From returns the aliased table reference.
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}
