// Package query compiles a preference snapshot into a catalog query
// plan. Filters are built as a small predicate tree and rendered to SQL
// in one place, so per-attribute translation stays testable without a
// database and escaping is confined to the renderer.
package query

import "strings"

// Expr is one node of the filter predicate tree.
type Expr interface {
	render(b *strings.Builder, args *[]any)
}

// SQL renders an expression to a WHERE fragment with ? placeholders and
// the matching argument list.
func SQL(e Expr) (string, []any) {
	var b strings.Builder
	var args []any
	e.render(&b, &args)
	return b.String(), args
}

type rawExpr string

func (e rawExpr) render(b *strings.Builder, args *[]any) {
	b.WriteString(string(e))
}

// True is the tautology filter used when no preference is set.
func True() Expr { return rawExpr("1=1") }

type cmpExpr struct {
	col string
	op  string
	val any
}

func (e cmpExpr) render(b *strings.Builder, args *[]any) {
	b.WriteString(e.col)
	b.WriteString(" ")
	b.WriteString(e.op)
	b.WriteString(" ?")
	*args = append(*args, e.val)
}

func Eq(col string, v any) Expr  { return cmpExpr{col, "=", v} }
func Ne(col string, v any) Expr  { return cmpExpr{col, "!=", v} }
func Lt(col string, v any) Expr  { return cmpExpr{col, "<", v} }
func Lte(col string, v any) Expr { return cmpExpr{col, "<=", v} }
func Gt(col string, v any) Expr  { return cmpExpr{col, ">", v} }
func Gte(col string, v any) Expr { return cmpExpr{col, ">=", v} }

type betweenExpr struct {
	col    string
	lo, hi any
}

func (e betweenExpr) render(b *strings.Builder, args *[]any) {
	b.WriteString(e.col)
	b.WriteString(" BETWEEN ? AND ?")
	*args = append(*args, e.lo, e.hi)
}

// Between matches col in [lo, hi], boundaries inclusive.
func Between(col string, lo, hi any) Expr { return betweenExpr{col, lo, hi} }

type likeExpr struct {
	col    string
	substr string
	negate bool
}

func (e likeExpr) render(b *strings.Builder, args *[]any) {
	b.WriteString("LOWER(")
	b.WriteString(e.col)
	b.WriteString(")")
	if e.negate {
		b.WriteString(" NOT")
	}
	b.WriteString(" LIKE ?")
	*args = append(*args, "%"+strings.ToLower(e.substr)+"%")
}

// Contains matches when col contains the substring, case-insensitive.
// A NULL column never matches.
func Contains(col, substr string) Expr { return likeExpr{col, substr, false} }

// NotContains matches when col does not contain the substring. A NULL
// column does not match either: SQL three-valued logic keeps the row out.
func NotContains(col, substr string) Expr { return likeExpr{col, substr, true} }

type nullExpr struct {
	col     string
	notNull bool
}

func (e nullExpr) render(b *strings.Builder, args *[]any) {
	b.WriteString(e.col)
	if e.notNull {
		b.WriteString(" IS NOT NULL")
	} else {
		b.WriteString(" IS NULL")
	}
}

func IsNull(col string) Expr  { return nullExpr{col, false} }
func NotNull(col string) Expr { return nullExpr{col, true} }

type flagExpr struct {
	col string
	val bool
}

func (e flagExpr) render(b *strings.Builder, args *[]any) {
	b.WriteString(e.col)
	if e.val {
		b.WriteString(" = 1")
	} else {
		b.WriteString(" = 0")
	}
}

// Flag matches a boolean column stored as 0/1.
func Flag(col string, v bool) Expr { return flagExpr{col, v} }

type notExpr struct{ inner Expr }

func (e notExpr) render(b *strings.Builder, args *[]any) {
	b.WriteString("NOT (")
	e.inner.render(b, args)
	b.WriteString(")")
}

func Not(e Expr) Expr { return notExpr{e} }

type junction struct {
	op       string
	children []Expr
}

func (e junction) render(b *strings.Builder, args *[]any) {
	b.WriteString("(")
	for i, c := range e.children {
		if i > 0 {
			b.WriteString(e.op)
		}
		c.render(b, args)
	}
	b.WriteString(")")
}

func join(op string, exprs []Expr) Expr {
	kept := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			kept = append(kept, e)
		}
	}
	switch len(kept) {
	case 0:
		return True()
	case 1:
		return kept[0]
	}
	return junction{op, kept}
}

// And combines expressions conjunctively. Nil children are skipped;
// an empty conjunction is the tautology.
func And(exprs ...Expr) Expr { return join(" AND ", exprs) }

// Or combines expressions disjunctively.
func Or(exprs ...Expr) Expr { return join(" OR ", exprs) }
