// Package entity defines the core domain entities of the news service.
// It contains the Article record, its annotation projection, the set of
// individually updatable fields and the domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Article represents one stored news record.
// Annotation fields are nullable and therefore pointers.
type Article struct {
	ID             int64
	Name           string // source/outlet identifier
	Title          string
	Date           time.Time
	Language       string
	Summary        *string
	Keyword        *string
	Classification *string
	Background     *string
	Memo           *string
}

// ArticleDetails is the annotation-only projection of an Article.
type ArticleDetails struct {
	Summary        *string
	Keyword        *string
	Classification *string
	Background     *string
	Memo           *string
}

// Field names a single article column that may be updated on its own.
type Field string

// Updatable fields. The string value is the column name.
const (
	FieldSummary        Field = "summary"
	FieldMemo           Field = "memo"
	FieldClassification Field = "classification"
	FieldBackground     Field = "background"
	FieldKeyword        Field = "keyword"
)

// UpdatableFields lists every Field accepted by single-field updates.
var UpdatableFields = []Field{
	FieldSummary,
	FieldMemo,
	FieldClassification,
	FieldBackground,
	FieldKeyword,
}

// Valid reports whether f is one of UpdatableFields.
func (f Field) Valid() bool {
	for _, uf := range UpdatableFields {
		if f == uf {
			return true
		}
	}
	return false
}

// Column returns the column name for f.
func (f Field) Column() string {
	return string(f)
}

// Label returns the capitalized field name, e.g. "Memo".
func (f Field) Label() string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Set assigns v to field f. Unknown fields are ignored.
func (a *Article) Set(f Field, v *string) {
	switch f {
	case FieldSummary:
		a.Summary = v
	case FieldMemo:
		a.Memo = v
	case FieldClassification:
		a.Classification = v
	case FieldBackground:
		a.Background = v
	case FieldKeyword:
		a.Keyword = v
	}
}

// Details returns the annotation projection of the article.
func (a *Article) Details() *ArticleDetails {
	return &ArticleDetails{
		Summary:        a.Summary,
		Keyword:        a.Keyword,
		Classification: a.Classification,
		Background:     a.Background,
		Memo:           a.Memo,
	}
}

// SameDay reports whether t falls on the calendar day of day, in day's location.
func SameDay(t, day time.Time) bool {
	t = t.In(day.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
