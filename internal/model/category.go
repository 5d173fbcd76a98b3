package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Category is the top-level classification label of a question.
type Category string

const (
	CategoryAccounting Category = "accounting"
	CategoryFinance    Category = "finance"
	CategoryBusiness   Category = "business"
	CategoryHybrid     Category = "hybrid"
	CategoryElse       Category = "else"
)

// ErrUnknownCategory is returned when a label is outside the five-member enumeration.
var ErrUnknownCategory = eris.New("unknown category")

// AllCategories returns the categories in classification priority order.
// Else is last: it is the fallback, not a tie-break winner.
func AllCategories() []Category {
	return []Category{
		CategoryAccounting,
		CategoryFinance,
		CategoryBusiness,
		CategoryHybrid,
		CategoryElse,
	}
}

// AnswerCategories returns the categories that have one template per tier.
func AnswerCategories() []Category {
	return []Category{
		CategoryAccounting,
		CategoryFinance,
		CategoryBusiness,
		CategoryHybrid,
	}
}

// categoryRank maps categories to their tie-break priority. Lower wins.
var categoryRank = map[Category]int{
	CategoryAccounting: 0,
	CategoryFinance:    1,
	CategoryBusiness:   2,
	CategoryHybrid:     3,
	CategoryElse:       4,
}

// ParseCategory converts a raw label to a Category. Matching ignores case
// and surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", eris.Wrapf(ErrUnknownCategory, "category %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the five categories.
func (c Category) Valid() bool {
	_, ok := categoryRank[c]
	return ok
}

// Rank returns the tie-break priority of c, or -1 for an invalid category.
func (c Category) Rank() int {
	r, ok := categoryRank[c]
	if !ok {
		return -1
	}
	return r
}

// NeedsEntity reports whether answering c requires company/year-scoped data.
func (c Category) NeedsEntity() bool {
	switch c {
	case CategoryFinance, CategoryBusiness, CategoryHybrid:
		return true
	default:
		return false
	}
}

// TierIndependent reports whether c has a single template for all tiers.
func (c Category) TierIndependent() bool {
	return c == CategoryElse
}

func (c Category) String() string {
	return string(c)
}
