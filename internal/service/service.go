package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"myfood/internal/domain"
)

// Lookups used between registries. Each returns false when the id is unknown.
type (
	UserLookup interface {
		Lookup(ctx context.Context, id domain.UserID) (domain.User, bool)
	}
	BusinessLookup interface {
		Lookup(ctx context.Context, id domain.BusinessID) (domain.Business, bool)
	}
	ProductLookup interface {
		Lookup(ctx context.Context, id domain.ProductID) (domain.Product, bool)
	}
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// formatList renders items the way every listing is exposed: {[a, b, c]}
func formatList(items []string) string {
	return "{[" + strings.Join(items, ", ") + "]}"
}

// formatMoney always uses two decimals and a period separator.
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
