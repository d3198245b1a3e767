package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"myfood/internal/domain"
)

func TestBusiness_CreateRules(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.owner(t, "ana@x.com")
	bia := f.owner(t, "bia@x.com")

	id, err := f.businesses.Create(ctx, "restaurante", ana, "Bob's", "Main St", "Italian")
	require.NoError(t, err)
	require.Equal(t, domain.BusinessID(1), id)

	_, err = f.businesses.Create(ctx, "restaurante", ana, "Bob's", "Main St", "Thai")
	require.True(t, domain.IsKind(err, domain.KindConflict), "got %v", err)
	require.EqualError(t, err, "two businesses with the same name and address are not allowed")

	_, err = f.businesses.Create(ctx, "restaurante", bia, "Bob's", "Elm St", "Thai")
	require.True(t, domain.IsKind(err, domain.KindConflict), "got %v", err)
	require.EqualError(t, err, "a business with this name already exists")

	id, err = f.businesses.Create(ctx, "restaurante", ana, "Bob's", "Second St", "Italian")
	require.NoError(t, err)
	require.Equal(t, domain.BusinessID(2), id)
}

func TestBusiness_CustomerCannotOwn(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t, "caio@x.com")

	_, err := f.businesses.Create(ctx, "restaurante", c, "Bob's", "Main St", "Italian")
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)

	_, err = f.businesses.Create(ctx, "restaurante", 99, "Bob's", "Main St", "Italian")
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)

	_, err = f.businesses.ListForOwner(ctx, c)
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)
}

func TestBusiness_ListForOwner(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.owner(t, "ana@x.com")

	got, err := f.businesses.ListForOwner(ctx, ana)
	require.NoError(t, err)
	require.Equal(t, "{[]}", got)

	_, err = f.businesses.Create(ctx, "restaurante", ana, "Bob's", "Main St", "Italian")
	require.NoError(t, err)
	_, err = f.businesses.Create(ctx, "restaurante", ana, "Zed", "Elm St", "Thai")
	require.NoError(t, err)

	got, err = f.businesses.ListForOwner(ctx, ana)
	require.NoError(t, err)
	require.Equal(t, "{[[Bob's, Main St], [Zed, Elm St]]}", got)
}

func TestBusiness_Attribute(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	b := f.business(t, f.owner(t, "ana@x.com"), "Bob's")

	for attr, want := range map[string]string{
		BusinessAttrName:    "Bob's",
		BusinessAttrAddress: "Main St",
		BusinessAttrCuisine: "Italian",
		BusinessAttrOwner:   "Ana",
	} {
		got, err := f.businesses.Attribute(ctx, b, attr)
		require.NoError(t, err, attr)
		require.Equal(t, want, got, attr)
	}

	for _, attr := range []string{"", "  ", "rating"} {
		_, err := f.businesses.Attribute(ctx, b, attr)
		require.True(t, domain.IsKind(err, domain.KindValidation), "%q: got %v", attr, err)
	}
	_, err := f.businesses.Attribute(ctx, 99, BusinessAttrName)
	require.True(t, domain.IsKind(err, domain.KindNotFound), "got %v", err)
}

func TestBusiness_ResolveIndex(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.owner(t, "ana@x.com")
	first, err := f.businesses.Create(ctx, "restaurante", ana, "Bob's", "Main St", "Italian")
	require.NoError(t, err)
	_, err = f.businesses.Create(ctx, "restaurante", ana, "Zed", "Elm St", "Thai")
	require.NoError(t, err)
	second, err := f.businesses.Create(ctx, "restaurante", ana, "Bob's", "Side St", "Italian")
	require.NoError(t, err)

	got, err := f.businesses.ResolveIndex(ctx, ana, "Bob's", 0)
	require.NoError(t, err)
	require.Equal(t, first, got)
	got, err = f.businesses.ResolveIndex(ctx, ana, "Bob's", 1)
	require.NoError(t, err)
	require.Equal(t, second, got)

	_, err = f.businesses.ResolveIndex(ctx, ana, "Bob's", 2)
	require.True(t, domain.IsKind(err, domain.KindIndex), "got %v", err)
	_, err = f.businesses.ResolveIndex(ctx, ana, "Bob's", -1)
	require.True(t, domain.IsKind(err, domain.KindIndex), "got %v", err)
	_, err = f.businesses.ResolveIndex(ctx, ana, "Nope", 0)
	require.True(t, domain.IsKind(err, domain.KindNotFound), "got %v", err)
	_, err = f.businesses.ResolveIndex(ctx, ana, "", 0)
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)
}
