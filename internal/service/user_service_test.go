package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"myfood/internal/domain"
)

func TestUser_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	c := f.customer(t, "caio@x.com")
	o := f.owner(t, "ana@x.com")
	require.Equal(t, domain.UserID(1), c)
	require.Equal(t, domain.UserID(2), o)

	got, err := f.users.Login(ctx, "ana@x.com", "secret")
	require.NoError(t, err)
	require.Equal(t, o, got)
}

func TestUser_LoginFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.customer(t, "caio@x.com")

	cases := map[string][2]string{
		"blank email":    {"", "secret"},
		"blank password": {"caio@x.com", " "},
		"unknown email":  {"nobody@x.com", "secret"},
		"wrong password": {"caio@x.com", "nope"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.users.Login(ctx, tc[0], tc[1])
			require.ErrorIs(t, err, domain.ErrInvalidLogin)
			require.Equal(t, "invalid login or password", err.Error())
		})
	}
}

func TestUser_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	cases := []struct {
		name, email, password, address string
		want                           string
	}{
		{"", "a@b", "p", "addr", "invalid name"},
		{"n", " ", "p", "addr", "invalid email"},
		{"n", "a@b", "", "addr", "invalid password"},
		{"n", "a@b", "p", "\t", "invalid address"},
		{"n", "ab.com", "p", "addr", "invalid email"},
	}
	for _, tc := range cases {
		_, err := f.users.RegisterCustomer(ctx, tc.name, tc.email, tc.password, tc.address)
		require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)
		require.EqualError(t, err, tc.want)
	}
}

func TestUser_TaxIDCheckedBeforeDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.customer(t, "dup@x.com")

	cases := []struct {
		name  string
		taxID string
	}{
		{"short", "123"},
		{"one under", "123.456.789-0"},
		{"one over", "123.456.789-000"},
		{"empty", ""},
		{"blank", "              "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, email := range []string{"fresh@x.com", "dup@x.com"} {
				_, err := f.users.RegisterOwner(ctx, "Ana", email, "p", "Rua", tc.taxID)
				require.True(t, domain.IsKind(err, domain.KindValidation), "%s: got %v", email, err)
				require.EqualError(t, err, "invalid cpf")
			}
		})
	}

	_, err := f.users.RegisterOwner(ctx, "Ana", "dup@x.com", "p", "Rua", "123.456.789-00")
	require.True(t, domain.IsKind(err, domain.KindConflict), "got %v", err)
	_, err = f.users.Login(ctx, "fresh@x.com", "p")
	require.True(t, domain.IsKind(err, domain.KindAuth), "got %v", err)
}

func TestUser_DuplicateEmailAnyVariant(t *testing.T) {
	ctx := context.Background()
	type reg func(f fixture, email string) error
	customer := func(f fixture, email string) error {
		_, err := f.users.RegisterCustomer(ctx, "C", email, "p", "a")
		return err
	}
	owner := func(f fixture, email string) error {
		_, err := f.users.RegisterOwner(ctx, "O", email, "p", "a", "123.456.789-00")
		return err
	}
	pairs := map[string][2]reg{
		"customer/customer": {customer, customer},
		"customer/owner":    {customer, owner},
		"owner/customer":    {owner, customer},
		"owner/owner":       {owner, owner},
	}
	for name, p := range pairs {
		t.Run(name, func(t *testing.T) {
			f := setup(t)
			require.NoError(t, p[0](f, "same@x.com"))
			err := p[1](f, "same@x.com")
			require.True(t, domain.IsKind(err, domain.KindConflict), "got %v", err)
		})
	}
}

func TestUser_Attribute(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t, "caio@x.com")
	o := f.owner(t, "ana@x.com")

	for attr, want := range map[string]string{
		"name": "Caio", "nome": "Caio",
		"email":    "caio@x.com",
		"password": "secret", "senha": "secret",
		"address": "Rua C", "endereco": "Rua C",
	} {
		got, err := f.users.Attribute(ctx, c, attr)
		require.NoError(t, err, attr)
		require.Equal(t, want, got, attr)
	}

	cpf, err := f.users.Attribute(ctx, o, "cpf")
	require.NoError(t, err)
	require.Equal(t, "123.456.789-00", cpf)

	_, err = f.users.Attribute(ctx, c, "cpf")
	require.True(t, domain.IsKind(err, domain.KindAttribute), "got %v", err)
	_, err = f.users.Attribute(ctx, c, "age")
	require.True(t, domain.IsKind(err, domain.KindAttribute), "got %v", err)
	_, err = f.users.Attribute(ctx, 99, "name")
	require.True(t, domain.IsKind(err, domain.KindNotFound), "got %v", err)
}

func TestUser_LookupAndReset(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.customer(t, "caio@x.com")

	u, ok := f.users.Lookup(ctx, c)
	require.True(t, ok)
	require.True(t, u.IsCustomer())

	_, ok = f.users.Lookup(ctx, 99)
	require.False(t, ok)

	f.users.Reset(ctx)
	_, ok = f.users.Lookup(ctx, c)
	require.False(t, ok)
	require.Equal(t, domain.UserID(1), f.customer(t, "caio@x.com"))
}
