package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/till-pos/internal/pos/credential"
	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/internal/pos/usecase/command"
	"github.com/tair/till-pos/internal/testutil"
	"github.com/tair/till-pos/pkg/auth"
)

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	store, _ := testutil.NewStore(t)
	handler := command.NewCreateProductHandler(store.Products())

	blank := "  "
	product, err := handler.Handle(ctx, command.CreateProductCommand{
		Name:      " Bagel ",
		Price:     decimal.RequireFromString("1.499"),
		Quantity:  12,
		ImagePath: &blank,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bagel", product.Name)
	assert.Equal(t, "1.5", product.Price.String())
	assert.Nil(t, product.ImagePath)

	tests := []struct {
		name string
		cmd  command.CreateProductCommand
	}{
		{name: "missing name", cmd: command.CreateProductCommand{Price: decimal.NewFromInt(1)}},
		{name: "negative price", cmd: command.CreateProductCommand{Name: "x", Price: decimal.NewFromInt(-1)}},
		{name: "negative quantity", cmd: command.CreateProductCommand{Name: "x", Quantity: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(ctx, tt.cmd)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	count, err := store.Products().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	ctx := context.Background()
	store, _ := testutil.NewStore(t)
	p := testutil.SeedProduct(t, store, "Bagel", "1.50", 3)

	image := "bagel.png"
	updated, err := command.NewUpdateProductHandler(store.Products()).Handle(ctx, command.UpdateProductCommand{
		ID:        p.ID,
		Name:      "Sesame bagel",
		Price:     decimal.RequireFromString("1.75"),
		Quantity:  20,
		ImagePath: &image,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sesame bagel", updated.Name)

	reloaded, _, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, reloaded.Quantity)
	require.NotNil(t, reloaded.ImagePath)
	assert.Equal(t, image, *reloaded.ImagePath)

	_, err = command.NewUpdateProductHandler(store.Products()).Handle(ctx, command.UpdateProductCommand{ID: 404, Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	del := command.NewDeleteProductHandler(store.Products())
	assert.ErrorIs(t, del.Handle(ctx, command.DeleteProductCommand{}), domain.ErrValidation)
	require.NoError(t, del.Handle(ctx, command.DeleteProductCommand{ID: p.ID}))
	assert.ErrorIs(t, del.Handle(ctx, command.DeleteProductCommand{ID: p.ID}), domain.ErrNotFound)
}

func newValidator(t *testing.T) (*credential.Validator, domain.Store) {
	t.Helper()
	store, _ := testutil.NewStore(t)
	return credential.NewValidator(store.Users(), credential.SHA256Hasher{}), store
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	validator, store := newValidator(t)
	handler := command.NewCreateUserHandler(store.Users(), validator)

	user, err := handler.Handle(ctx, command.CreateUserCommand{
		Username:        "clerk",
		Password:        "pw",
		ConfirmPassword: "pw",
		Role:            domain.RoleCashier,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, user.Role)

	_, ok, err := validator.Validate(ctx, "clerk", "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	tests := []struct {
		name string
		cmd  command.CreateUserCommand
		want error
	}{
		{name: "empty username", cmd: command.CreateUserCommand{Username: " ", Password: "pw", ConfirmPassword: "pw"}, want: domain.ErrValidation},
		{name: "empty password", cmd: command.CreateUserCommand{Username: "a"}, want: domain.ErrValidation},
		{name: "mismatch", cmd: command.CreateUserCommand{Username: "a", Password: "pw", ConfirmPassword: "px"}, want: domain.ErrPasswordMismatch},
		{name: "missing role", cmd: command.CreateUserCommand{Username: "a", Password: "pw", ConfirmPassword: "pw"}, want: domain.ErrValidation},
		{name: "bad role", cmd: command.CreateUserCommand{Username: "a", Password: "pw", ConfirmPassword: "pw", Role: "Root"}, want: domain.ErrValidation},
		{name: "duplicate", cmd: command.CreateUserCommand{Username: "clerk", Password: "pw", ConfirmPassword: "pw", Role: domain.RoleAdmin}, want: domain.ErrDuplicateUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	validator, store := newValidator(t)
	create := command.NewCreateUserHandler(store.Users(), validator)
	update := command.NewUpdateUserHandler(store.Users(), validator)

	clerk, err := create.Handle(ctx, command.CreateUserCommand{Username: "clerk", Password: "pw", ConfirmPassword: "pw", Role: domain.RoleCashier})
	require.NoError(t, err)
	_, err = create.Handle(ctx, command.CreateUserCommand{Username: "boss", Password: "pw", ConfirmPassword: "pw", Role: domain.RoleAdmin})
	require.NoError(t, err)

	t.Run("keeps password when none given", func(t *testing.T) {
		user, err := update.Handle(ctx, command.UpdateUserCommand{ID: clerk.ID, Username: "clerk2", Role: domain.RoleAdmin})
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())

		_, ok, err := validator.Validate(ctx, "clerk2", "pw")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("changes password", func(t *testing.T) {
		_, err := update.Handle(ctx, command.UpdateUserCommand{ID: clerk.ID, Username: "clerk2", Password: "new", ConfirmPassword: "new"})
		require.NoError(t, err)

		_, ok, err := validator.Validate(ctx, "clerk2", "new")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects", func(t *testing.T) {
		_, err := update.Handle(ctx, command.UpdateUserCommand{ID: clerk.ID, Username: "boss"})
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

		_, err = update.Handle(ctx, command.UpdateUserCommand{ID: clerk.ID, Username: "clerk2", Password: "a", ConfirmPassword: "b"})
		assert.ErrorIs(t, err, domain.ErrPasswordMismatch)

		_, err = update.Handle(ctx, command.UpdateUserCommand{ID: 999, Username: "ghost"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	store, _ := testutil.NewStore(t)
	admin := testutil.SeedUser(t, store, "admin", "digest", domain.RoleAdmin)
	clerk := testutil.SeedUser(t, store, "clerk", "digest", domain.RoleCashier)
	handler := command.NewDeleteUserHandler(store.Users())

	err := handler.Handle(ctx, command.DeleteUserCommand{ID: admin.ID, ActingID: admin.ID})
	assert.ErrorIs(t, err, domain.ErrSelfDeletion)
	_, found, err := store.Users().FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, handler.Handle(ctx, command.DeleteUserCommand{ID: clerk.ID, ActingID: admin.ID}))
	assert.ErrorIs(t, handler.Handle(ctx, command.DeleteUserCommand{ID: clerk.ID, ActingID: admin.ID}), domain.ErrNotFound)
}

func TestLoginUser(t *testing.T) {
	ctx := context.Background()
	validator, _ := newValidator(t)
	_, err := validator.BootstrapDefaultAdmin(ctx)
	require.NoError(t, err)

	tokens := auth.NewTokenManager("secret", time.Hour)
	handler := command.NewLoginUserHandler(validator, tokens)

	resp, err := handler.Handle(ctx, command.LoginUserCommand{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.User.Username)
	assert.NotEmpty(t, resp.SessionID)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, resp.SessionID, claims.SessionID)

	_, err = handler.Handle(ctx, command.LoginUserCommand{Username: "admin", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = handler.Handle(ctx, command.LoginUserCommand{Username: "ghost", Password: "admin"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = handler.Handle(ctx, command.LoginUserCommand{Username: "admin"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
