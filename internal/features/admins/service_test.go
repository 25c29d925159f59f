package admins

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	delegated map[[2]int64]bool
	err       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{delegated: make(map[[2]int64]bool)}
}

func (f *fakeStore) Add(_ context.Context, userID, chatID int64) error {
	f.delegated[[2]int64{userID, chatID}] = true
	return nil
}

func (f *fakeStore) Remove(_ context.Context, userID, chatID int64) error {
	delete(f.delegated, [2]int64{userID, chatID})
	return nil
}

func (f *fakeStore) IsAdmin(_ context.Context, userID, chatID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.delegated[[2]int64{userID, chatID}], nil
}

func (f *fakeStore) List(_ context.Context, chatID int64) ([]int64, error) {
	var out []int64
	for key := range f.delegated {
		if key[1] == chatID {
			out = append(out, key[0])
		}
	}
	return out, nil
}

type fakePlatform struct {
	admins map[[2]int64]bool
	err    error
}

func (f *fakePlatform) IsPlatformChatAdmin(_ context.Context, userID, chatID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.admins[[2]int64{userID, chatID}], nil
}

func TestIsSuperAdmin(t *testing.T) {
	svc := NewService(newFakeStore(), &fakePlatform{}, 777)
	assert.True(t, svc.IsSuperAdmin(777))
	assert.False(t, svc.IsSuperAdmin(778))
	assert.False(t, svc.IsSuperAdmin(0))
}

func TestAuthorizedByPlatformRole(t *testing.T) {
	platform := &fakePlatform{admins: map[[2]int64]bool{{5, 100}: true}}
	svc := NewService(newFakeStore(), platform, 777)

	assert.True(t, svc.IsChatAuthorized(context.Background(), 5, 100))
	assert.False(t, svc.IsChatAuthorized(context.Background(), 5, 200))
}

func TestAuthorizedByDelegation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakePlatform{}, 777)
	require.NoError(t, svc.AddAdmin(context.Background(), 5, 100))

	assert.True(t, svc.IsChatAuthorized(context.Background(), 5, 100))
	assert.False(t, svc.IsChatAuthorized(context.Background(), 6, 100))
}

func TestPlatformErrorFallsBackToDelegation(t *testing.T) {
	store := newFakeStore()
	store.delegated[[2]int64{5, 100}] = true
	platform := &fakePlatform{err: errors.New("сеть недоступна")}
	svc := NewService(store, platform, 777)

	// Сбой платформенной проверки не открывает доступ сам по себе,
	// но и не блокирует назначенного админа.
	assert.True(t, svc.IsChatAuthorized(context.Background(), 5, 100))
	assert.False(t, svc.IsChatAuthorized(context.Background(), 6, 100))
}

func TestStoreErrorDeniesAccess(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("БД недоступна")
	svc := NewService(store, &fakePlatform{}, 777)

	assert.False(t, svc.IsChatAuthorized(context.Background(), 5, 100))
}

func TestRemoveAdminRevokesAccess(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakePlatform{}, 777)
	ctx := context.Background()

	require.NoError(t, svc.AddAdmin(ctx, 5, 100))
	require.True(t, svc.IsChatAuthorized(ctx, 5, 100))

	require.NoError(t, svc.RemoveAdmin(ctx, 5, 100))
	assert.False(t, svc.IsChatAuthorized(ctx, 5, 100))
}
