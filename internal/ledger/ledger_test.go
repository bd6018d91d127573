package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/testutil"
)

// testEnv bundles a service over a fresh store with the standard fixture
// and a counter of change notifications.
type testEnv struct {
	svc      *Service
	fx       *testutil.Fixture
	notified *int
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	store := testutil.NewStore(t)
	fx := testutil.NewBuilder(t).WithStandard().MustBuild(store)

	svc := New(store, nil)
	count := 0
	svc.Notifier().Subscribe(func() { count++ })

	return testEnv{svc: svc, fx: fx, notified: &count}
}

func (e testEnv) account(t *testing.T, name string) int64 {
	t.Helper()
	return e.fx.Account(t, name).ID
}

func (e testEnv) category(t *testing.T, name string) int64 {
	t.Helper()
	return e.fx.Category(t, name).ID
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func int64Ptr(v int64) *int64 {
	return &v
}

var ctx = context.Background()
