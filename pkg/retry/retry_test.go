package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return driver.ErrBadConn
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestDoNeverRetriesDomainErrors(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		attempts++
		return appErrors.Clone(appErrors.ErrForbidden, "not your subject")
	})
	require.Equal(t, 1, attempts)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestDoExhaustionSurfacesUnavailable(t *testing.T) {
	attempts := 0
	cause := driver.ErrBadConn
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		attempts++
		return cause
	})
	require.Equal(t, 3, attempts)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrUnavailable.Code, appErr.Code)
	require.ErrorIs(t, err, cause)
}

func TestDoStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fastPolicy().Do(ctx, func(context.Context) error {
		return driver.ErrBadConn
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrUnavailable.Code, appErr.Code)
}

func TestTransientClassification(t *testing.T) {
	require.True(t, Transient(driver.ErrBadConn))
	require.True(t, Transient(context.DeadlineExceeded))
	require.True(t, Transient(appErrors.Clone(appErrors.ErrUnavailable, "redis down")))
	require.False(t, Transient(nil))
	require.False(t, Transient(appErrors.ErrValidation))
	require.False(t, Transient(appErrors.ErrConflict))
	require.False(t, Transient(errors.New("some business failure")))
}
