package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

func TestToggle_OnThenOff(t *testing.T) {
	repo := newFakeLikeRepo()
	svc := NewPlaceLikeService(repo)

	result, err := svc.Toggle(context.Background(), "m1", "v1", "u1")
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikeCount)

	result, err = svc.Toggle(context.Background(), "m1", "v1", "u1")
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, 0, result.LikeCount)
}

func TestToggle_CountsAcrossUsers(t *testing.T) {
	repo := newFakeLikeRepo()
	svc := NewPlaceLikeService(repo)

	_, err := svc.Toggle(context.Background(), "m1", "v1", "u1")
	require.NoError(t, err)

	result, err := svc.Toggle(context.Background(), "m1", "v1", "u2")
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 2, result.LikeCount)
}

func TestToggle_RejectsMissingIDs(t *testing.T) {
	svc := NewPlaceLikeService(newFakeLikeRepo())

	_, err := svc.Toggle(context.Background(), "", "v1", "u1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.Toggle(context.Background(), "m1", "", "u1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.Toggle(context.Background(), "m1", "v1", "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
