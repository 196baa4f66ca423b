package store_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
	"github.com/lifelogapp/lifelog-server/internal/store"
)

func TestSentinels_MapToDomainCodes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, store.ErrLogNotFound.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, store.ErrTagNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, store.ErrTagNameTaken.HTTPStatus())
}

func TestSentinels_WrappedStillMatch(t *testing.T) {
	err := fmt.Errorf("delete log: %w", store.ErrLogNotFound)

	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, err, store.ErrLogNotFound)
	assert.NotErrorIs(t, err, domainerrors.ErrConflict)
}
