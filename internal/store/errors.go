package store

import domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"

// Sentinel errors returned by Store implementations.
// They are domain errors, so errors.Is matches on the error code.
var (
	ErrLogNotFound  = domainerrors.NotFound("log not found")
	ErrTagNotFound  = domainerrors.NotFound("tag not found")
	ErrTagNameTaken = domainerrors.Conflict("tag name already exists")
)
