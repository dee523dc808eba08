package sitegen

import (
	"errors"

	"github.com/tensorplex-labs/pridano/internal/runstore"
)

var (
	ErrInvalidVariantCount = errors.New("variant count out of range")
	ErrNoVariants          = errors.New("no variant could be produced")
	ErrEmptyIndex          = runstore.ErrEmptyIndex
)
