package repository

import (
	"context"

	"github.com/fastygo/followups/domain"
)

type ApplicationRepository interface {
	// GetByID returns domain.ErrApplicationNotFound when no application matches.
	GetByID(ctx context.Context, id string) (*domain.Application, error)
}
