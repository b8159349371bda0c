package profile

import (
	"context"

	"github.com/google/uuid"
)

// Repository loads provider and patient profiles. Inactive records are
// treated as absent.
type Repository interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
}
