package comparison

import "context"

// Repository port for persisting comparison outcomes
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
}
