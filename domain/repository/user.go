package repository

import (
	"context"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
)

// IUser looks up accounts for bearer-token verification.
type IUser interface {
	GetByUserName(ctx context.Context, userName string) (*model.User, error)
}
