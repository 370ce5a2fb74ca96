package clients

import (
	"context"
	"time"

	"github.com/google/uuid"

	"atelier/internal/entities"
)

type ClientsRepo interface {
	List(ctx context.Context) ([]entities.Client, error)
	Get(ctx context.Context, id string) (entities.Client, error)
	Create(ctx context.Context, c entities.Client) error
	Update(ctx context.Context, c entities.Client) error
}

type Usecase struct {
	clients ClientsRepo
}

func NewUsecase(clients ClientsRepo) *Usecase {
	return &Usecase{clients: clients}
}

func (u *Usecase) Create(ctx context.Context, c entities.Client) (entities.Client, error) {
	now := time.Now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := u.clients.Create(ctx, c); err != nil {
		return entities.Client{}, err
	}
	return c, nil
}

func (u *Usecase) Get(ctx context.Context, id string) (entities.Client, error) {
	return u.clients.Get(ctx, id)
}

func (u *Usecase) List(ctx context.Context) ([]entities.Client, error) {
	return u.clients.List(ctx)
}

func (u *Usecase) Update(ctx context.Context, c entities.Client) (entities.Client, error) {
	c.UpdatedAt = time.Now()
	if err := u.clients.Update(ctx, c); err != nil {
		return entities.Client{}, err
	}
	return c, nil
}
