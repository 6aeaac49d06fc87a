package core

import (
	"context"
	"fmt"
	"log/slog"
)

// ItemService manages item records.
type ItemService interface {
	CreateItem(ctx context.Context, in ItemInput) (*Item, error)
	GetItem(ctx context.Context, id int) (*Item, error)
	UpdateItem(ctx context.Context, id int, patch ItemPatch) (*Item, error)
	DeleteItem(ctx context.Context, id int) error
	ListItems(ctx context.Context) ([]Item, error)
}

type itemService struct {
	repo   ItemRepository
	logger *slog.Logger
}

// NewItemService constructs an ItemService backed by store.
func NewItemService(store Store, logger *slog.Logger) ItemService {
	if logger == nil {
		logger = slog.Default()
	}
	return &itemService{repo: store.Items(), logger: logger.With("service", "items")}
}

func (s *itemService) CreateItem(ctx context.Context, in ItemInput) (*Item, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validateVolume(in.Volume); err != nil {
		return nil, err
	}
	in.Name = name

	item, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create item %q: %w", in.Name, err)
	}
	s.logger.InfoContext(ctx, "item created", "item_id", item.ID, "name", item.Name, "volume", item.Volume)
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id int) (*Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

func (s *itemService) UpdateItem(ctx context.Context, id int, patch ItemPatch) (*Item, error) {
	if patch.Name != nil {
		name, err := normalizeName(*patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Volume != nil {
		if err := validateVolume(*patch.Volume); err != nil {
			return nil, err
		}
	}

	item, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update item %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "item updated", "item_id", item.ID)
	return item, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "item deleted", "item_id", id)
	return nil
}

func (s *itemService) ListItems(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}
