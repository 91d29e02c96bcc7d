package content

import "context"

const (
	opListStrategies = "content.list_strategies"
	opGetStrategy    = "content.get_strategy"
	opCreateStrategy = "content.create_strategy"
	opDeleteStrategy = "content.delete_strategy"
)

// ListStrategies returns the owner's strategies, newest first.
func (s *Service) ListStrategies(ctx context.Context, owner UserID) ([]ContentStrategy, error) {
	return listOwned[ContentStrategy](ctx, s, opListStrategies, owner)
}

// GetStrategy reports found == false when the id is unknown or owned by someone else.
func (s *Service) GetStrategy(ctx context.Context, owner UserID, id string) (ContentStrategy, bool, error) {
	return getOwned[ContentStrategy](ctx, s, opGetStrategy, owner, id)
}

// CreateStrategy validates and stores a strategy. Validation failures return *validation.Error.
func (s *Service) CreateStrategy(ctx context.Context, owner UserID, insert StrategyInsert) (ContentStrategy, error) {
	return createOwned[ContentStrategy](ctx, s, opCreateStrategy, owner, insert)
}

// DeleteStrategy is idempotent.
func (s *Service) DeleteStrategy(ctx context.Context, owner UserID, id string) error {
	return deleteOwned[ContentStrategy](ctx, s, opDeleteStrategy, owner, id)
}
