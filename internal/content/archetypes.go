package content

import "context"

const (
	opListArchetypes  = "content.list_archetype_results"
	opGetArchetype    = "content.get_archetype_result"
	opLatestArchetype = "content.latest_archetype_result"
	opCreateArchetype = "content.create_archetype_result"
)

// ListArchetypeResults returns the owner's quiz results, newest first.
func (s *Service) ListArchetypeResults(ctx context.Context, owner UserID) ([]ArchetypeResult, error) {
	return listOwned[ArchetypeResult](ctx, s, opListArchetypes, owner)
}

// GetArchetypeResult reports found == false when the id is unknown or owned by someone else.
func (s *Service) GetArchetypeResult(ctx context.Context, owner UserID, id string) (ArchetypeResult, bool, error) {
	return getOwned[ArchetypeResult](ctx, s, opGetArchetype, owner, id)
}

// LatestArchetypeResult returns the owner's most recent quiz result, if any.
func (s *Service) LatestArchetypeResult(ctx context.Context, owner UserID) (ArchetypeResult, bool, error) {
	if err := s.ready(opLatestArchetype, owner); err != nil {
		return ArchetypeResult{}, false, err
	}
	record, found, err := scoped[ArchetypeResult](ctx, s.db, owner).latest()
	if err != nil {
		return ArchetypeResult{}, false, s.fail(opLatestArchetype, reasonQueryFailed, err, owner)
	}
	return record, found, nil
}

// CreateArchetypeResult validates and stores a quiz result. Results are append-only.
func (s *Service) CreateArchetypeResult(ctx context.Context, owner UserID, insert ArchetypeInsert) (ArchetypeResult, error) {
	return createOwned[ArchetypeResult](ctx, s, opCreateArchetype, owner, insert)
}
