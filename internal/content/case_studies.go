package content

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	opListCaseStudies   = "content.list_case_studies"
	opGetCaseStudy      = "content.get_case_study"
	opSearchCaseStudies = "content.search_case_studies"
	opCreateCaseStudy   = "content.create_case_study"
	opDeleteCaseStudy   = "content.delete_case_study"

	dialectPostgres = "postgres"
	queryCaseILike  = "(review_text ILIKE ? OR generated_quote ILIKE ? OR generated_body ILIKE ?)"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListCaseStudies returns the owner's case studies, newest first.
func (s *Service) ListCaseStudies(ctx context.Context, owner UserID) ([]CaseStudy, error) {
	return listOwned[CaseStudy](ctx, s, opListCaseStudies, owner)
}

// GetCaseStudy reports found == false when the id is unknown or owned by someone else.
func (s *Service) GetCaseStudy(ctx context.Context, owner UserID, id string) (CaseStudy, bool, error) {
	return getOwned[CaseStudy](ctx, s, opGetCaseStudy, owner, id)
}

// SearchCaseStudies matches query case-insensitively against the review, quote and body.
// An empty query returns every case study the owner has; whitespace is matched literally.
func (s *Service) SearchCaseStudies(ctx context.Context, owner UserID, query string) ([]CaseStudy, error) {
	if query == "" {
		return s.ListCaseStudies(ctx, owner)
	}
	if err := s.ready(opSearchCaseStudies, owner); err != nil {
		return nil, err
	}

	table := scoped[CaseStudy](ctx, s.db, owner)
	if s.db.Dialector.Name() == dialectPostgres {
		pattern := "%" + likeEscaper.Replace(query) + "%"
		records, err := table.filter(queryCaseILike, pattern, pattern, pattern)
		if err != nil {
			return nil, s.fail(opSearchCaseStudies, reasonQueryFailed, err, owner, zap.String("query", query))
		}
		return records, nil
	}

	// sqlite's LIKE and lower() only fold ASCII, so matching happens here over the owner's rows.
	owned, err := table.list()
	if err != nil {
		return nil, s.fail(opSearchCaseStudies, reasonQueryFailed, err, owner, zap.String("query", query))
	}
	needle := strings.ToLower(query)
	matches := make([]CaseStudy, 0, len(owned))
	for _, record := range owned {
		if record.matches(needle) {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

// CreateCaseStudy validates and stores a case study. Tags are stored as given.
func (s *Service) CreateCaseStudy(ctx context.Context, owner UserID, insert CaseStudyInsert) (CaseStudy, error) {
	return createOwned[CaseStudy](ctx, s, opCreateCaseStudy, owner, insert)
}

// DeleteCaseStudy is idempotent.
func (s *Service) DeleteCaseStudy(ctx context.Context, owner UserID, id string) error {
	return deleteOwned[CaseStudy](ctx, s, opDeleteCaseStudy, owner, id)
}

func (r CaseStudy) matches(lowerNeedle string) bool {
	if strings.Contains(strings.ToLower(r.ReviewText), lowerNeedle) {
		return true
	}
	for _, field := range []*string{r.GeneratedQuote, r.GeneratedBody} {
		if field != nil && strings.Contains(strings.ToLower(*field), lowerNeedle) {
			return true
		}
	}
	return false
}
