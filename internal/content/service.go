package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingUserID     = errors.New("user identifier is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError wraps a store fault with a stable "<operation>.<reason>" code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "content.service.new"

	reasonMissingDatabase = "missing_database"
	reasonMissingUserID   = "missing_user_id"
	reasonQueryFailed     = "query_failed"
	reasonInsertFailed    = "insert_failed"
	reasonDeleteFailed    = "delete_failed"
	reasonIDFailed        = "id_generation_failed"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies of the content gateway.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service is the owner-scoped persistence gateway for strategies, archetype results,
// voice posts and case studies.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, reasonMissingDatabase, errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

type recordHeader struct {
	id        string
	createdAt time.Time
}

// newHeader assigns the server-owned fields. Timestamps are truncated to microseconds so the
// value handed back from create equals what postgres returns on the next read.
func (s *Service) newHeader() (recordHeader, error) {
	id, err := s.idProvider.NewID()
	if err != nil {
		return recordHeader{}, err
	}
	return recordHeader{id: id, createdAt: s.clock().UTC().Truncate(time.Microsecond)}, nil
}

func (s *Service) ready(operation string, owner UserID) error {
	if s == nil || s.db == nil {
		s.logError(operation, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(operation, reasonMissingDatabase, errMissingDatabase)
	}
	if owner == "" {
		s.logError(operation, reasonMissingUserID, errMissingUserID)
		return newServiceError(operation, reasonMissingUserID, errMissingUserID)
	}
	return nil
}

func (s *Service) fail(operation, reason string, err error, owner UserID, fields ...zap.Field) error {
	s.logError(operation, reason, err, append([]zap.Field{zap.String("user_id", owner.String())}, fields...)...)
	return newServiceError(operation, reason, err)
}

func listOwned[T ownedRecord](ctx context.Context, s *Service, operation string, owner UserID) ([]T, error) {
	if err := s.ready(operation, owner); err != nil {
		return nil, err
	}
	records, err := scoped[T](ctx, s.db, owner).list()
	if err != nil {
		return nil, s.fail(operation, reasonQueryFailed, err, owner)
	}
	return records, nil
}

func getOwned[T ownedRecord](ctx context.Context, s *Service, operation string, owner UserID, rawID string) (T, bool, error) {
	var zero T
	if err := s.ready(operation, owner); err != nil {
		return zero, false, err
	}
	id, ok := recordID(rawID)
	if !ok {
		return zero, false, nil
	}
	record, found, err := scoped[T](ctx, s.db, owner).get(id)
	if err != nil {
		return zero, false, s.fail(operation, reasonQueryFailed, err, owner, zap.String("record_id", id))
	}
	return record, found, nil
}

type insertPayload[T ownedRecord] interface {
	Validate() error
	record(owner UserID, header recordHeader) T
}

func createOwned[T ownedRecord](ctx context.Context, s *Service, operation string, owner UserID, payload insertPayload[T]) (T, error) {
	var zero T
	if err := s.ready(operation, owner); err != nil {
		return zero, err
	}
	if err := payload.Validate(); err != nil {
		return zero, err
	}
	header, err := s.newHeader()
	if err != nil {
		return zero, s.fail(operation, reasonIDFailed, err, owner)
	}
	record := payload.record(owner, header)
	if err := scoped[T](ctx, s.db, owner).insert(&record); err != nil {
		return zero, s.fail(operation, reasonInsertFailed, err, owner, zap.String("record_id", header.id))
	}
	return record, nil
}

func deleteOwned[T ownedRecord](ctx context.Context, s *Service, operation string, owner UserID, rawID string) error {
	if err := s.ready(operation, owner); err != nil {
		return err
	}
	id, ok := recordID(rawID)
	if !ok {
		return nil
	}
	if err := scoped[T](ctx, s.db, owner).remove(id); err != nil {
		return s.fail(operation, reasonDeleteFailed, err, owner, zap.String("record_id", id))
	}
	return nil
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("content service error", attrs...)
}
