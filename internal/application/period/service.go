// Package period wires the semester-period engine into the operation surface
// consumed by controllers: code normalization and derivation, active/closed
// queries, lock-state evaluation, and the close/open mutations.
package period

import (
	"context"

	"github.com/northtrade/backend/internal/domain/ledger"
	"github.com/northtrade/backend/internal/domain/period"
	"github.com/northtrade/backend/internal/domain/shared"
	"github.com/northtrade/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// periodOptionsCachePrefix names the derived cache holding the configured
// selectable periods. It matches the options entry in the report-cache
// invalidation list.
const periodOptionsCachePrefix = "options:semester_periods"

// Service exposes the period engine to the surrounding application. All
// operations are synchronous and side-effect-free except the close/open and
// replace mutations.
//
// Each call builds its own request-scoped registry and codec, so memoized
// parses and settings snapshots never survive past the operation that
// created them.
type Service struct {
	settings    period.SettingsRepository
	ledgerRepo  ledger.Repository
	notifier    period.CoherencyNotifier
	reportCache period.ReportCache
	logger      *zap.Logger
}

// ServiceOption is a functional option for configuring the Service
type ServiceOption func(*Service)

// WithNotifier sets the cache-coherency collaborator fired after mutations
func WithNotifier(notifier period.CoherencyNotifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithReportCache sets the derived-result cache consulted by option reads
func WithReportCache(cache period.ReportCache) ServiceOption {
	return func(s *Service) {
		s.reportCache = cache
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new period Service
func NewService(settings period.SettingsRepository, ledgerRepo ledger.Repository, opts ...ServiceOption) *Service {
	s := &Service{
		settings:   settings,
		ledgerRepo: ledgerRepo,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log returns the request-scoped logger when the context carries one, so
// service log lines keep the request ID attached by the HTTP layer.
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.logger)
}

// session holds the request-scoped codec, registry and lock service.
type session struct {
	codec    *period.Codec
	registry *period.Registry
	locks    *ledger.LockService
}

func (s *Service) newSession() *session {
	codec := period.NewCodec()
	registry := period.NewRegistry(s.settings,
		period.WithRegistryCodec(codec),
		period.WithRegistryLogger(s.logger),
		period.WithRegistryNotifier(s.notifier),
	)
	evaluator := ledger.NewBalanceEvaluator(s.ledgerRepo)
	return &session{
		codec:    codec,
		registry: registry,
		locks:    ledger.NewLockService(registry, evaluator),
	}
}

// NormalizePeriod returns the canonical form of a raw period code, or ""
// when the input does not parse.
func (s *Service) NormalizePeriod(raw string) string {
	code, ok := period.NewCodec().Normalize(raw)
	if !ok {
		return ""
	}
	return code.String()
}

// PeriodFromDate derives the period containing a date string, or "" when
// the date does not parse.
func (s *Service) PeriodFromDate(raw string) string {
	code, ok := period.NewCodec().FromDate(raw)
	if !ok {
		return ""
	}
	return code.String()
}

// CurrentPeriod returns the period containing today. Never empty.
func (s *Service) CurrentPeriod() string {
	return period.NewCodec().Current().String()
}

// PreviousPeriod returns the period immediately before the given one, or ""
// when the input does not parse.
func (s *Service) PreviousPeriod(raw string) string {
	code, ok := period.NewCodec().Normalize(raw)
	if !ok {
		return ""
	}
	return code.Previous().String()
}

// PeriodDateRange returns the inclusive calendar bounds of a period. Input
// that does not parse to a period code is a caller error.
func (s *Service) PeriodDateRange(raw string) (*PeriodRange, error) {
	code, ok := period.NewCodec().Normalize(raw)
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "unrecognized semester period code")
	}
	start, end, ok := code.DateRange()
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "unrecognized semester period code")
	}
	return &PeriodRange{
		Code:  code.String(),
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}, nil
}

// PeriodOptions returns the configured selectable periods. Results are
// served from the report cache when one is configured; mutations invalidate
// it through the coherency notifier, and cache failures fall back to the
// settings store.
func (s *Service) PeriodOptions(ctx context.Context) ([]string, error) {
	key := s.optionsCacheKey(ctx)
	if key != "" {
		if value, ok, err := s.reportCache.Fetch(ctx, key); err != nil {
			s.log(ctx).Warn("report cache fetch failed", zap.Error(err))
		} else if ok {
			return period.SplitList(value), nil
		}
	}

	codes, err := s.newSession().registry.ConfiguredOptions(ctx)
	if err != nil {
		return nil, err
	}
	options := codeStrings(codes)

	if key != "" {
		if err := s.reportCache.Store(ctx, key, period.JoinList(options)); err != nil {
			s.log(ctx).Warn("report cache store failed", zap.Error(err))
		}
	}
	return options, nil
}

func (s *Service) optionsCacheKey(ctx context.Context) string {
	if s.reportCache == nil {
		return ""
	}
	key, err := s.reportCache.DerivedKey(ctx, periodOptionsCachePrefix)
	if err != nil {
		s.log(ctx).Warn("report cache key derivation failed", zap.Error(err))
		return ""
	}
	return key
}

// ActivePeriods returns the active-period allow-list. Empty means every
// period is active.
func (s *Service) ActivePeriods(ctx context.Context) ([]string, error) {
	codes, err := s.newSession().registry.ActivePeriods(ctx)
	if err != nil {
		return nil, err
	}
	return codeStrings(codes), nil
}

// GloballyClosedPeriods returns the globally closed periods, newest code
// first.
func (s *Service) GloballyClosedPeriods(ctx context.Context) ([]string, error) {
	codes, err := s.newSession().registry.GloballyClosedPeriods(ctx)
	if err != nil {
		return nil, err
	}
	return codeStrings(codes), nil
}

// IsPeriodActive reports whether the period accepts financial mutations.
func (s *Service) IsPeriodActive(ctx context.Context, raw string) (bool, error) {
	session := s.newSession()
	code, _ := session.codec.Normalize(raw)
	return session.registry.IsPeriodActive(ctx, code)
}

// IsPeriodClosed reports global-close membership. Unparsable input reads as
// not closed.
func (s *Service) IsPeriodClosed(ctx context.Context, raw string) (bool, error) {
	session := s.newSession()
	code, ok := session.codec.Normalize(raw)
	if !ok {
		return false, nil
	}
	return session.registry.IsPeriodGloballyClosed(ctx, code)
}

// ClosePeriod closes a period globally. Unparsable input is ignored.
func (s *Service) ClosePeriod(ctx context.Context, raw string) error {
	session := s.newSession()
	code, ok := session.codec.Normalize(raw)
	if !ok {
		s.log(ctx).Debug("ignoring close of unparsable period", zap.String("raw", raw))
		return nil
	}
	return session.registry.ClosePeriod(ctx, code)
}

// OpenPeriod reopens a globally closed period. Unparsable input is ignored.
func (s *Service) OpenPeriod(ctx context.Context, raw string) error {
	session := s.newSession()
	code, ok := session.codec.Normalize(raw)
	if !ok {
		s.log(ctx).Debug("ignoring open of unparsable period", zap.String("raw", raw))
		return nil
	}
	return session.registry.OpenPeriod(ctx, code)
}

// IsSubjectManuallyClosed reports whether an explicit administrator lock
// exists for the subject in the period.
func (s *Service) IsSubjectManuallyClosed(ctx context.Context, kind period.SubjectKind, subjectID int64, raw string) (bool, error) {
	session := s.newSession()
	code, _ := session.codec.Normalize(raw)
	return session.registry.IsSubjectManuallyClosed(ctx, kind, subjectID, code)
}

// IsSubjectAutoClosed reports the derived lock flag for the subject.
func (s *Service) IsSubjectAutoClosed(ctx context.Context, kind period.SubjectKind, subjectID int64, raw string) (bool, error) {
	session := s.newSession()
	code, _ := session.codec.Normalize(raw)
	return session.locks.IsSubjectAutoClosed(ctx, kind, subjectID, code)
}

// IsSubjectLocked reports the combined manual-or-auto flag.
func (s *Service) IsSubjectLocked(ctx context.Context, kind period.SubjectKind, subjectID int64, raw string) (bool, error) {
	session := s.newSession()
	code, _ := session.codec.Normalize(raw)
	return session.locks.IsSubjectLocked(ctx, kind, subjectID, code)
}

// SubjectLockState returns the full combined state for one subject.
func (s *Service) SubjectLockState(ctx context.Context, kind period.SubjectKind, subjectID int64, raw string) (LockState, error) {
	session := s.newSession()
	code, _ := session.codec.Normalize(raw)
	state, err := session.locks.LockState(ctx, kind, subjectID, code)
	if err != nil {
		return LockState{}, err
	}
	return newLockState(subjectID, state), nil
}

// BatchSubjectLockStates returns one state per subject id, guaranteed to
// equal N single-subject queries.
func (s *Service) BatchSubjectLockStates(ctx context.Context, kind period.SubjectKind, subjectIDs []int64, raw string) (map[int64]LockState, error) {
	session := s.newSession()
	code, _ := session.codec.Normalize(raw)
	states, err := session.locks.BatchLockStates(ctx, kind, subjectIDs, code)
	if err != nil {
		return nil, err
	}
	result := make(map[int64]LockState, len(states))
	for id, state := range states {
		result[id] = newLockState(id, state)
	}
	return result, nil
}

// CloseSubjectPeriod records a manual lock for the subject. Invalid input
// is ignored.
func (s *Service) CloseSubjectPeriod(ctx context.Context, kind period.SubjectKind, subjectID int64, raw string) error {
	session := s.newSession()
	code, ok := session.codec.Normalize(raw)
	if !ok {
		s.log(ctx).Debug("ignoring subject close with unparsable period",
			zap.String("kind", kind.String()),
			zap.Int64("subject_id", subjectID),
			zap.String("raw", raw))
		return nil
	}
	return session.registry.CloseSubject(ctx, kind, subjectID, code)
}

// OpenSubjectPeriod removes the manual lock for the subject. Invalid input
// is ignored.
func (s *Service) OpenSubjectPeriod(ctx context.Context, kind period.SubjectKind, subjectID int64, raw string) error {
	session := s.newSession()
	code, ok := session.codec.Normalize(raw)
	if !ok {
		return nil
	}
	return session.registry.OpenSubject(ctx, kind, subjectID, code)
}

// ReplacePeriodOptions rewrites the configured-options list.
func (s *Service) ReplacePeriodOptions(ctx context.Context, raw []string) error {
	return s.newSession().registry.ReplacePeriodOptions(ctx, raw)
}

// ReplaceActivePeriods rewrites the active-period allow-list.
func (s *Service) ReplaceActivePeriods(ctx context.Context, raw []string) error {
	return s.newSession().registry.ReplaceActivePeriods(ctx, raw)
}

func codeStrings(codes []period.Code) []string {
	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = code.String()
	}
	return out
}
