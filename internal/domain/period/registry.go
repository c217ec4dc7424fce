package period

import (
	"context"

	"go.uber.org/zap"
)

// Registry is the single source of truth for whether a financial action is
// allowed for a subject in a period. It builds in-memory sets from the raw
// settings values, answers membership queries, and performs idempotent
// close/open mutations.
//
// A Registry memoizes each derived set after the first load. It is meant to
// live for a single request or batch operation; entries surviving across
// requests would serve stale lock state. Not safe for concurrent use.
type Registry struct {
	settings SettingsRepository
	codec    *Codec
	notifier CoherencyNotifier
	logger   *zap.Logger

	options       []Code
	optionsLoaded bool

	active       map[Code]struct{}
	activeLoaded bool

	closed       []Code
	closedSet    map[Code]struct{}
	closedLoaded bool

	subjectClosed map[SubjectKind]map[string]struct{}
}

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for malformed-entry and
// notifier-failure diagnostics.
func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithRegistryCodec shares a request-scoped Codec with the registry so both
// reuse the same memoized parses.
func WithRegistryCodec(codec *Codec) RegistryOption {
	return func(r *Registry) {
		r.codec = codec
	}
}

// WithRegistryNotifier sets the cache-coherency collaborator fired after
// every successful mutation. Its failures are logged and never propagated.
func WithRegistryNotifier(notifier CoherencyNotifier) RegistryOption {
	return func(r *Registry) {
		r.notifier = notifier
	}
}

// NewRegistry creates a request-scoped Registry over the given settings store.
func NewRegistry(settings SettingsRepository, opts ...RegistryOption) *Registry {
	r := &Registry{
		settings:      settings,
		logger:        zap.NewNop(),
		subjectClosed: make(map[SubjectKind]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.codec == nil {
		r.codec = NewCodec()
	}
	return r
}

// Codec returns the codec shared with this registry.
func (r *Registry) Codec() *Codec { return r.codec }

// Reset drops every memoized set so the next query reloads from the settings
// store. Called at request boundaries and after mutations.
func (r *Registry) Reset() {
	r.options = nil
	r.optionsLoaded = false
	r.active = nil
	r.activeLoaded = false
	r.closed = nil
	r.closedSet = nil
	r.closedLoaded = false
	r.subjectClosed = make(map[SubjectKind]map[string]struct{})
}

// ConfiguredOptions returns the configured selectable periods in stored order.
func (r *Registry) ConfiguredOptions(ctx context.Context) ([]Code, error) {
	if !r.optionsLoaded {
		codes, err := r.loadCodeList(ctx, SettingPeriodOptions)
		if err != nil {
			return nil, err
		}
		r.options = codes
		r.optionsLoaded = true
	}
	return r.options, nil
}

// ActivePeriods returns the active-period allow-list. An empty result means
// every period is active.
func (r *Registry) ActivePeriods(ctx context.Context) ([]Code, error) {
	if err := r.loadActive(ctx); err != nil {
		return nil, err
	}
	codes := make([]Code, 0, len(r.active))
	for code := range r.active {
		codes = append(codes, code)
	}
	SortCodesDescending(codes)
	return codes, nil
}

// IsPeriodActive reports whether the period accepts financial mutations.
// An empty allow-list means all periods are active; the zero Code carries no
// constraint and is treated as active on this read path.
func (r *Registry) IsPeriodActive(ctx context.Context, code Code) (bool, error) {
	if err := r.loadActive(ctx); err != nil {
		return false, err
	}
	if len(r.active) == 0 || code.IsZero() {
		return true, nil
	}
	_, member := r.active[code]
	return member, nil
}

// GloballyClosedPeriods returns the globally closed periods sorted descending
// by canonical code.
func (r *Registry) GloballyClosedPeriods(ctx context.Context) ([]Code, error) {
	if err := r.loadClosed(ctx); err != nil {
		return nil, err
	}
	return r.closed, nil
}

// IsPeriodGloballyClosed reports membership in the globally closed set.
// The zero Code is never closed.
func (r *Registry) IsPeriodGloballyClosed(ctx context.Context, code Code) (bool, error) {
	if code.IsZero() {
		return false, nil
	}
	if err := r.loadClosed(ctx); err != nil {
		return false, err
	}
	_, member := r.closedSet[code]
	return member, nil
}

// ClosePeriod adds a period to the globally closed set. Closing an already
// closed period is a no-op; so is closing the zero Code.
func (r *Registry) ClosePeriod(ctx context.Context, code Code) error {
	return r.mutateClosedPeriods(ctx, code, true)
}

// OpenPeriod removes a period from the globally closed set. Opening an
// already open period is a no-op.
func (r *Registry) OpenPeriod(ctx context.Context, code Code) error {
	return r.mutateClosedPeriods(ctx, code, false)
}

// IsSubjectManuallyClosed reports whether an explicit administrator lock
// exists for the subject in the period. Invalid kind, non-positive id, or the
// zero Code resolve to false, never an error.
func (r *Registry) IsSubjectManuallyClosed(ctx context.Context, kind SubjectKind, subjectID int64, code Code) (bool, error) {
	if !kind.IsValid() || subjectID <= 0 || code.IsZero() {
		return false, nil
	}
	set, err := r.subjectClosedSet(ctx, kind)
	if err != nil {
		return false, err
	}
	_, member := set[SubjectEntry(subjectID, code)]
	return member, nil
}

// CloseSubject records a manual lock for the subject in the period. Invalid
// input is ignored; closing an already closed subject is a no-op.
func (r *Registry) CloseSubject(ctx context.Context, kind SubjectKind, subjectID int64, code Code) error {
	return r.mutateSubject(ctx, kind, subjectID, code, true)
}

// OpenSubject removes the manual lock for the subject in the period. Invalid
// input is ignored; opening an already open subject is a no-op.
func (r *Registry) OpenSubject(ctx context.Context, kind SubjectKind, subjectID int64, code Code) error {
	return r.mutateSubject(ctx, kind, subjectID, code, false)
}

// ReplacePeriodOptions rewrites the configured-options list, normalizing and
// silently dropping malformed entries.
func (r *Registry) ReplacePeriodOptions(ctx context.Context, raw []string) error {
	return r.replaceCodeList(ctx, SettingPeriodOptions, raw, false)
}

// ReplaceActivePeriods rewrites the active-period allow-list. An empty list
// makes every period active.
func (r *Registry) ReplaceActivePeriods(ctx context.Context, raw []string) error {
	return r.replaceCodeList(ctx, SettingActivePeriods, raw, false)
}

func (r *Registry) loadActive(ctx context.Context) error {
	if r.activeLoaded {
		return nil
	}
	codes, err := r.loadCodeList(ctx, SettingActivePeriods)
	if err != nil {
		return err
	}
	r.active = make(map[Code]struct{}, len(codes))
	for _, code := range codes {
		r.active[code] = struct{}{}
	}
	r.activeLoaded = true
	return nil
}

func (r *Registry) loadClosed(ctx context.Context) error {
	if r.closedLoaded {
		return nil
	}
	codes, err := r.loadCodeList(ctx, SettingClosedPeriods)
	if err != nil {
		return err
	}
	set := make(map[Code]struct{}, len(codes))
	deduped := codes[:0]
	for _, code := range codes {
		if _, seen := set[code]; seen {
			continue
		}
		set[code] = struct{}{}
		deduped = append(deduped, code)
	}
	SortCodesDescending(deduped)
	r.closed = deduped
	r.closedSet = set
	r.closedLoaded = true
	return nil
}

// loadCodeList reads a settings value and normalizes each entry, skipping
// malformed ones with a warn log so data-quality regressions stay observable.
func (r *Registry) loadCodeList(ctx context.Context, key string) ([]Code, error) {
	raw, err := r.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	items := SplitList(raw)
	codes := make([]Code, 0, len(items))
	for _, item := range items {
		code, ok := r.codec.Normalize(item)
		if !ok {
			r.logger.Warn("skipping malformed period entry",
				zap.String("setting", key),
				zap.String("entry", item))
			continue
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (r *Registry) subjectClosedSet(ctx context.Context, kind SubjectKind) (map[string]struct{}, error) {
	if set, loaded := r.subjectClosed[kind]; loaded {
		return set, nil
	}
	key, ok := kind.SettingKey()
	if !ok {
		return nil, nil
	}
	raw, err := r.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	items := SplitList(raw)
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		id, code, valid := ParseSubjectEntry(item)
		if !valid {
			r.logger.Warn("skipping malformed subject lock entry",
				zap.String("setting", key),
				zap.String("entry", item))
			continue
		}
		set[SubjectEntry(id, code)] = struct{}{}
	}
	r.subjectClosed[kind] = set
	return set, nil
}

func (r *Registry) mutateClosedPeriods(ctx context.Context, code Code, close bool) error {
	if code.IsZero() {
		return nil
	}
	err := r.settings.Update(ctx, SettingClosedPeriods, func(current string) (string, error) {
		codes := r.parseCurrentCodes(SettingClosedPeriods, current)
		set := make(map[Code]struct{}, len(codes)+1)
		for _, c := range codes {
			set[c] = struct{}{}
		}
		if close {
			set[code] = struct{}{}
		} else {
			delete(set, code)
		}
		merged := make([]Code, 0, len(set))
		for c := range set {
			merged = append(merged, c)
		}
		SortCodesDescending(merged)
		items := make([]string, len(merged))
		for i, c := range merged {
			items[i] = c.String()
		}
		return JoinList(items), nil
	})
	if err != nil {
		return err
	}
	r.closed = nil
	r.closedSet = nil
	r.closedLoaded = false
	r.notifyMutation(ctx)
	return nil
}

func (r *Registry) mutateSubject(ctx context.Context, kind SubjectKind, subjectID int64, code Code, close bool) error {
	key, ok := kind.SettingKey()
	if !ok || subjectID <= 0 || code.IsZero() {
		return nil
	}
	target := SubjectEntry(subjectID, code)
	err := r.settings.Update(ctx, key, func(current string) (string, error) {
		entries := make([]string, 0, 8)
		seen := make(map[string]struct{})
		for _, item := range SplitList(current) {
			id, c, valid := ParseSubjectEntry(item)
			if !valid {
				r.logger.Warn("dropping malformed subject lock entry on rewrite",
					zap.String("setting", key),
					zap.String("entry", item))
				continue
			}
			entry := SubjectEntry(id, c)
			if _, dup := seen[entry]; dup {
				continue
			}
			seen[entry] = struct{}{}
			entries = append(entries, entry)
		}
		if close {
			if _, present := seen[target]; !present {
				entries = append(entries, target)
			}
		} else {
			filtered := entries[:0]
			for _, entry := range entries {
				if entry != target {
					filtered = append(filtered, entry)
				}
			}
			entries = filtered
		}
		return JoinList(entries), nil
	})
	if err != nil {
		return err
	}
	delete(r.subjectClosed, kind)
	r.notifyMutation(ctx)
	return nil
}

func (r *Registry) replaceCodeList(ctx context.Context, key string, raw []string, sortDesc bool) error {
	codes := make([]Code, 0, len(raw))
	seen := make(map[Code]struct{}, len(raw))
	for _, item := range raw {
		code, ok := r.codec.Normalize(item)
		if !ok {
			r.logger.Warn("dropping malformed period entry on replace",
				zap.String("setting", key),
				zap.String("entry", item))
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if sortDesc {
		SortCodesDescending(codes)
	}
	items := make([]string, len(codes))
	for i, code := range codes {
		items[i] = code.String()
	}
	if err := r.settings.Set(ctx, key, JoinList(items)); err != nil {
		return err
	}
	r.Reset()
	r.notifyMutation(ctx)
	return nil
}

func (r *Registry) parseCurrentCodes(key, current string) []Code {
	items := SplitList(current)
	codes := make([]Code, 0, len(items))
	for _, item := range items {
		code, ok := r.codec.Normalize(item)
		if !ok {
			r.logger.Warn("dropping malformed period entry on rewrite",
				zap.String("setting", key),
				zap.String("entry", item))
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

// notifyMutation fires the cache-coherency hooks after a successful write.
// Both hooks are best-effort: failures are logged and never surfaced, since
// the caches are optimizations rather than sources of truth.
func (r *Registry) notifyMutation(ctx context.Context) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.InvalidateReportCaches(ctx); err != nil {
		r.logger.Error("failed to invalidate report caches", zap.Error(err))
	}
	if _, err := r.notifier.BumpLookupVersion(ctx); err != nil {
		r.logger.Error("failed to bump lookup version", zap.Error(err))
	}
}
