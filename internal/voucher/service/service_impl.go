package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/ledgerly/internal/audit/domain"
	"github.com/smallbiznis/ledgerly/internal/clock"
	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/internal/directory"
	"github.com/smallbiznis/ledgerly/internal/events"
	numberingdomain "github.com/smallbiznis/ledgerly/internal/numbering/domain"
	"github.com/smallbiznis/ledgerly/internal/observability/logger"
	"github.com/smallbiznis/ledgerly/internal/observability/metrics"
	"github.com/smallbiznis/ledgerly/internal/observability/tracing"
	"github.com/smallbiznis/ledgerly/internal/voucher/domain"
	"github.com/smallbiznis/ledgerly/pkg/db/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"

	outcomeSuccess    = "success"
	outcomeInvalid    = "invalid"
	outcomeConflict   = "conflict"
	outcomeNotFound   = "not_found"
	outcomeFailure    = "failure"
	outcomeDependency = "dependency_failure"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Companies companydomain.Service
	Builder   domain.Builder
	Validator domain.Validator
	Repo      domain.Repository
	Numbering numberingdomain.Service
	Publisher events.Publisher
	Audit     auditdomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	companies companydomain.Service
	builder   domain.Builder
	validator domain.Validator
	repo      domain.Repository
	numbering numberingdomain.Service
	publisher events.Publisher
	audit     auditdomain.Service
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("voucher.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		companies: p.Companies,
		builder:   p.Builder,
		validator: p.Validator,
		repo:      p.Repo,
		numbering: p.Numbering,
		publisher: p.Publisher,
		audit:     p.Audit,
		metrics:   p.Metrics,
		tracer:    otel.Tracer("ledgerly/voucher"),
	}
}

func (s *Service) Create(ctx context.Context, companyID snowflake.ID, draft domain.Draft) (domain.Voucher, error) {
	ctx, span := s.startSpan(ctx, "voucher.create", companyID, draft.VoucherType)
	defer span.End()

	settings, err := s.settings(ctx, companyID)
	if err != nil {
		return domain.Voucher{}, s.fail(ctx, span, opCreate, draft.VoucherType, err)
	}

	v, err := s.builder.Build(ctx, domain.BuildRequest{
		CompanyID:   companyID,
		Settings:    settings,
		Draft:       draft,
		IssueNumber: true,
	})
	if err != nil {
		return domain.Voucher{}, s.fail(ctx, span, opCreate, draft.VoucherType, err)
	}
	if verrs := s.validator.Validate(v, domain.ModeFinal); len(verrs) > 0 {
		return domain.Voucher{}, s.fail(ctx, span, opCreate, draft.VoucherType, verrs)
	}

	variant := domain.VariantFor(settings.EnableGST)
	if !v.AutoNumbered {
		if err := s.ensureNumberFree(ctx, variant, &v, 0); err != nil {
			return domain.Voucher{}, s.fail(ctx, span, opCreate, draft.VoucherType, err)
		}
	}

	now := s.clock.Now()
	v.ID = s.genID.Generate()
	v.Revision = 1
	v.CreatedAt = now
	v.UpdatedAt = now
	s.assignLineIDs(&v)

	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.Insert(ctx, tx, variant, &v); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, auditEntry(events.TypeVoucherCreated, v))
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicateNumber) {
			return domain.Voucher{}, s.fail(ctx, span, opCreate, draft.VoucherType, &domain.PersistenceError{Op: opCreate, Err: err})
		}

		s.metrics.RecordNumberingConflict(ctx, string(v.VoucherType))
		conflict := &domain.NumberingConflictError{VoucherType: v.VoucherType, VoucherNumber: v.VoucherNumber, Retryable: true}
		if !v.AutoNumbered || attempt > 0 {
			return domain.Voucher{}, s.fail(ctx, span, opCreate, draft.VoucherType, conflict)
		}
		if err := s.builder.Reissue(ctx, &v); err != nil {
			return domain.Voucher{}, s.fail(ctx, span, opCreate, draft.VoucherType, err)
		}
	}

	v.State = domain.StatePersisted
	s.succeed(ctx, span, opCreate, &v)
	s.publish(ctx, events.TypeVoucherCreated, v)
	return v, nil
}

func (s *Service) View(ctx context.Context, companyID, id snowflake.ID) (domain.Voucher, error) {
	ctx, span := s.startSpan(ctx, "voucher.view", companyID, "")
	defer span.End()

	if id == 0 {
		return domain.Voucher{}, domain.ErrInvalidID
	}
	settings, err := s.settings(ctx, companyID)
	if err != nil {
		return domain.Voucher{}, err
	}
	v, err := s.find(ctx, domain.VariantFor(settings.EnableGST), companyID, id)
	if err != nil {
		span.SetStatus(codes.Error, "view failed")
		return domain.Voucher{}, err
	}
	return *v, nil
}

func (s *Service) Update(ctx context.Context, companyID, id snowflake.ID, draft domain.Draft) (domain.Voucher, error) {
	ctx, span := s.startSpan(ctx, "voucher.update", companyID, draft.VoucherType)
	defer span.End()

	if id == 0 {
		return domain.Voucher{}, domain.ErrInvalidID
	}
	settings, err := s.settings(ctx, companyID)
	if err != nil {
		return domain.Voucher{}, s.fail(ctx, span, opUpdate, draft.VoucherType, err)
	}
	variant := domain.VariantFor(settings.EnableGST)

	existing, err := s.find(ctx, variant, companyID, id)
	if err != nil {
		return domain.Voucher{}, s.fail(ctx, span, opUpdate, draft.VoucherType, err)
	}

	v, err := s.builder.Build(ctx, domain.BuildRequest{
		CompanyID: companyID,
		Settings:  settings,
		Draft:     draft,
		Existing:  existing,
	})
	if err != nil {
		return domain.Voucher{}, s.fail(ctx, span, opUpdate, draft.VoucherType, err)
	}
	if verrs := s.validator.Validate(v, domain.ModeFinal); len(verrs) > 0 {
		return domain.Voucher{}, s.fail(ctx, span, opUpdate, draft.VoucherType, verrs)
	}
	if v.VoucherNumber != existing.VoucherNumber {
		if err := s.ensureNumberFree(ctx, variant, &v, v.ID); err != nil {
			return domain.Voucher{}, s.fail(ctx, span, opUpdate, draft.VoucherType, err)
		}
	}

	v.Revision = existing.Revision + 1
	v.UpdatedAt = s.clock.Now()
	s.assignLineIDs(&v)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Replace(ctx, tx, variant, &v, existing.Revision); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditEntry(events.TypeVoucherUpdated, v))
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateNumber):
		s.metrics.RecordNumberingConflict(ctx, string(v.VoucherType))
		return domain.Voucher{}, s.fail(ctx, span, opUpdate, draft.VoucherType,
			&domain.NumberingConflictError{VoucherType: v.VoucherType, VoucherNumber: v.VoucherNumber, Retryable: true})
	case errors.Is(err, domain.ErrVoucherNotFound), errors.Is(err, domain.ErrRevisionConflict):
		return domain.Voucher{}, s.fail(ctx, span, opUpdate, draft.VoucherType, err)
	default:
		return domain.Voucher{}, s.fail(ctx, span, opUpdate, draft.VoucherType, &domain.PersistenceError{Op: opUpdate, Err: err})
	}

	v.State = domain.StateUpdated
	s.succeed(ctx, span, opUpdate, &v)
	s.publish(ctx, events.TypeVoucherUpdated, v)
	return v, nil
}

// Delete picks the physical variant from the settings in force now.
func (s *Service) Delete(ctx context.Context, companyID, id snowflake.ID) error {
	ctx, span := s.startSpan(ctx, "voucher.delete", companyID, "")
	defer span.End()

	if id == 0 {
		return domain.ErrInvalidID
	}
	settings, err := s.settings(ctx, companyID)
	if err != nil {
		return s.fail(ctx, span, opDelete, "", err)
	}
	variant := domain.VariantFor(settings.EnableGST)

	var deleted *domain.Voucher
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, variant, companyID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrVoucherNotFound
		}
		ok, err := s.repo.Delete(ctx, tx, variant, companyID, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrVoucherNotFound
		}
		deleted = current
		return s.audit.Record(ctx, tx, auditEntry(events.TypeVoucherDeleted, *current))
	})
	if errors.Is(err, domain.ErrVoucherNotFound) {
		return s.fail(ctx, span, opDelete, "", err)
	}
	if err != nil {
		return s.fail(ctx, span, opDelete, "", &domain.PersistenceError{Op: opDelete, Err: err})
	}

	deleted.State = domain.StateDeleted
	s.succeed(ctx, span, opDelete, deleted)
	s.publish(ctx, events.TypeVoucherDeleted, *deleted)
	return nil
}

func (s *Service) List(ctx context.Context, companyID snowflake.ID, req domain.ListRequest) (domain.ListResponse, error) {
	settings, err := s.settings(ctx, companyID)
	if err != nil {
		return domain.ListResponse{}, err
	}

	filter, err := parseListRequest(req)
	if err != nil {
		return domain.ListResponse{}, err
	}
	limit := req.Pagination.Limit()
	filter.Limit = limit + 1

	items, err := s.repo.List(ctx, s.db, domain.VariantFor(settings.EnableGST), companyID, filter)
	if err != nil {
		return domain.ListResponse{}, &domain.PersistenceError{Op: "list", Err: err}
	}

	items, pageInfo, err := pagination.BuildCursorPageInfo(items, limit, func(v *domain.Voucher) pagination.Cursor {
		return pagination.Cursor{ID: v.ID.String(), CreatedAt: v.CreatedAt.Format(time.RFC3339)}
	})
	if err != nil {
		return domain.ListResponse{}, err
	}
	return domain.ListResponse{Vouchers: items, PageInfo: pageInfo}, nil
}

// Preview builds and validates without touching numbering or storage.
func (s *Service) Preview(ctx context.Context, companyID snowflake.ID, draft domain.Draft) (domain.PreviewResult, error) {
	ctx, span := s.startSpan(ctx, "voucher.preview", companyID, draft.VoucherType)
	defer span.End()

	settings, err := s.settings(ctx, companyID)
	if err != nil {
		return domain.PreviewResult{}, err
	}

	v, err := s.builder.Build(ctx, domain.BuildRequest{
		CompanyID: companyID,
		Settings:  settings,
		Draft:     draft,
	})
	result := domain.PreviewResult{Voucher: v, Errors: domain.ValidationErrors{}}
	if err != nil {
		verrs, ok := domain.AsValidation(err)
		if !ok {
			return domain.PreviewResult{}, err
		}
		result.Errors = verrs
		s.recordValidation(ctx, draft.VoucherType, verrs)
	}

	if v.VoucherNumber == "" && v.VoucherType != "" {
		next, err := s.numbering.Peek(ctx, companyID, string(v.VoucherType), previewDate(v.Date, s.clock.Now()))
		if err != nil {
			s.log.Warn("next number preview failed", zap.String("company_id", companyID.String()), zap.Error(err))
		} else {
			result.NextNumber = next.Value
		}
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

func (s *Service) NextNumber(ctx context.Context, companyID snowflake.ID, voucherType string) (domain.NextNumberResponse, error) {
	if companyID == 0 {
		return domain.NextNumberResponse{}, domain.ErrInvalidCompany
	}
	t, ok := domain.ParseVoucherType(voucherType)
	if !ok {
		return domain.NextNumberResponse{}, domain.ValidationErrors{{
			Field:   "voucher_type",
			Code:    domain.CodeInvalidVoucherType,
			Message: "voucher_type must be payment, receipt, sales or purchase",
		}}
	}
	if _, err := s.settings(ctx, companyID); err != nil {
		return domain.NextNumberResponse{}, err
	}
	next, err := s.numbering.Peek(ctx, companyID, string(t), s.clock.Now())
	if err != nil {
		return domain.NextNumberResponse{}, err
	}
	return domain.NextNumberResponse{VoucherType: t, VoucherNumber: next.Value, VoucherTypeID: next.VoucherTypeID}, nil
}

func (s *Service) settings(ctx context.Context, companyID snowflake.ID) (companydomain.Settings, error) {
	if companyID == 0 {
		return companydomain.Settings{}, domain.ErrInvalidCompany
	}
	return s.companies.Settings(ctx, companyID)
}

// find reads header, entries and items in one transaction.
func (s *Service) find(ctx context.Context, variant domain.StoreVariant, companyID, id snowflake.ID) (*domain.Voucher, error) {
	var v *domain.Voucher
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, variant, companyID, id)
		v = found
		return err
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "view", Err: err}
	}
	if v == nil {
		return nil, domain.ErrVoucherNotFound
	}
	return v, nil
}

func (s *Service) ensureNumberFree(ctx context.Context, variant domain.StoreVariant, v *domain.Voucher, excludeID snowflake.ID) error {
	taken, err := s.repo.NumberTaken(ctx, s.db, variant, v.CompanyID, v.VoucherType, v.VoucherNumber, excludeID)
	if err != nil {
		return &domain.PersistenceError{Op: "number_check", Err: err}
	}
	if taken {
		return domain.ValidationErrors{{
			Field:   "voucher_number",
			Code:    domain.CodeDuplicateNumber,
			Message: "voucher_number " + v.VoucherNumber + " is already used",
		}}
	}
	return nil
}

func (s *Service) assignLineIDs(v *domain.Voucher) {
	for i := range v.AccountingEntries {
		v.AccountingEntries[i].ID = s.genID.Generate()
		v.AccountingEntries[i].VoucherID = v.ID
	}
	for i := range v.Items {
		v.Items[i].ID = s.genID.Generate()
		v.Items[i].VoucherID = v.ID
	}
}

// auditEntry describes a voucher change; it commits with the change itself.
func auditEntry(action string, v domain.Voucher) auditdomain.Entry {
	return auditdomain.Entry{
		CompanyID:  v.CompanyID,
		Action:     action,
		TargetType: auditdomain.TargetTypeVoucher,
		TargetID:   v.ID.String(),
		Revision:   v.Revision,
		Metadata: map[string]any{
			"voucher_type":   string(v.VoucherType),
			"voucher_number": v.VoucherNumber,
			"grand_total":    v.GrandTotal.StringFixed(2),
			"metadata":       v.Metadata,
		},
	}
}

// publish runs after commit; a failed delivery is logged and swallowed.
func (s *Service) publish(ctx context.Context, eventType string, v domain.Voucher) {
	evt := events.Event{
		Type:          eventType,
		CompanyID:     v.CompanyID.String(),
		VoucherID:     v.ID.String(),
		VoucherType:   string(v.VoucherType),
		VoucherNumber: v.VoucherNumber,
		GrandTotal:    v.GrandTotal.StringFixed(2),
		Revision:      v.Revision,
		OccurredAt:    s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logger.WithContext(ctx, s.log).Warn("voucher event publish failed",
			zap.String("event_type", eventType),
			zap.String("voucher_id", evt.VoucherID),
			zap.Error(err),
		)
	}
}

func (s *Service) startSpan(ctx context.Context, name string, companyID snowflake.ID, voucherType string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(tracing.SafeAttributes(
		attribute.String("company_id", companyID.String()),
		attribute.String("voucher_type", strings.ToLower(voucherType)),
	)...))
}

func (s *Service) succeed(ctx context.Context, span trace.Span, op string, v *domain.Voucher) {
	s.metrics.RecordVoucherOperation(ctx, op, string(v.VoucherType), outcomeSuccess)
	span.SetAttributes(attribute.String("voucher_id", v.ID.String()))
	logger.WithContext(ctx, s.log).Info("voucher "+op+"d",
		zap.String("company_id", v.CompanyID.String()),
		zap.String("voucher_id", v.ID.String()),
		zap.String("voucher_type", string(v.VoucherType)),
		zap.String("voucher_number", v.VoucherNumber),
		zap.Int("revision", v.Revision),
	)
}

// fail records the outcome of a rejected operation and returns err unchanged.
func (s *Service) fail(ctx context.Context, span trace.Span, op, voucherType string, err error) error {
	voucherType = strings.ToLower(strings.TrimSpace(voucherType))
	log := logger.WithContext(ctx, s.log).With(
		zap.String("operation", op),
		zap.String("voucher_type", voucherType),
	)

	var (
		verrs    domain.ValidationErrors
		fetchErr *directory.FetchError
		conflict *domain.NumberingConflictError
		outcome  = outcomeFailure
	)
	switch {
	case errors.As(err, &verrs):
		outcome = outcomeInvalid
		s.recordValidation(ctx, voucherType, verrs)
		log.Debug("voucher rejected", zap.Int("violations", len(verrs)))
	case errors.As(err, &conflict):
		outcome = outcomeConflict
		log.Warn("voucher number conflict", zap.String("voucher_number", conflict.VoucherNumber))
	case errors.Is(err, domain.ErrVoucherNotFound), errors.Is(err, companydomain.ErrNotFound):
		outcome = outcomeNotFound
		log.Debug("voucher operation on missing record", zap.Error(err))
	case errors.Is(err, domain.ErrRevisionConflict):
		outcome = outcomeConflict
		log.Warn("voucher modified concurrently")
	case errors.As(err, &fetchErr):
		outcome = outcomeDependency
		log.Warn("directory unavailable", zap.String("kind", fetchErr.Kind), zap.Error(err))
	default:
		log.Error("voucher operation failed", zap.Error(err))
	}

	s.metrics.RecordVoucherOperation(ctx, op, voucherType, outcome)
	span.RecordError(tracing.SafeError(err))
	span.SetStatus(codes.Error, outcome)
	return err
}

func (s *Service) recordValidation(ctx context.Context, voucherType string, verrs domain.ValidationErrors) {
	voucherType = strings.ToLower(strings.TrimSpace(voucherType))
	for _, fe := range verrs {
		if fe.IsResolution() {
			s.metrics.RecordResolutionFailure(ctx, voucherType)
			continue
		}
		s.metrics.RecordValidationFailure(ctx, voucherType, fe.Code)
	}
}

func parseListRequest(req domain.ListRequest) (domain.ListFilter, error) {
	var filter domain.ListFilter
	if strings.TrimSpace(req.VoucherType) != "" {
		t, ok := domain.ParseVoucherType(req.VoucherType)
		if !ok {
			return filter, domain.ErrInvalidListFilter
		}
		filter.VoucherType = t
	}
	for _, bound := range []struct {
		raw string
		dst **time.Time
	}{{req.From, &filter.From}, {req.To, &filter.To}} {
		if strings.TrimSpace(bound.raw) == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", strings.TrimSpace(bound.raw))
		if err != nil {
			return filter, domain.ErrInvalidListFilter
		}
		*bound.dst = &t
	}
	if strings.TrimSpace(req.PartyID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.PartyID))
		if err != nil {
			return filter, domain.ErrInvalidListFilter
		}
		filter.PartyID = id
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return filter, err
		}
		filter.Cursor = cursor
	}
	return filter, nil
}

func previewDate(date, now time.Time) time.Time {
	if date.IsZero() {
		return now
	}
	return date
}
