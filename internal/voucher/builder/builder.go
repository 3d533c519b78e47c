package builder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/internal/directory"
	numberingdomain "github.com/smallbiznis/ledgerly/internal/numbering/domain"
	taxdomain "github.com/smallbiznis/ledgerly/internal/tax/domain"
	"github.com/smallbiznis/ledgerly/internal/voucher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

type Params struct {
	fx.In

	Log        *zap.Logger
	Directory  directory.Directory
	Calculator taxdomain.Calculator
	Numbering  numberingdomain.Service
	Validator  domain.Validator
}

type Builder struct {
	log        *zap.Logger
	directory  directory.Directory
	calculator taxdomain.Calculator
	numbering  numberingdomain.Service
	validator  domain.Validator
}

func New(p Params) domain.Builder {
	return &Builder{
		log:        p.Log.Named("voucher.builder"),
		directory:  p.Directory,
		calculator: p.Calculator,
		numbering:  p.Numbering,
		validator:  p.Validator,
	}
}

// build carries the partially constructed voucher and the violations found so far.
type build struct {
	req     domain.BuildRequest
	voucher domain.Voucher
	errs    domain.ValidationErrors
	ledgers directory.Index[directory.LedgerRef]
}

// Build resolves references, prices lines, posts entries and pre-validates.
// Numbering runs last so a rejected draft never consumes a number.
func (b *Builder) Build(ctx context.Context, req domain.BuildRequest) (domain.Voucher, error) {
	st := &build{req: req}
	draft := req.Draft

	voucherType, ok := domain.ParseVoucherType(draft.VoucherType)
	if !ok {
		st.errs.Add("voucher_type", domain.CodeInvalidVoucherType, "voucher_type must be payment, receipt, sales or purchase")
		return st.voucher, st.errs
	}
	if req.Existing != nil && req.Existing.VoucherType != voucherType {
		st.errs.Add("voucher_type", domain.CodeImmutableType, fmt.Sprintf("voucher is a %s and cannot change type", req.Existing.VoucherType))
		return st.voucher, st.errs
	}

	st.voucher = domain.Voucher{
		CompanyID:     req.CompanyID,
		VoucherType:   voucherType,
		VoucherNumber: strings.TrimSpace(draft.VoucherNumber),
		Narration:     strings.TrimSpace(draft.Narration),
		GSTEnabled:    voucherType.IsGoods() && req.Settings.EnableGST,
		State:         domain.StateDraft,
		Metadata:      draft.Metadata,
	}
	st.voucher.Date = st.parseDate("date", draft.Date)

	ledgers, err := b.directory.Ledgers(ctx, req.CompanyID, directory.LedgerFilter{})
	if err != nil {
		return st.voucher, err
	}
	st.ledgers = directory.NewLedgerIndex(ledgers)

	party := st.resolveLedger("party_name", draft.PartyNameID, draft.PartyName)
	st.voucher.PartyName = party.Name
	st.voucher.PartyNameID = party.ID

	var counter directory.LedgerRef
	switch st.voucher.Shape() {
	case domain.ShapeFinancial:
		counter = b.buildFinancial(st)
	case domain.ShapeGoods:
		counter, err = b.buildGoods(ctx, st)
		if err != nil {
			return st.voucher, err
		}
	}

	if err := st.post(party, counter); err != nil {
		return st.voucher, err
	}

	b.logResolutions(st)

	mode := domain.ModeNumberPending
	if st.voucher.VoucherNumber != "" || req.Existing != nil {
		mode = domain.ModeFinal
	}
	if req.Existing != nil && st.voucher.VoucherNumber == "" {
		st.voucher.VoucherNumber = req.Existing.VoucherNumber
	}
	st.errs.Merge(b.validator.Validate(st.voucher, mode))
	if len(st.errs) > 0 {
		return st.voucher, st.errs
	}

	if err := b.assignNumber(ctx, st); err != nil {
		return st.voucher, err
	}
	st.voucher.State = domain.StateValidated
	return st.voucher, nil
}

// Reissue draws a fresh number for a voucher whose auto-issued number collided.
func (b *Builder) Reissue(ctx context.Context, v *domain.Voucher) error {
	number, err := b.numbering.Next(ctx, v.CompanyID, string(v.VoucherType), v.Date)
	if err != nil {
		return err
	}
	b.log.Info("voucher number reissued",
		zap.String("company_id", v.CompanyID.String()),
		zap.String("voucher_type", string(v.VoucherType)),
		zap.String("previous_number", v.VoucherNumber),
		zap.String("voucher_number", number.Value),
	)
	v.VoucherNumber = number.Value
	v.VoucherTypeID = number.VoucherTypeID
	v.AutoNumbered = true
	return nil
}

func (b *Builder) buildFinancial(st *build) directory.LedgerRef {
	entry := st.req.Draft.SingleEntry
	if entry == nil {
		entry = &domain.SingleEntryDraft{}
	}
	counter := st.resolveLedger("single_entry.customer", entry.CustomerID, entry.Customer)
	amount := st.parseNumber("single_entry.amount", entry.Amount)

	totals := b.calculator.FinancialTotals(amount)
	st.applyTotals(totals)
	st.voucher.Items = []domain.InventoryLine{}
	return counter
}

func (b *Builder) buildGoods(ctx context.Context, st *build) (directory.LedgerRef, error) {
	draft := st.req.Draft
	settings := st.req.Settings

	products, err := b.directory.Products(ctx, st.req.CompanyID)
	if err != nil {
		return directory.LedgerRef{}, err
	}
	index := directory.NewProductIndex(products)

	lines := make([]taxdomain.Line, 0, len(draft.Items))
	refs := make([]directory.ProductRef, 0, len(draft.Items))
	hsn := make([]string, 0, len(draft.Items))
	for i, item := range draft.Items {
		field := fmt.Sprintf("items[%d]", i)
		ref := st.resolveProduct(index, field+".item_name", item.ItemID, item.ItemName)
		line := taxdomain.Line{
			Quantity: st.parseNumber(field+".quantity", item.Quantity),
			Rate:     st.parseNumber(field+".rate", item.Rate),
		}
		code := strings.TrimSpace(item.HSNCode)
		if st.voucher.GSTEnabled {
			line.GSTRate = gstRateFor(st, field, item, ref, settings)
			if code == "" {
				code = ref.HSNCode
			}
		}
		lines = append(lines, line)
		refs = append(refs, ref)
		hsn = append(hsn, code)
	}

	adj := taxdomain.Adjustments{
		Discount:         st.parseNumber("discount", draft.Discount),
		AdditionalCharge: st.parseNumber("additional_charge", draft.AdditionalCharge),
	}
	totals := b.calculator.GoodsTotals(lines, st.voucher.GSTEnabled, adj)
	st.applyTotals(totals)

	st.voucher.Items = make([]domain.InventoryLine, 0, len(lines))
	for i, line := range lines {
		item := domain.InventoryLine{
			ItemID:     refs[i].ID,
			ItemName:   refs[i].Name,
			Quantity:   line.Quantity,
			Rate:       line.Rate,
			Amount:     totals.Lines[i].Amount,
			GSTRate:    decimal.Zero,
			GSTAmount:  decimal.Zero,
			OrderIndex: i,
		}
		if item.ItemName == "" {
			item.ItemName = strings.TrimSpace(draft.Items[i].ItemName)
		}
		if st.voucher.GSTEnabled {
			item.GSTRate = line.GSTRate
			item.GSTAmount = totals.Lines[i].GSTAmount
			item.HSNCode = hsn[i]
		}
		st.voucher.Items = append(st.voucher.Items, item)
	}

	st.voucher.Goods = st.goodsHeader()

	controlName := strings.TrimSpace(draft.ControlLedger)
	if controlName == "" && strings.TrimSpace(draft.ControlLedgerID) == "" {
		controlName = settings.SalesLedger
		if st.voucher.VoucherType == domain.VoucherTypePurchase {
			controlName = settings.PurchaseLedger
		}
	}
	return st.resolveLedger("control_ledger", draft.ControlLedgerID, controlName), nil
}

// gstRateFor prefers the line's rate, then the product master, then the company default.
func gstRateFor(st *build, field string, item domain.ItemDraft, ref directory.ProductRef, settings companydomain.Settings) decimal.Decimal {
	if !item.GSTRate.IsBlank() {
		return st.parseNumber(field+".gst_rate", item.GSTRate)
	}
	if ref.GSTRate.Valid {
		return ref.GSTRate.Decimal
	}
	return settings.TaxRules.DefaultGSTRate
}

func (b *Builder) assignNumber(ctx context.Context, st *build) error {
	v := &st.voucher
	if existing := st.req.Existing; existing != nil {
		v.ID = existing.ID
		v.VoucherTypeID = existing.VoucherTypeID
		v.Revision = existing.Revision
		v.CreatedAt = existing.CreatedAt
		return nil
	}

	switch {
	case v.VoucherNumber == "" && st.req.IssueNumber:
		number, err := b.numbering.Next(ctx, v.CompanyID, string(v.VoucherType), v.Date)
		if err != nil {
			return err
		}
		v.VoucherNumber = number.Value
		v.VoucherTypeID = number.VoucherTypeID
		v.AutoNumbered = true
	case v.VoucherNumber != "":
		// Caller-supplied numbers still belong to the series.
		number, err := b.numbering.Peek(ctx, v.CompanyID, string(v.VoucherType), v.Date)
		if err != nil {
			return err
		}
		v.VoucherTypeID = number.VoucherTypeID
	}
	return nil
}

func (b *Builder) logResolutions(st *build) {
	for _, fe := range st.errs.Resolutions() {
		b.log.Warn("resolution_failure",
			zap.String("company_id", st.req.CompanyID.String()),
			zap.String("voucher_type", string(st.voucher.VoucherType)),
			zap.String("field", fe.Field),
			zap.String("code", fe.Code),
			zap.String("reason", fe.Message),
		)
	}
}

func (st *build) applyTotals(totals taxdomain.Totals) {
	st.voucher.Total = totals.Subtotal
	st.voucher.TotalTax = totals.GSTTotal
	st.voucher.Discount = totals.Discount
	st.voucher.AdditionalCharge = totals.AdditionalCharge
	st.voucher.GrandTotal = totals.GrandTotal
}

// post writes the two summarizing entries using the sign table.
func (st *build) post(party, counter directory.LedgerRef) error {
	legs := map[domain.LegRole]directory.LedgerRef{
		domain.LegParty:   party,
		domain.LegCounter: counter,
	}
	entries := make([]domain.AccountingEntry, 0, len(legs))
	for i, role := range domain.LegRoles() {
		sign, err := domain.Sign(st.voucher.VoucherType, role)
		if err != nil {
			return err
		}
		ledger := legs[role]
		entries = append(entries, domain.AccountingEntry{
			LedgerID:   ledger.ID,
			LedgerName: ledger.Name,
			Amount:     st.voucher.GrandTotal.Mul(decimal.NewFromInt(sign)),
			OrderIndex: i,
			Role:       role,
		})
	}
	st.voucher.AccountingEntries = entries
	return nil
}

func (st *build) goodsHeader() *domain.GoodsHeader {
	draft := st.req.Draft
	header := &domain.GoodsHeader{
		ReferenceNumber: strings.TrimSpace(draft.ReferenceNumber),
		PlaceOfSupply:   strings.TrimSpace(draft.PlaceOfSupply),
		ModeOfTransport: strings.TrimSpace(draft.ModeOfTransport),
		VehicleNumber:   strings.TrimSpace(draft.VehicleNumber),
		PaymentStatus:   domain.PaymentStatusUnpaid,
	}
	if header.PlaceOfSupply == "" {
		header.PlaceOfSupply = st.req.Settings.PlaceOfSupply
	}
	if status, ok := domain.ParsePaymentStatus(draft.PaymentStatus); ok {
		header.PaymentStatus = status
	} else {
		st.errs.Add("payment_status", domain.CodePaymentStatus, "payment_status must be unpaid, partial or paid")
	}
	if strings.TrimSpace(draft.ReferenceDate) != "" {
		if d := st.parseDate("reference_date", draft.ReferenceDate); !d.IsZero() {
			header.ReferenceDate = &d
		}
	}
	if strings.TrimSpace(draft.DueDate) != "" {
		if d := st.parseDate("due_date", draft.DueDate); !d.IsZero() {
			header.DueDate = &d
		}
	}
	return header
}

func (st *build) resolveLedger(field, rawID, name string) directory.LedgerRef {
	id, ok := st.parseID(field, rawID)
	if !ok {
		return directory.LedgerRef{}
	}
	if id == 0 && strings.TrimSpace(name) == "" {
		return directory.LedgerRef{}
	}
	ref, found := st.ledgers.Resolve(id, name)
	if !found {
		st.errs = append(st.errs, domain.ResolutionError{Field: field, Kind: "ledger", Name: strings.TrimSpace(name), ID: id}.FieldError())
		return directory.LedgerRef{}
	}
	return ref
}

func (st *build) resolveProduct(index directory.Index[directory.ProductRef], field, rawID, name string) directory.ProductRef {
	id, ok := st.parseID(field, rawID)
	if !ok {
		return directory.ProductRef{}
	}
	if id == 0 && strings.TrimSpace(name) == "" {
		return directory.ProductRef{}
	}
	ref, found := index.Resolve(id, name)
	if !found {
		st.errs = append(st.errs, domain.ResolutionError{Field: field, Kind: "item", Name: strings.TrimSpace(name), ID: id}.FieldError())
		return directory.ProductRef{}
	}
	return ref
}

func (st *build) parseID(field, raw string) (snowflake.ID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		st.errs.Add(field, domain.CodeInvalidFormat, fmt.Sprintf("%q is not a valid id", raw))
		return 0, false
	}
	return id, true
}

func (st *build) parseNumber(field string, n domain.Number) decimal.Decimal {
	value, err := n.Decimal()
	if err != nil {
		st.errs.Add(field, domain.CodeInvalidFormat, fmt.Sprintf("%q is not a number", string(n)))
		return decimal.Zero
	}
	return value
}

func (st *build) parseDate(field, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	st.errs.Add(field, domain.CodeInvalidFormat, fmt.Sprintf("%q is not a date (YYYY-MM-DD)", raw))
	return time.Time{}
}
