package reconciliation

import (
	"context"
	"encoding/json"
	"time"

	"arqueo-backend/internal/config"
	"arqueo-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store is the row store the engine reads from and writes to.
type Store interface {
	GetRecord(ctx context.Context, sellerID int64, date string) (*models.Arqueo, error)
	UpsertRecord(ctx context.Context, rec *models.Arqueo) (*models.Arqueo, error)
	ReplaceCreditLines(ctx context.Context, arqueoID uuid.UUID, lines []models.CreditLine) error
	ReplaceExpenseLines(ctx context.Context, arqueoID uuid.UUID, lines []models.ExpenseLine) error
	GetLedgerBalance(ctx context.Context, clientCode string) (decimal.Decimal, error)
	UpsertLedgerBalance(ctx context.Context, clientCode, displayName string, balance decimal.Decimal) error
	LogSubmission(ctx context.Context, entry *models.SubmissionLog) error
	ListBySeller(ctx context.Context, sellerID int64, from, to string) ([]models.Arqueo, error)
}

// DebtorInvalidator drops cached debtor listings after balances change.
type DebtorInvalidator interface {
	InvalidateDebtors(ctx context.Context) error
}

type ReconciliationService struct {
	store  Store
	cache  DebtorInvalidator
	logger *logrus.Logger
	loc    *time.Location
	now    func() time.Time
}

type Option func(*ReconciliationService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ReconciliationService) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *ReconciliationService) { s.loc = loc }
}

func WithDebtorCache(c DebtorInvalidator) Option {
	return func(s *ReconciliationService) { s.cache = c }
}

func NewReconciliationService(store Store, logger *logrus.Logger, opts ...Option) *ReconciliationService {
	s := &ReconciliationService{
		store:  store,
		logger: logger,
		loc:    time.Local,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current business date key.
func (s *ReconciliationService) Today() string {
	return s.now().In(s.loc).Format(models.DateLayout)
}

// Open loads the arqueo for (sellerID, date) and derives its state.
func (s *ReconciliationService) Open(ctx context.Context, sellerID int64, date string) (*Session, error) {
	if sellerID == 0 || date == "" {
		return nil, invalid("missing actor or date")
	}
	day, err := time.ParseInLocation(models.DateLayout, date, s.loc)
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}

	rec, err := s.store.GetRecord(ctx, sellerID, date)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		SellerID: sellerID,
		Date:     date,
		State:    DeriveState(date, s.Today(), rec != nil),
	}
	switch {
	case rec != nil:
		sess.Record = *rec
	case sess.State.Mutable():
		sess.Record = models.Arqueo{
			SellerID: sellerID,
			Date:     date,
			Weekday:  models.WeekdayName(day.Weekday()),
			ExpenseLines: []models.ExpenseLine{
				{Label: models.ExpenseFuel, Amount: decimal.Zero},
				{Label: models.ExpenseToll, Amount: decimal.Zero},
			},
		}
	default:
		sess.Record = models.Arqueo{SellerID: sellerID, Date: date}
	}
	return sess, nil
}

// History lists the seller's saved arqueos between two optional date keys,
// newest first.
func (s *ReconciliationService) History(ctx context.Context, sellerID int64, from, to string) ([]models.Arqueo, error) {
	if sellerID == 0 {
		return nil, invalid("missing actor")
	}
	for _, v := range []string{from, to} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, v); err != nil {
			return nil, invalid("date must be YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && from > to {
		return nil, invalid("from is after to")
	}
	return s.store.ListBySeller(ctx, sellerID, from, to)
}

// checkClock locks a session whose day ended after it was opened.
func (s *ReconciliationService) checkClock(sess *Session) error {
	if err := sess.ensureMutable(); err != nil {
		return err
	}
	if sess.Date != s.Today() {
		sess.State = DeriveState(sess.Date, s.Today(), sess.State == StateEditableAsUpdate)
		return ErrLockedRecord
	}
	return nil
}

// AddCreditLine appends a line for clientCode with the client's current
// balance as a frozen prior balance.
func (s *ReconciliationService) AddCreditLine(ctx context.Context, sess *Session, clientCode string) (models.CreditLine, error) {
	if err := s.checkClock(sess); err != nil {
		return models.CreditLine{}, err
	}
	code := NormalizeClientCode(clientCode)
	if code == "" {
		return models.CreditLine{}, invalid("client code required")
	}
	if indexOfClient(sess.Record.CreditLines, code) >= 0 {
		return models.CreditLine{}, ErrDuplicateClient
	}

	prior, err := s.store.GetLedgerBalance(ctx, code)
	if err != nil {
		config.LogError(s.logger, "reconciliation", "AddCreditLine", "ledger lookup, defaulting to zero", code, err)
		prior = decimal.Zero
	}

	line := models.CreditLine{
		ClientCode:     code,
		PriorBalance:   prior,
		Collected:      decimal.Zero,
		NewCreditSales: decimal.Zero,
	}
	sess.Record.CreditLines = append(sess.Record.CreditLines, line)
	return line, nil
}

// SubmissionResult is returned by a successful Submit.
type SubmissionResult struct {
	ArqueoID uuid.UUID     `json:"arqueo_id"`
	Created  bool          `json:"created"`
	Totals   Totals        `json:"totals"`
	Record   models.Arqueo `json:"record"`
}

// Submit persists the session's arqueo: upsert on (seller, date), replace
// both child collections, then write back every touched client balance.
// The calls are sequential and not transactional across each other.
func (s *ReconciliationService) Submit(ctx context.Context, sess *Session) (*SubmissionResult, error) {
	if sess == nil || sess.SellerID == 0 || sess.Date == "" {
		return nil, invalid("missing actor or date")
	}
	if err := s.checkClock(sess); err != nil {
		return nil, err
	}
	rec := sess.Record
	if !rec.GrossSales.IsPositive() {
		return nil, invalid("gross sales required")
	}
	if err := validateAmounts(rec); err != nil {
		return nil, err
	}

	credits := persistableCredits(rec.CreditLines)
	if err := checkDuplicates(credits); err != nil {
		return nil, err
	}
	expenses := persistableExpenses(rec.ExpenseLines)

	rec.SellerID = sess.SellerID
	rec.Date = sess.Date
	rec.CreditLines = credits
	rec.ExpenseLines = expenses
	if rec.Weekday == "" {
		if day, err := time.ParseInLocation(models.DateLayout, rec.Date, s.loc); err == nil {
			rec.Weekday = models.WeekdayName(day.Weekday())
		}
	}
	totals := ComputeTotals(rec)
	rec.NetSales = totals.NetSales
	rec.TotalCollected = totals.TotalCollected
	rec.TotalNewCreditSales = totals.TotalNewCreditSales
	rec.TotalExpenses = totals.TotalExpenses
	rec.ExpectedCash = totals.ExpectedCash
	rec.Variance = totals.Variance

	// 1. Upsert the arqueo row
	stored, err := s.store.UpsertRecord(ctx, &rec)
	if err != nil {
		return nil, &SubmissionError{Step: "upsert arqueo", Err: err}
	}

	// 2. Replace child collections
	if err := s.store.ReplaceCreditLines(ctx, stored.ID, credits); err != nil {
		return nil, &SubmissionError{Step: "replace credit lines", Err: err}
	}
	if err := s.store.ReplaceExpenseLines(ctx, stored.ID, expenses); err != nil {
		return nil, &SubmissionError{Step: "replace expense lines", Err: err}
	}

	// 3. Write back client balances
	for _, l := range credits {
		if l.ClientCode == "" {
			continue
		}
		if err := s.store.UpsertLedgerBalance(ctx, l.ClientCode, l.ClientCode, l.Balance()); err != nil {
			return nil, &SubmissionError{Step: "update client balance " + l.ClientCode, Err: err}
		}
	}

	created := sess.State == StateEditableToday
	s.logSubmission(ctx, stored, created, totals)
	if s.cache != nil {
		if err := s.cache.InvalidateDebtors(ctx); err != nil {
			config.LogError(s.logger, "reconciliation", "Submit", "invalidate debtor cache", nil, err)
		}
	}

	stored.CreditLines = credits
	stored.ExpenseLines = expenses
	sess.Record = *stored
	sess.State = StateEditableAsUpdate

	s.logger.WithFields(logrus.Fields{
		"seller_id": stored.SellerID,
		"date":      stored.Date,
		"arqueo_id": stored.ID.String(),
		"created":   created,
		"variance":  totals.Variance.StringFixed(2),
	}).Info("arqueo submitted")

	return &SubmissionResult{
		ArqueoID: stored.ID,
		Created:  created,
		Totals:   totals,
		Record:   *stored,
	}, nil
}

func (s *ReconciliationService) logSubmission(ctx context.Context, rec *models.Arqueo, created bool, totals Totals) {
	action := "updated"
	if created {
		action = "created"
	}
	details, _ := json.Marshal(map[string]interface{}{
		"net_sales":              totals.NetSales.StringFixed(2),
		"total_collected":        totals.TotalCollected.StringFixed(2),
		"total_new_credit_sales": totals.TotalNewCreditSales.StringFixed(2),
		"total_expenses":         totals.TotalExpenses.StringFixed(2),
		"expected_cash":          totals.ExpectedCash.StringFixed(2),
		"handed_in":              totals.HandedIn.StringFixed(2),
		"variance":               totals.Variance.StringFixed(2),
		"outcome":                totals.Outcome,
		"credit_lines":           len(rec.CreditLines),
	})
	entry := &models.SubmissionLog{
		ID:        uuid.New(),
		ArqueoID:  rec.ID,
		SellerID:  rec.SellerID,
		Date:      rec.Date,
		Action:    action,
		Details:   details,
		CreatedAt: s.now(),
	}
	if err := s.store.LogSubmission(ctx, entry); err != nil {
		config.LogError(s.logger, "reconciliation", "Submit", "write submission log", rec.ID.String(), err)
	}
}

func validateAmounts(rec models.Arqueo) error {
	for _, v := range []decimal.Decimal{rec.GrossSales, rec.Discounts, rec.CashHandedIn, rec.DigitalHandedIn} {
		if v.IsNegative() {
			return invalid("amounts cannot be negative")
		}
	}
	for _, l := range rec.CreditLines {
		if l.Collected.IsNegative() || l.NewCreditSales.IsNegative() {
			return invalid("credit amounts cannot be negative")
		}
	}
	for _, e := range rec.ExpenseLines {
		if e.Amount.IsNegative() {
			return invalid("expense amounts cannot be negative")
		}
	}
	return nil
}

// checkDuplicates rejects two non-empty lines with the same client code.
func checkDuplicates(lines []models.CreditLine) error {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		code := NormalizeClientCode(l.ClientCode)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			return ErrDuplicateClient
		}
		seen[code] = struct{}{}
	}
	return nil
}

func persistableCredits(lines []models.CreditLine) []models.CreditLine {
	out := make([]models.CreditLine, 0, len(lines))
	for _, l := range lines {
		if l.IsBlank() {
			continue
		}
		l.ClientCode = NormalizeClientCode(l.ClientCode)
		l.NewBalance = l.Balance()
		out = append(out, l)
	}
	return out
}

func persistableExpenses(lines []models.ExpenseLine) []models.ExpenseLine {
	out := make([]models.ExpenseLine, 0, len(lines))
	for _, e := range lines {
		if !e.Amount.IsPositive() {
			continue
		}
		out = append(out, e)
	}
	return out
}
