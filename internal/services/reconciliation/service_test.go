package reconciliation

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"arqueo-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var laPaz = time.FixedZone("BOT", -4*60*60)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func quietLogger() *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(io.Discard)
	return lg
}

type fakeStore struct {
	records  map[string]*models.Arqueo
	ledger   map[string]decimal.Decimal
	calls    []string
	failStep string
	ledgerEr error
	logs     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: map[string]*models.Arqueo{},
		ledger:  map[string]decimal.Decimal{},
	}
}

func key(seller int64, date string) string {
	return date + "/" + strconv.FormatInt(seller, 10)
}

func (f *fakeStore) fail(step string) error {
	f.calls = append(f.calls, step)
	if f.failStep == step {
		return errors.New("connection reset")
	}
	return nil
}

func (f *fakeStore) GetRecord(_ context.Context, seller int64, date string) (*models.Arqueo, error) {
	rec, ok := f.records[key(seller, date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) UpsertRecord(_ context.Context, rec *models.Arqueo) (*models.Arqueo, error) {
	if err := f.fail("upsert"); err != nil {
		return nil, err
	}
	k := key(rec.SellerID, rec.Date)
	stored, ok := f.records[k]
	if !ok {
		stored = &models.Arqueo{ID: uuid.New()}
		f.records[k] = stored
	}
	id := stored.ID
	*stored = *rec
	stored.ID = id
	stored.CreditLines = nil
	stored.ExpenseLines = nil
	cp := *stored
	return &cp, nil
}

func (f *fakeStore) ReplaceCreditLines(_ context.Context, id uuid.UUID, lines []models.CreditLine) error {
	if err := f.fail("credits"); err != nil {
		return err
	}
	for _, rec := range f.records {
		if rec.ID == id {
			rec.CreditLines = append([]models.CreditLine(nil), lines...)
		}
	}
	return nil
}

func (f *fakeStore) ReplaceExpenseLines(_ context.Context, id uuid.UUID, lines []models.ExpenseLine) error {
	if err := f.fail("expenses"); err != nil {
		return err
	}
	for _, rec := range f.records {
		if rec.ID == id {
			rec.ExpenseLines = append([]models.ExpenseLine(nil), lines...)
		}
	}
	return nil
}

func (f *fakeStore) GetLedgerBalance(_ context.Context, code string) (decimal.Decimal, error) {
	if f.ledgerEr != nil {
		return decimal.Zero, f.ledgerEr
	}
	return f.ledger[code], nil
}

func (f *fakeStore) UpsertLedgerBalance(_ context.Context, code, _ string, balance decimal.Decimal) error {
	if err := f.fail("ledger"); err != nil {
		return err
	}
	f.ledger[code] = balance
	return nil
}

func (f *fakeStore) LogSubmission(context.Context, *models.SubmissionLog) error {
	f.logs++
	return nil
}

func (f *fakeStore) ListBySeller(_ context.Context, seller int64, from, to string) ([]models.Arqueo, error) {
	var out []models.Arqueo
	for _, rec := range f.records {
		if rec.SellerID != seller {
			continue
		}
		if (from != "" && rec.Date < from) || (to != "" && rec.Date > to) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

type countingCache struct{ n int }

func (c *countingCache) InvalidateDebtors(context.Context) error {
	c.n++
	return nil
}

func newService(store Store, now time.Time, opts ...Option) *ReconciliationService {
	opts = append([]Option{WithLocation(laPaz), WithClock(fixedClock(now))}, opts...)
	return NewReconciliationService(store, quietLogger(), opts...)
}

var noon = time.Date(2026, 10, 15, 12, 0, 0, 0, laPaz)

func TestOpen_NewTodaySeedsFixedExpenses(t *testing.T) {
	svc := newService(newFakeStore(), noon)

	sess, err := svc.Open(context.Background(), 7, "2026-10-15")
	require.NoError(t, err)

	assert.Equal(t, StateEditableToday, sess.State)
	assert.Equal(t, "JUEVES", sess.Record.Weekday)
	require.Len(t, sess.Record.ExpenseLines, 2)
	assert.Equal(t, models.ExpenseFuel, sess.Record.ExpenseLines[0].Label)
	assert.Equal(t, models.ExpenseToll, sess.Record.ExpenseLines[1].Label)
}

func TestOpen_UsesBusinessTimezone(t *testing.T) {
	// 02:00 UTC on the 16th is still the 15th in La Paz.
	svc := newService(newFakeStore(), time.Date(2026, 10, 16, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-10-15", svc.Today())
}

func TestOpen_Validation(t *testing.T) {
	svc := newService(newFakeStore(), noon)

	_, err := svc.Open(context.Background(), 0, "2026-10-15")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Open(context.Background(), 7, "15/10/2026")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOpen_EmptyPastIsLocked(t *testing.T) {
	svc := newService(newFakeStore(), noon)

	sess, err := svc.Open(context.Background(), 7, "2026-10-10")
	require.NoError(t, err)
	assert.Equal(t, StateEmptyPast, sess.State)
	assert.Empty(t, sess.Record.ExpenseLines)
	assert.True(t, sess.Record.GrossSales.IsZero())

	_, err = svc.AddCreditLine(context.Background(), sess, "1001")
	assert.ErrorIs(t, err, ErrLockedRecord)
	_, err = svc.Submit(context.Background(), sess)
	assert.ErrorIs(t, err, ErrLockedRecord)
}

func TestAddCreditLine(t *testing.T) {
	store := newFakeStore()
	store.ledger["1001"] = d("200")
	svc := newService(store, noon)
	ctx := context.Background()

	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)

	line, err := svc.AddCreditLine(ctx, sess, " 1001 ")
	require.NoError(t, err)
	assert.Equal(t, "1001", line.ClientCode)
	assert.True(t, line.PriorBalance.Equal(d("200")))
	assert.True(t, line.Collected.IsZero())

	_, err = svc.AddCreditLine(ctx, sess, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	unknown, err := svc.AddCreditLine(ctx, sess, "new-client")
	require.NoError(t, err)
	assert.Equal(t, "NEW-CLIENT", unknown.ClientCode)
	assert.True(t, unknown.PriorBalance.IsZero())
}

func TestAddCreditLine_DuplicateLeavesListUnchanged(t *testing.T) {
	svc := newService(newFakeStore(), noon)
	ctx := context.Background()
	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)

	_, err = svc.AddCreditLine(ctx, sess, "abc")
	require.NoError(t, err)
	before := append([]models.CreditLine(nil), sess.Record.CreditLines...)

	_, err = svc.AddCreditLine(ctx, sess, "ABC")
	assert.ErrorIs(t, err, ErrDuplicateClient)
	assert.Equal(t, before, sess.Record.CreditLines)
}

func TestAddCreditLine_LedgerFailureDefaultsToZero(t *testing.T) {
	store := newFakeStore()
	store.ledgerEr = errors.New("timeout")
	svc := newService(store, noon)
	ctx := context.Background()
	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)

	line, err := svc.AddCreditLine(ctx, sess, "1001")
	require.NoError(t, err)
	assert.True(t, line.PriorBalance.IsZero())
}

func TestSubmit_ZeroGrossSalesMakesNoCalls(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, noon)
	ctx := context.Background()
	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, sess)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, store.calls)
	assert.Zero(t, store.logs)
}

func TestSubmit_MissingActor(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, noon)

	_, err := svc.Submit(context.Background(), &Session{Date: "2026-10-15", State: StateEditableToday})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, store.calls)
}

func TestSubmit_PersistsInOrder(t *testing.T) {
	store := newFakeStore()
	store.ledger["1001"] = d("200")
	cache := &countingCache{}
	svc := newService(store, noon, WithDebtorCache(cache))
	ctx := context.Background()

	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	_, err = svc.AddCreditLine(ctx, sess, "1001")
	require.NoError(t, err)
	sess.Record.CreditLines = append(sess.Record.CreditLines, models.CreditLine{})
	require.NoError(t, sess.SetFigures(Figures{
		GrossSales:      d("1000"),
		Discounts:       d("50"),
		CashHandedIn:    d("770"),
		DigitalHandedIn: d("100"),
	}))
	require.NoError(t, sess.UpdateCreditLine("1001", d("150"), decimal.Zero))
	require.NoError(t, sess.SetExpense(models.ExpenseFuel, d("30")))

	res, err := svc.Submit(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, []string{"upsert", "credits", "expenses", "ledger"}, store.calls)
	assert.True(t, res.Created)
	assert.True(t, res.Totals.Variance.Equal(d("-200")))
	assert.Equal(t, Shortage, res.Totals.Outcome)
	assert.True(t, store.ledger["1001"].Equal(d("50")))
	assert.Equal(t, 1, store.logs)
	assert.Equal(t, 1, cache.n)

	stored := store.records[key(7, "2026-10-15")]
	require.Len(t, stored.CreditLines, 1, "blank line is not persisted")
	assert.True(t, stored.CreditLines[0].NewBalance.Equal(d("50")))
	require.Len(t, stored.ExpenseLines, 1, "zero expenses are not persisted")
	assert.True(t, stored.Variance.Equal(d("-200")))

	assert.Equal(t, StateEditableAsUpdate, sess.State)
	assert.Equal(t, "Actualizar Arqueo", sess.State.SubmitLabel())
}

func TestSubmit_ResubmitUpdates(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, noon)
	ctx := context.Background()

	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	require.NoError(t, sess.SetFigures(Figures{GrossSales: d("100"), CashHandedIn: d("100")}))
	first, err := svc.Submit(ctx, sess)
	require.NoError(t, err)

	sess, err = svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, StateEditableAsUpdate, sess.State)
	require.NoError(t, sess.SetFigures(Figures{GrossSales: d("300"), CashHandedIn: d("280")}))
	second, err := svc.Submit(ctx, sess)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.ArqueoID, second.ArqueoID)
	assert.Len(t, store.records, 1)
	assert.True(t, store.records[key(7, "2026-10-15")].GrossSales.Equal(d("300")))
}

func TestSubmit_StepFailure(t *testing.T) {
	for _, step := range []string{"upsert", "credits", "expenses", "ledger"} {
		t.Run(step, func(t *testing.T) {
			store := newFakeStore()
			store.failStep = step
			svc := newService(store, noon)
			ctx := context.Background()

			sess, err := svc.Open(ctx, 7, "2026-10-15")
			require.NoError(t, err)
			require.NoError(t, sess.SetFigures(Figures{GrossSales: d("100")}))
			_, err = svc.AddCreditLine(ctx, sess, "1001")
			require.NoError(t, err)
			require.NoError(t, sess.UpdateCreditLine("1001", decimal.Zero, d("20")))

			_, err = svc.Submit(ctx, sess)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSubmissionFailed)

			var subErr *SubmissionError
			require.True(t, errors.As(err, &subErr))
			assert.NotEmpty(t, subErr.Step)
			assert.Zero(t, store.logs)
			assert.Equal(t, StateEditableToday, sess.State)
		})
	}
}

func TestSubmit_DayRolledOver(t *testing.T) {
	store := newFakeStore()
	now := noon
	svc := NewReconciliationService(store, quietLogger(),
		WithLocation(laPaz),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	require.NoError(t, sess.SetFigures(Figures{GrossSales: d("100")}))

	now = noon.Add(13 * time.Hour)
	_, err = svc.Submit(ctx, sess)
	assert.ErrorIs(t, err, ErrLockedRecord)
	assert.Equal(t, StateEmptyPast, sess.State)
	assert.Empty(t, store.calls)
}

func TestSubmit_RejectsNegativeAmounts(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, noon)
	ctx := context.Background()

	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	sess.Record.GrossSales = d("100")
	sess.Record.CreditLines = []models.CreditLine{{ClientCode: "A", Collected: d("-5")}}

	_, err = svc.Submit(ctx, sess)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, store.calls)
}

func TestHistory(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, noon)
	ctx := context.Background()

	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	require.NoError(t, sess.SetFigures(Figures{GrossSales: d("100")}))
	_, err = svc.Submit(ctx, sess)
	require.NoError(t, err)

	recs, err := svc.History(ctx, 7, "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = svc.History(ctx, 7, "2026-10-31", "2026-10-01")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.History(ctx, 7, "oct", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.History(ctx, 0, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmit_PriorBalanceStaysFrozen(t *testing.T) {
	store := newFakeStore()
	store.ledger["1001"] = d("200")
	svc := newService(store, noon)
	ctx := context.Background()

	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	_, err = svc.AddCreditLine(ctx, sess, "1001")
	require.NoError(t, err)

	// another session moves the ledger after the line was added
	store.ledger["1001"] = d("500")

	require.NoError(t, sess.SetFigures(Figures{GrossSales: d("100")}))
	require.NoError(t, sess.UpdateCreditLine("1001", d("150"), d("20")))
	res, err := svc.Submit(ctx, sess)
	require.NoError(t, err)

	require.Len(t, res.Record.CreditLines, 1)
	assert.True(t, res.Record.CreditLines[0].PriorBalance.Equal(d("200")))
	assert.True(t, res.Totals.TotalPriorBalance.Equal(d("200")))
	assert.True(t, store.ledger["1001"].Equal(d("70")))
}

func TestApplyForm_IgnoresPostedPriorBalance(t *testing.T) {
	store := newFakeStore()
	store.ledger["1001"] = d("200")
	store.ledger["2002"] = d("100")
	svc := newService(store, noon)
	ctx := context.Background()

	form := Form{
		GrossSales:  "500",
		CreditLines: []CreditLineForm{{ClientCode: "1001", PriorBalance: "200", Collected: "150"}},
	}
	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	require.NoError(t, svc.ApplyForm(ctx, sess, form))
	_, err = svc.Submit(ctx, sess)
	require.NoError(t, err)
	require.True(t, store.ledger["1001"].Equal(d("50")))

	// resubmit with an edited snapshot and a client that was never added
	form.CreditLines[0].PriorBalance = "9.999,00"
	form.CreditLines = append(form.CreditLines, CreditLineForm{ClientCode: "2002", PriorBalance: "0", Collected: "80"})
	sess, err = svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	require.NoError(t, svc.ApplyForm(ctx, sess, form))
	res, err := svc.Submit(ctx, sess)
	require.NoError(t, err)

	require.Len(t, res.Record.CreditLines, 2)
	assert.True(t, res.Record.CreditLines[0].PriorBalance.Equal(d("200")))
	assert.True(t, res.Record.CreditLines[1].PriorBalance.Equal(d("100")))
	assert.True(t, store.ledger["1001"].Equal(d("50")))
	assert.True(t, store.ledger["2002"].Equal(d("20")))
}

func TestApplyForm_DropsLinesMissingFromForm(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, noon)
	ctx := context.Background()

	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)
	require.NoError(t, svc.ApplyForm(ctx, sess, Form{
		GrossSales: "100",
		CreditLines: []CreditLineForm{
			{ClientCode: "A", Collected: "1"},
			{ClientCode: "B", Collected: "2"},
		},
		Expenses: []ExpenseForm{
			{Label: models.ExpenseFuel, Amount: "30"},
			{Label: models.ExpenseToll, Amount: ""},
			{Label: "Almuerzo", Amount: "15"},
		},
	}))
	require.Len(t, sess.Record.CreditLines, 2)
	require.Len(t, sess.Record.ExpenseLines, 3)

	require.NoError(t, svc.ApplyForm(ctx, sess, Form{
		GrossSales:  "100",
		CreditLines: []CreditLineForm{{ClientCode: "b", Collected: "5"}},
	}))
	require.Len(t, sess.Record.CreditLines, 1)
	assert.Equal(t, "B", sess.Record.CreditLines[0].ClientCode)
	assert.True(t, sess.Record.CreditLines[0].Collected.Equal(d("5")))
	assert.Empty(t, sess.Record.ExpenseLines)
}

func TestApplyForm_RejectsNegativePrior(t *testing.T) {
	svc := newService(newFakeStore(), noon)
	ctx := context.Background()
	sess, err := svc.Open(ctx, 7, "2026-10-15")
	require.NoError(t, err)

	err = svc.ApplyForm(ctx, sess, Form{
		GrossSales:  "100",
		CreditLines: []CreditLineForm{{ClientCode: "A", PriorBalance: "-5"}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, sess.Record.GrossSales.IsZero())
}
