package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"RentalLedger/internal/clock"
	"RentalLedger/internal/models"
	"RentalLedger/internal/reports"
	"RentalLedger/internal/store"
)

var t0 = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type failingDocs struct {
	store.Documents
	failPut bool
}

func (f *failingDocs) Put(ctx context.Context, key string, payload []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.Documents.Put(ctx, key, payload)
}

func newLedger(t *testing.T, docs store.Documents, now *time.Time, autoComplete bool) *Ledger {
	t.Helper()
	l := NewLedger(docs, Options{
		Clock:               clock.Func(func() time.Time { return *now }),
		AutoCompleteExpired: autoComplete,
	})
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return l
}

func ptr(t time.Time) *time.Time { return &t }

func input(product string, start time.Time, end *time.Time) OrderInput {
	return OrderInput{
		ProductName: product,
		UserName:    "Asha",
		Location:    "Pune",
		Phone1:      "9800000000",
		StartDate:   start,
		EndDate:     end,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	now := t0
	l := newLedger(t, store.NewMemory(), &now, false)
	products := l.Products()
	if len(products) != 3 || products[0] != (models.Product{Name: "Car", Rate: 2000}) {
		t.Fatalf("default products = %+v", products)
	}
	s := l.Settings()
	if s.Theme != models.ThemeLight || s.Currency.Code != "INR" || s.Currency.Symbol != "₹" {
		t.Fatalf("default settings = %+v", s)
	}
	if len(l.Orders()) != 0 {
		t.Fatal("expected no orders")
	}
}

func TestLoad_AutoCompletesExpired(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	now := t0
	l := newLedger(t, docs, &now, false)
	ctx := context.Background()

	past, err := l.CreateOrder(ctx, input("Car", t0.Add(-48*time.Hour), ptr(t0.Add(-time.Hour))))
	if err != nil {
		t.Fatal(err)
	}
	future, _ := l.CreateOrder(ctx, input("Car", t0, ptr(t0.Add(time.Hour))))
	open, _ := l.CreateOrder(ctx, input("Car", t0.Add(-72*time.Hour), nil))

	manual := newLedger(t, docs, &now, false)
	o, _ := manual.Order(past.ID)
	if o.Status != models.OrderActive {
		t.Fatal("auto-complete disabled should leave expired orders active")
	}
	if !Classify(o, now).Expired {
		t.Fatal("expired order should classify as expired")
	}

	auto := newLedger(t, docs, &now, true)
	statuses := map[string]models.OrderStatus{}
	for _, o := range auto.Orders() {
		statuses[o.ID] = o.Status
	}
	if statuses[past.ID] != models.OrderCompleted {
		t.Fatal("expired order should be completed on load")
	}
	if statuses[future.ID] != models.OrderActive || statuses[open.ID] != models.OrderActive {
		t.Fatalf("unexpected statuses %v", statuses)
	}

	reloaded := newLedger(t, docs, &now, false)
	if o, _ := reloaded.Order(past.ID); o.Status != models.OrderCompleted {
		t.Fatal("auto-completion should be persisted")
	}
}

func TestOrderLifecycle(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	now := t0
	l := newLedger(t, docs, &now, false)
	ctx := context.Background()

	in := input("Car", t0, ptr(t0.Add(12*time.Hour)))
	in.ProofName = "aadhaar"
	in.ProofData = "data:image/png;base64,AAAA"
	created, err := l.CreateOrder(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Status != models.OrderActive || !created.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected order %+v", created)
	}

	first, err := l.CompleteOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	second, err := l.CompleteOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if second.Status != models.OrderCompleted || len(l.Orders()) != 1 {
		t.Fatal("complete should be idempotent")
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("second complete changed the order:\n%s\n%s", a, b)
	}

	restored, err := l.RestoreOrder(ctx, created.ID)
	if err != nil || restored.Status != models.OrderActive {
		t.Fatalf("restore: %+v %v", restored, err)
	}

	edit := input("Bike", t0, ptr(t0.Add(24*time.Hour)))
	edit.ProofName = "passport"
	edited, err := l.EditOrder(ctx, created.ID, edit)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.ProductName != "Bike" || edited.ProofName != "passport" {
		t.Fatalf("edit did not apply: %+v", edited)
	}
	if edited.ProofData != in.ProofData {
		t.Fatal("edit without a new attachment should keep the old one")
	}
	if edited.ID != created.ID || !edited.CreatedAt.Equal(created.CreatedAt) || edited.Status != models.OrderActive {
		t.Fatalf("edit changed identity fields: %+v", edited)
	}

	edit.Status = models.OrderCompleted
	edit.ProofData = "data:image/png;base64,BBBB"
	edited, _ = l.EditOrder(ctx, created.ID, edit)
	if edited.Status != models.OrderCompleted || edited.ProofData != edit.ProofData {
		t.Fatalf("explicit status and attachment should apply: %+v", edited)
	}

	if err := l.DeleteOrder(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := l.DeleteOrder(ctx, created.ID); err != nil {
		t.Fatalf("deleting a missing order should be a no-op, got %v", err)
	}
	if len(l.Orders()) != 0 {
		t.Fatal("order should be gone")
	}

	reloaded := newLedger(t, docs, &now, false)
	if len(reloaded.Orders()) != 0 {
		t.Fatal("deletion should be persisted")
	}
}

func TestOrderOperations_NotFoundAndInvalid(t *testing.T) {
	t.Parallel()

	now := t0
	l := newLedger(t, store.NewMemory(), &now, false)
	ctx := context.Background()

	if _, err := l.CompleteOrder(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("complete missing: %v", err)
	}
	if _, err := l.RestoreOrder(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("restore missing: %v", err)
	}
	if _, err := l.EditOrder(ctx, "missing", input("Car", t0, nil)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("edit missing: %v", err)
	}
	if _, err := l.QuickEditPrice(ctx, "missing", "10"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("price missing: %v", err)
	}

	bad := input("Car", t0, nil)
	bad.Phone1 = " "
	if _, err := l.CreateOrder(ctx, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing phone: %v", err)
	}
	bad = input("Car", time.Time{}, nil)
	if _, err := l.CreateOrder(ctx, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing start: %v", err)
	}
}

func TestQuickEditPrice(t *testing.T) {
	t.Parallel()

	now := t0
	l := newLedger(t, store.NewMemory(), &now, false)
	ctx := context.Background()
	o, _ := l.CreateOrder(ctx, input("Car", t0, ptr(t0.Add(13*time.Hour))))

	updated, err := l.QuickEditPrice(ctx, o.ID, "1500.50")
	if err != nil || updated.ManualCost != "1500.5" {
		t.Fatalf("price = %q, %v", updated.ManualCost, err)
	}
	view, _ := l.Quote(o.ID)
	if view.Quote.Amount != 1500.5 || !view.Quote.Manual {
		t.Fatalf("quote = %+v", view.Quote)
	}

	if _, err := l.QuickEditPrice(ctx, o.ID, "free"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if cur, _ := l.Order(o.ID); cur.ManualCost != "1500.5" {
		t.Fatal("invalid input should leave the override untouched")
	}

	cleared, err := l.QuickEditPrice(ctx, o.ID, "  ")
	if err != nil || cleared.ManualCost != "" {
		t.Fatalf("clear: %q %v", cleared.ManualCost, err)
	}
	if view, _ := l.Quote(o.ID); view.Quote.Amount != 4000 {
		t.Fatalf("computed cost after clear = %v", view.Quote.Amount)
	}
}

func TestFailedWriteLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	docs := &failingDocs{Documents: store.NewMemory()}
	now := t0
	l := newLedger(t, docs, &now, false)
	ctx := context.Background()
	o, err := l.CreateOrder(ctx, input("Car", t0, ptr(t0.Add(time.Hour))))
	if err != nil {
		t.Fatal(err)
	}

	docs.failPut = true
	if _, err := l.CompleteOrder(ctx, o.ID); err == nil {
		t.Fatal("expected write failure")
	}
	if cur, _ := l.Order(o.ID); cur.Status != models.OrderActive {
		t.Fatal("in-memory state changed despite failed write")
	}
	if _, err := l.AddProduct(ctx, "Drone", "900"); err == nil {
		t.Fatal("expected write failure")
	}
	if len(l.Products()) != 3 {
		t.Fatal("product list changed despite failed write")
	}
}

func TestProducts(t *testing.T) {
	t.Parallel()

	now := t0
	docs := store.NewMemory()
	l := newLedger(t, docs, &now, false)
	ctx := context.Background()

	if _, err := l.AddProduct(ctx, "Drone", "1200"); err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, rate := range []string{"0", "", "abc", "-5"} {
		if _, err := l.AddProduct(ctx, "Tent", rate); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("rate %q: expected ErrInvalidInput, got %v", rate, err)
		}
	}
	if _, err := l.AddProduct(ctx, "Car", "100"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, err := l.UpdateProductRate(ctx, "Drone", "1500"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := l.UpdateProductRate(ctx, "Boat", "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	o, _ := l.CreateOrder(ctx, input("Drone", t0, ptr(t0.Add(12*time.Hour))))
	if err := l.DeleteProduct(ctx, "Drone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := l.DeleteProduct(ctx, "Drone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
	view, err := l.Quote(o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.Quote.RateResolved || view.Quote.Amount != 0 {
		t.Fatalf("orphaned order should use zero rate: %+v", view.Quote)
	}

	reloaded := newLedger(t, docs, &now, false)
	if len(reloaded.Products()) != 3 {
		t.Fatalf("products after reload = %+v", reloaded.Products())
	}
}

func TestExpensesAndSettings(t *testing.T) {
	t.Parallel()

	now := t0
	docs := store.NewMemory()
	l := newLedger(t, docs, &now, false)
	ctx := context.Background()

	e, err := l.AddExpense(ctx, ExpenseInput{Purpose: "fuel", Amount: "300"})
	if err != nil || !e.Date.Equal(t0) {
		t.Fatalf("add expense: %+v %v", e, err)
	}
	if _, err := l.AddExpense(ctx, ExpenseInput{Purpose: "fuel", Amount: "lots"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := l.UpdateExpense(ctx, 0, ExpenseInput{Purpose: "diesel", Amount: "350"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := l.UpdateExpense(ctx, 4, ExpenseInput{Amount: "1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
	if got := l.ExpenseSummary(reports.AllMonths); got.Total != 350 {
		t.Fatalf("expense total = %v", got.Total)
	}
	if err := l.DeleteExpense(ctx, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := l.DeleteExpense(ctx, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}

	if err := l.SetTheme(ctx, "dark"); err != nil {
		t.Fatal(err)
	}
	if err := l.SetTheme(ctx, "blue"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad theme: %v", err)
	}
	if c, err := l.SetCurrency(ctx, "usd"); err != nil || c.Symbol != "$" {
		t.Fatalf("currency: %+v %v", c, err)
	}
	if _, err := l.SetCurrency(ctx, "XYZ"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad currency: %v", err)
	}

	s := newLedger(t, docs, &now, false).Settings()
	if s.Theme != models.ThemeDark || s.Currency.Code != "USD" {
		t.Fatalf("settings not persisted: %+v", s)
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	now := t0
	l := newLedger(t, store.NewMemory(), &now, false)
	ctx := context.Background()

	later, _ := l.CreateOrder(ctx, input("Car", t0, ptr(t0.Add(72*time.Hour))))
	soon, _ := l.CreateOrder(ctx, input("Bike", t0, ptr(t0.Add(12*time.Hour))))
	open, _ := l.CreateOrder(ctx, input("Camera", t0, nil))
	done, _ := l.CreateOrder(ctx, input("Car", t0.Add(-48*time.Hour), ptr(t0.Add(-24*time.Hour))))
	if _, err := l.CompleteOrder(ctx, done.ID); err != nil {
		t.Fatal(err)
	}

	d := l.Dashboard(now)
	if len(d.Orders) != 3 {
		t.Fatalf("expected 3 active orders, got %d", len(d.Orders))
	}
	want := []string{soon.ID, later.ID, open.ID}
	for i, id := range want {
		if d.Orders[i].Order.ID != id {
			t.Fatalf("position %d = %s, want %s", i, d.Orders[i].Order.ID, id)
		}
	}
	if !d.Orders[0].State.EndingSoon || d.Orders[1].State.EndingSoon {
		t.Fatal("only the order ending within 24h is ending soon")
	}
	if d.ExpectedRevenue != 500+12000 {
		t.Fatalf("expected revenue = %v", d.ExpectedRevenue)
	}
}

func TestClaimReminders(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	now := t0
	l := newLedger(t, docs, &now, false)
	ctx := context.Background()

	ended, _ := l.CreateOrder(ctx, input("Car", t0.Add(-24*time.Hour), ptr(t0)))
	future, _ := l.CreateOrder(ctx, input("Bike", t0, ptr(t0.Add(time.Hour))))
	_, _ = l.CreateOrder(ctx, input("Camera", t0.Add(-24*time.Hour), nil))
	completed, _ := l.CreateOrder(ctx, input("Car", t0.Add(-24*time.Hour), ptr(t0.Add(-time.Hour))))
	_, _ = l.CompleteOrder(ctx, completed.ID)

	got, err := l.ClaimReminders(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].OrderID != ended.ID {
		t.Fatalf("reminders = %+v", got)
	}
	if got[0].Message() != "Reminder: Rental for Car by Asha has ended!" {
		t.Fatalf("message = %q", got[0].Message())
	}

	if again, _ := l.ClaimReminders(ctx, now); len(again) != 0 {
		t.Fatalf("ids must not be re-alerted, got %+v", again)
	}

	// Editing an alerted order does not re-arm it.
	if _, err := l.EditOrder(ctx, ended.ID, input("Car", t0.Add(-24*time.Hour), ptr(t0.Add(30*time.Minute)))); err != nil {
		t.Fatal(err)
	}
	now = t0.Add(2 * time.Hour)
	got, _ = l.ClaimReminders(ctx, now)
	if len(got) != 1 || got[0].OrderID != future.ID {
		t.Fatalf("reminders after edit = %+v", got)
	}

	_ = l.DeleteOrder(ctx, ended.ID)
	alerted := newLedger(t, docs, &now, false).Alerted()
	if len(alerted) != 2 || alerted[0] != ended.ID {
		t.Fatalf("alerted set should persist and keep deleted ids: %v", alerted)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	t.Parallel()

	now := t0
	src := newLedger(t, store.NewMemory(), &now, false)
	ctx := context.Background()
	_, _ = src.CreateOrder(ctx, input("Car", t0, ptr(t0.Add(12*time.Hour))))
	o, _ := src.CreateOrder(ctx, input("Bike", t0, nil))
	_, _ = src.QuickEditPrice(ctx, o.ID, "99")
	_, _ = src.AddProduct(ctx, "Drone", "700")
	_, _ = src.AddExpense(ctx, ExpenseInput{Purpose: "fuel", Amount: "120"})
	_ = src.SetTheme(ctx, models.ThemeDark)

	payload, err := json.Marshal(src.Export())
	if err != nil {
		t.Fatal(err)
	}

	dst := newLedger(t, store.NewMemory(), &now, false)
	if err := dst.Restore(ctx, payload); err != nil {
		t.Fatalf("restore: %v", err)
	}

	for _, pair := range [][2]any{
		{src.Orders(), dst.Orders()},
		{src.Products(), dst.Products()},
		{src.Expenses(), dst.Expenses()},
	} {
		a, _ := json.Marshal(pair[0])
		b, _ := json.Marshal(pair[1])
		if string(a) != string(b) {
			t.Fatalf("round trip mismatch:\n%s\n%s", a, b)
		}
	}
	if dst.Settings().Theme != models.ThemeDark {
		t.Fatal("theme should be restored")
	}
}

func TestRestore_Malformed(t *testing.T) {
	t.Parallel()

	now := t0
	docs := store.NewMemory()
	l := newLedger(t, docs, &now, false)
	ctx := context.Background()
	_, _ = l.CreateOrder(ctx, input("Car", t0, nil))

	cases := map[string]string{
		"not json":         `{`,
		"missing orders":   `{"products":[]}`,
		"orders not array": `{"orders":{},"products":[]}`,
		"missing products": `{"orders":[]}`,
		"bad expenses":     `{"orders":[],"products":[],"expenses":"x"}`,
	}
	for name, payload := range cases {
		if err := l.Restore(ctx, []byte(payload)); !errors.Is(err, ErrMalformedBackup) {
			t.Fatalf("%s: expected ErrMalformedBackup, got %v", name, err)
		}
	}
	if len(l.Orders()) != 1 {
		t.Fatal("malformed restore must not touch state")
	}
	if _, ok, _ := docs.Get(ctx, store.KeyProducts); ok {
		t.Fatal("malformed restore must not write documents")
	}
}

func TestRestore_OptionalSectionsUntouched(t *testing.T) {
	t.Parallel()

	now := t0
	l := newLedger(t, store.NewMemory(), &now, false)
	ctx := context.Background()
	_, _ = l.AddExpense(ctx, ExpenseInput{Purpose: "fuel", Amount: "50"})
	_ = l.SetTheme(ctx, models.ThemeDark)

	if err := l.Restore(ctx, []byte(`{"orders":[],"products":[{"name":"Kayak","rate":300}]}`)); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(l.Expenses()) != 1 || l.Settings().Theme != models.ThemeDark {
		t.Fatal("absent optional sections should be left untouched")
	}
	if p := l.Products(); len(p) != 1 || p[0].Name != "Kayak" {
		t.Fatalf("products = %+v", p)
	}
}
