package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/db"
	"github.com/Simplici0/quotedesk/internal/migrations"
	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/versioning"
)

// tickingClock advances one second per reading so ordering is deterministic.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "store-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database, db.SQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	clock := &tickingClock{t: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)}
	return New(database, db.SQLite, WithClock(clock.Now))
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleQuotation(clientID, title string) model.Quotation {
	return model.Quotation{
		ClientID:     clientID,
		ProjectTitle: title,
		LineItems: []model.LineItem{
			{ItemID: "i1", Name: "Cable tray", Quantity: d("2"), UnitPrice: d("100"), Total: d("200")},
			{ItemID: "i2", Name: "Junction box", Quantity: d("1"), UnitPrice: d("50"), Total: d("50")},
		},
		Subtotal:  d("250"),
		TaxRate:   d("18"),
		TaxAmount: d("45"),
		Total:     d("295"),
		Status:    model.StatusDraft,
	}
}

func TestCreateQuotationAssignsNumberAndFirstVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q1, v1, err := s.CreateQuotation(ctx, sampleQuotation("", "Panel"), "u1")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	if q1.QuotationNumber != "ZEN-2025-0001" {
		t.Fatalf("unexpected number: %s", q1.QuotationNumber)
	}
	if v1.VersionNumber != 1 || v1.Notes != InitialVersionNote || v1.CreatedBy != "u1" {
		t.Fatalf("unexpected first version: %+v", v1)
	}

	q2, _, err := s.CreateQuotation(ctx, sampleQuotation("", "Second"), "u1")
	if err != nil {
		t.Fatalf("create second quotation: %v", err)
	}
	if q2.QuotationNumber != "ZEN-2025-0002" {
		t.Fatalf("unexpected second number: %s", q2.QuotationNumber)
	}

	got, err := s.GetQuotation(ctx, q1.ID)
	if err != nil {
		t.Fatalf("get quotation: %v", err)
	}
	if !got.Total.Equal(d("295")) || len(got.LineItems) != 2 || !got.LineItems[0].Quantity.Equal(d("2")) {
		t.Fatalf("quotation did not round trip: %+v", got)
	}
}

func TestWithPrefix(t *testing.T) {
	s := openTestStore(t)
	WithPrefix("ACME")(s)

	q, _, err := s.CreateQuotation(context.Background(), sampleQuotation("", "Prefixed"), "")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	if q.QuotationNumber != "ACME-2025-0001" {
		t.Fatalf("unexpected number: %s", q.QuotationNumber)
	}
}

func TestUpdateQuotationAppendsVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q, _, err := s.CreateQuotation(ctx, sampleQuotation("", "Panel"), "u1")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}

	q.Status = model.StatusSent
	q.Notes = "sent to client"
	updated, v2, err := s.UpdateQuotation(ctx, q, "", "u2")
	if err != nil {
		t.Fatalf("update quotation: %v", err)
	}
	if updated.Status != model.StatusSent || updated.QuotationNumber != q.QuotationNumber {
		t.Fatalf("unexpected updated quotation: %+v", updated)
	}
	if v2.VersionNumber != 2 || v2.Data.Status != model.StatusSent {
		t.Fatalf("unexpected second version: %+v", v2)
	}

	history, err := s.ListVersions(ctx, q.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(history) != 2 || history[0].VersionNumber != 2 || history[1].VersionNumber != 1 {
		t.Fatalf("expected newest-first history of 2, got %+v", history)
	}
	if history[1].Data.Status != model.StatusDraft {
		t.Fatalf("older snapshot must be unchanged, got %s", history[1].Data.Status)
	}
}

func TestUpdateMissingQuotationWritesNothing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ghost := sampleQuotation("", "Ghost")
	ghost.ID = "missing"
	if _, _, err := s.UpdateQuotation(ctx, ghost, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	history, err := s.ListVersions(ctx, "missing")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no versions, got %d", len(history))
	}
}

func TestRestoreVersionAppendsCopyOfTarget(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q, _, err := s.CreateQuotation(ctx, sampleQuotation("", "Panel"), "u1")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	q.ProjectTitle = "Panel rev B"
	q.Status = model.StatusSent
	q, v2, err := s.UpdateQuotation(ctx, q, "", "u1")
	if err != nil {
		t.Fatalf("update to v2: %v", err)
	}
	q.ProjectTitle = "Panel rev C"
	q.LineItems = q.LineItems[:1]
	q.Subtotal, q.TaxAmount, q.Total = d("200"), d("36"), d("236")
	if _, _, err := s.UpdateQuotation(ctx, q, "", "u1"); err != nil {
		t.Fatalf("update to v3: %v", err)
	}

	restored, v4, err := s.RestoreVersion(ctx, q.ID, v2.ID, "u2")
	if err != nil {
		t.Fatalf("restore version: %v", err)
	}
	if v4.VersionNumber != 4 || v4.Notes != RestoreNote(2) {
		t.Fatalf("unexpected restore version: %+v", v4)
	}
	if restored.ProjectTitle != "Panel rev B" || len(restored.LineItems) != 2 || !restored.Total.Equal(d("295")) {
		t.Fatalf("live quotation not restored: %+v", restored)
	}

	c := versioning.Compare(v2, v4)
	if len(c.Changed()) != 0 || c.Count(versioning.LineUnchanged) != 2 {
		t.Fatalf("restored snapshot differs from target: %+v", c.Changed())
	}

	history, err := s.ListVersions(ctx, q.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected history to grow to 4, got %d", len(history))
	}
	if history[2].ID != v2.ID || history[2].Data.ProjectTitle != "Panel rev B" {
		t.Fatalf("restored version must stay in place: %+v", history[2])
	}
}

func TestRestoreMissingVersionFailsWithoutWriting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q, _, err := s.CreateQuotation(ctx, sampleQuotation("", "Panel"), "u1")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}

	if _, _, err := s.RestoreVersion(ctx, q.ID, "no-such-version", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	history, err := s.ListVersions(ctx, q.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected history unchanged, got %d versions", len(history))
	}
}

func TestConcurrentUpdatesGetDistinctVersionNumbers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q, _, err := s.CreateQuotation(ctx, sampleQuotation("", "Panel"), "u1")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}

	const writers, perWriter = 2, 5
	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, _, err := s.UpdateQuotation(ctx, q, "", "u1"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent update: %v", err)
	}

	history, err := s.ListVersions(ctx, q.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(history) != 1+writers*perWriter {
		t.Fatalf("expected %d versions, got %d", 1+writers*perWriter, len(history))
	}
	for i, v := range history {
		if want := len(history) - i; v.VersionNumber != want {
			t.Fatalf("expected contiguous numbering, position %d has %d", i, v.VersionNumber)
		}
	}
}

func TestDeleteQuotationRemovesHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q, _, err := s.CreateQuotation(ctx, sampleQuotation("", "Panel"), "u1")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	if err := s.DeleteQuotation(ctx, q.ID); err != nil {
		t.Fatalf("delete quotation: %v", err)
	}
	if _, err := s.GetQuotation(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	history, err := s.ListVersions(ctx, q.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected history removed, got %d", len(history))
	}
	if err := s.DeleteQuotation(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListQuotationsFiltersAndJoinsClient(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, model.Client{Name: "Acme Industries", Email: "ops@acme.test"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	first, _, err := s.CreateQuotation(ctx, sampleQuotation(client.ID, "Substation wiring"), "")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	second := sampleQuotation("", "Lighting retrofit")
	second.Status = model.StatusSent
	if _, _, err := s.CreateQuotation(ctx, second, ""); err != nil {
		t.Fatalf("create quotation: %v", err)
	}

	all, err := s.ListQuotations(ctx, QuotationFilter{})
	if err != nil {
		t.Fatalf("list quotations: %v", err)
	}
	if len(all) != 2 || all[0].ProjectTitle != "Lighting retrofit" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	byClient, err := s.ListQuotations(ctx, QuotationFilter{Query: "acme"})
	if err != nil {
		t.Fatalf("search quotations: %v", err)
	}
	if len(byClient) != 1 || byClient[0].ID != first.ID {
		t.Fatalf("expected client-name match, got %+v", byClient)
	}
	if byClient[0].Client == nil || byClient[0].Client.Name != "Acme Industries" {
		t.Fatalf("expected joined client, got %+v", byClient[0].Client)
	}

	sent, err := s.ListQuotations(ctx, QuotationFilter{Status: model.StatusSent})
	if err != nil {
		t.Fatalf("filter quotations: %v", err)
	}
	if len(sent) != 1 || sent[0].Client != nil {
		t.Fatalf("expected one sent quotation without client, got %+v", sent)
	}

	limited, err := s.ListQuotations(ctx, QuotationFilter{Limit: 1})
	if err != nil {
		t.Fatalf("limit quotations: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cost := d("60.50")
	it, err := s.CreateItem(ctx, model.Item{Name: "Breaker", Unit: "pcs", UnitPrice: d("99.99"), CostPrice: &cost, Category: "Electrical"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	plain, err := s.CreateItem(ctx, model.Item{Name: "Anchor", Unit: "pcs", UnitPrice: d("5")})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	got, err := s.GetItem(ctx, it.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.CostPrice == nil || !got.CostPrice.Equal(cost) || !got.UnitPrice.Equal(d("99.99")) {
		t.Fatalf("item did not round trip: %+v", got)
	}
	gotPlain, err := s.GetItem(ctx, plain.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if gotPlain.CostPrice != nil {
		t.Fatalf("expected nil cost price, got %v", gotPlain.CostPrice)
	}

	got.UnitPrice = d("120")
	got.CostPrice = nil
	updated, err := s.UpdateItem(ctx, got)
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if !updated.UnitPrice.Equal(d("120")) || updated.CostPrice != nil {
		t.Fatalf("item update not applied: %+v", updated)
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Anchor" {
		t.Fatalf("expected items sorted by name, got %+v", items)
	}

	if err := s.DeleteItem(ctx, plain.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if _, err := s.GetItem(ctx, plain.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientUpdateAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, model.Client{Name: "Beta", Email: "b@beta.test"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	c.City = "Pune"
	updated, err := s.UpdateClient(ctx, c)
	if err != nil {
		t.Fatalf("update client: %v", err)
	}
	if updated.City != "Pune" {
		t.Fatalf("client update not applied: %+v", updated)
	}
	if _, err := s.UpdateClient(ctx, model.Client{ID: "missing", Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteClient(ctx, c.ID); err != nil {
		t.Fatalf("delete client: %v", err)
	}
	clients, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("expected no clients, got %d", len(clients))
	}
}

func TestTemplateAndGoalRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tpl, err := s.CreateTemplate(ctx, model.Template{
		Name:      "Standard",
		TaxRate:   d("18"),
		LineItems: []model.LineItem{{ItemID: "i1", Quantity: d("1"), UnitPrice: d("10"), Total: d("10")}},
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	gotTpl, err := s.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if len(gotTpl.LineItems) != 1 || !gotTpl.TaxRate.Equal(d("18")) {
		t.Fatalf("template did not round trip: %+v", gotTpl)
	}

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	g, err := s.CreateGoal(ctx, model.Goal{
		GoalType:    model.GoalRevenue,
		TargetValue: d("100000"),
		PeriodType:  model.PeriodQuarterly,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 3, 0).Add(-time.Nanosecond),
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	gotGoal, err := s.GetGoal(ctx, g.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if !gotGoal.IsActive || !gotGoal.PeriodStart.Equal(start) || !gotGoal.TargetValue.Equal(d("100000")) {
		t.Fatalf("goal did not round trip: %+v", gotGoal)
	}

	gotGoal.IsActive = false
	updated, err := s.UpdateGoal(ctx, gotGoal)
	if err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected inactive goal")
	}
	if err := s.DeleteGoal(ctx, g.ID); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if err := s.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
}

func TestUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, " Admin@Example.com ", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := s.UserByEmail(ctx, "admin@example.COM")
	if err != nil {
		t.Fatalf("user by email: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber("ZEN", 2025, 24); got != "ZEN-2025-0024" {
		t.Fatalf("unexpected number: %s", got)
	}
	if got := FormatNumber("ZEN", 2025, 12345); got != "ZEN-2025-12345" {
		t.Fatalf("unexpected wide number: %s", got)
	}
}
