package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/carpetwash-system/internal/model"
)

func TestResolveWindow_ExplicitRangeWins(t *testing.T) {
	now := time.Date(2024, time.July, 10, 15, 0, 0, 0, time.UTC)

	start, end := resolveWindow(now, "monthly", "2024-01-01T00:00:00Z", "2024-02-01T00:00:00Z")

	if !start.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", end)
	}
}

func TestResolveWindow_BadExplicitRangeFallsBackToToday(t *testing.T) {
	now := time.Date(2024, time.July, 10, 15, 0, 0, 0, time.UTC)

	start, end := resolveWindow(now, "", "not-a-date", "2024-02-01T00:00:00Z")

	if !start.Equal(time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v, want start of today", start)
	}
	if !end.Equal(now) {
		t.Fatalf("end = %v, want now", end)
	}
}

func TestResolveWindow_WeeklyStartsMonday(t *testing.T) {
	// 10 июля 2024 — среда, понедельник той недели — 8 июля.
	now := time.Date(2024, time.July, 10, 15, 0, 0, 0, time.UTC)

	start, end := resolveWindow(now, "weekly", "", "")

	if !start.Equal(time.Date(2024, time.July, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v, want Monday July 8", start)
	}
	if !end.Equal(now) {
		t.Fatalf("end = %v, want now", end)
	}
}

func TestResolveWindow_NamedPeriods(t *testing.T) {
	now := time.Date(2024, time.July, 10, 15, 0, 0, 0, time.UTC)

	start, _ := resolveWindow(now, "monthly", "", "")
	if !start.Equal(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("monthly start = %v", start)
	}

	start, _ = resolveWindow(now, "yearly", "", "")
	if !start.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("yearly start = %v", start)
	}

	start, _ = resolveWindow(now, "daily", "", "")
	if !start.Equal(time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("daily start = %v", start)
	}
}

func TestFoldReport_AggregatesByCategoryAndCompany(t *testing.T) {
	alpha := "user_000000000010"
	alphaName := "Alpha"
	beta := "user_000000000011"
	betaName := "Beta"

	orders := []model.Order{
		{
			OrderID:     "ORD-00000001",
			CompanyID:   &alpha,
			CompanyName: &alphaName,
			ActualCarpets: []model.ActualCarpet{
				{CarpetType: model.CarpetNormal, Area: 10, Price: decimal.NewFromInt(1000)},
				{CarpetType: model.CarpetSilk, Area: 2, Price: decimal.NewFromInt(500)},
			},
		},
		{
			OrderID:     "ORD-00000002",
			CompanyID:   &beta,
			CompanyName: &betaName,
			ActualCarpets: []model.ActualCarpet{
				{CarpetType: model.CarpetShaggy, Area: 6, Price: decimal.NewFromInt(780)},
			},
		},
	}

	r := foldReport(orders, true)

	if r.TotalOrders != 2 {
		t.Fatalf("total orders = %d, want 2", r.TotalOrders)
	}
	if r.TotalArea != 18 {
		t.Fatalf("total area = %v, want 18", r.TotalArea)
	}
	if !r.TotalPrice.Equal(decimal.NewFromInt(2280)) {
		t.Fatalf("total price = %v, want 2280", r.TotalPrice)
	}

	if st := r.CarpetStats[model.CarpetNormal]; st.Area != 10 || !st.Price.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("normal stats = %+v", st)
	}
	if st := r.CarpetStats[model.CarpetAntique]; st.Area != 0 || !st.Price.Equal(decimal.Zero) {
		t.Fatalf("antique stats must stay zero, got %+v", st)
	}

	if len(r.CompanyStats) != 2 {
		t.Fatalf("company stats = %d entries, want 2", len(r.CompanyStats))
	}
	if r.CompanyStats[0].Name != alphaName || r.CompanyStats[0].OrderCount != 1 {
		t.Fatalf("first company entry = %+v", r.CompanyStats[0])
	}
	if !r.CompanyStats[0].TotalPrice.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("alpha total = %v, want 1500", r.CompanyStats[0].TotalPrice)
	}
	if r.CompanyStats[1].TotalArea != 6 {
		t.Fatalf("beta area = %v, want 6", r.CompanyStats[1].TotalArea)
	}
}

func TestFoldReport_UnknownCategoryCountsInTotals(t *testing.T) {
	company := "user_000000000010"
	orders := []model.Order{
		{
			OrderID:   "ORD-00000001",
			CompanyID: &company,
			ActualCarpets: []model.ActualCarpet{
				{CarpetType: model.CarpetType("weird"), Area: 3, Price: decimal.NewFromInt(90)},
			},
		},
	}

	r := foldReport(orders, false)

	if r.TotalArea != 3 {
		t.Fatalf("total area = %v, want 3", r.TotalArea)
	}
	if !r.TotalPrice.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("total price = %v, want 90", r.TotalPrice)
	}
	for typ, st := range r.CarpetStats {
		if st.Area != 0 || !st.Price.Equal(decimal.Zero) {
			t.Fatalf("category %q must stay zero, got %+v", typ, st)
		}
	}
}

func TestFoldReport_Empty(t *testing.T) {
	r := foldReport(nil, true)

	if r.TotalOrders != 0 || r.TotalArea != 0 || !r.TotalPrice.Equal(decimal.Zero) {
		t.Fatalf("empty report has totals: %+v", r)
	}
	if len(r.CarpetStats) != 4 {
		t.Fatalf("carpet stats must list all categories, got %d", len(r.CarpetStats))
	}
}

func TestCompanyReport_RequiresCompanyRole(t *testing.T) {
	svc := newTestService(&stubRepo{})

	customer := &model.User{UserID: "user_000000000001", Role: model.RoleCustomer}
	_, err := svc.CompanyReport(context.Background(), customer, "daily", "", "")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestAdminReport_IncludesCompanyBreakdown(t *testing.T) {
	companyID := "user_000000000010"
	name := "Alpha"
	repo := &stubRepo{
		deliveredOrders: []model.Order{
			{
				OrderID:     "ORD-00000001",
				CompanyID:   &companyID,
				CompanyName: &name,
				ActualCarpets: []model.ActualCarpet{
					{CarpetType: model.CarpetNormal, Area: 4, Price: decimal.NewFromInt(400)},
				},
			},
		},
	}
	svc := newTestService(repo)

	admin := &model.User{UserID: "user_000000000099", Role: model.RoleAdmin}
	report, err := svc.AdminReport(context.Background(), admin, "monthly", nil, "", "")
	if err != nil {
		t.Fatalf("AdminReport error: %v", err)
	}

	if report.Period != "monthly" {
		t.Fatalf("period = %q", report.Period)
	}
	if len(report.CompanyStats) != 1 || report.CompanyStats[0].Name != name {
		t.Fatalf("company stats = %+v", report.CompanyStats)
	}
}

func TestGetCompanyStats_CollectsCounters(t *testing.T) {
	repo := &stubRepo{
		company:         &model.Company{UserID: "user_000000000010", City: "Istanbul", TotalAreaWashed: 42.5},
		totalOrders:     7,
		activeOrders:    2,
		completedOrders: 5,
		poolCount:       3,
	}
	svc := newTestService(repo)

	company := &model.User{UserID: "user_000000000010", Role: model.RoleCompany}
	stats, err := svc.GetCompanyStats(context.Background(), company)
	if err != nil {
		t.Fatalf("GetCompanyStats error: %v", err)
	}

	if stats.TotalOrders != 7 || stats.PendingOrders != 2 || stats.CompletedOrders != 5 || stats.PoolOrders != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalAreaWashed != 42.5 {
		t.Fatalf("total area washed = %v, want 42.5", stats.TotalAreaWashed)
	}
}

func TestGetAdminStats_CollectsCounters(t *testing.T) {
	repo := &stubRepo{
		totalOrders:     20,
		pendingOrders:   4,
		activeOrders:    6,
		completedOrders: 8,
		cancelledOrders: 2,
		customerCount:   15,
		companyCount:    5,
	}
	svc := newTestService(repo)

	admin := &model.User{UserID: "user_000000000099", Role: model.RoleAdmin}
	stats, err := svc.GetAdminStats(context.Background(), admin)
	if err != nil {
		t.Fatalf("GetAdminStats error: %v", err)
	}

	want := AdminStats{
		TotalOrders:     20,
		PendingOrders:   4,
		ActiveOrders:    6,
		CompletedOrders: 8,
		CancelledOrders: 2,
		TotalCustomers:  15,
		TotalCompanies:  5,
	}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}
}
