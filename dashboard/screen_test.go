package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelpass/dashboard/core/schema"
	"github.com/travelpass/dashboard/dataset"
	errs "github.com/travelpass/dashboard/errors"
)

var fixedNow = time.Date(2024, 1, 30, 16, 0, 0, 0, time.UTC)

func newSeedDashboard(t *testing.T) *Dashboard {
	t.Helper()
	snap, err := dataset.LoadSnapshot(context.Background(), dataset.NewSeedSource(nil))
	require.NoError(t, err)
	d, err := New(snap, &Options{Clock: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return d
}

func ids(docs []schema.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d["id"].(string))
	}
	return out
}

func TestScreens_Query(t *testing.T) {
	d := newSeedDashboard(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		screen  string
		state   ViewState
		wantIDs []string
	}{
		{"users unfiltered", ScreenUsers, ViewState{}, []string{"1", "2", "3"}},
		{"users by full name", ScreenUsers, ViewState{Search: "NGUYỄN"}, []string{"1"}},
		{"users by phone", ScreenUsers, ViewState{Search: "+8490345"}, []string{"3"}},
		{"users by kyc", ScreenUsers, ViewState{Filters: map[string]string{"kycStatus": "approved"}}, []string{"1", "3"}},
		{"users empty filter value", ScreenUsers, ViewState{Filters: map[string]string{"kycStatus": ""}}, []string{"1", "2", "3"}},
		{"users kyc pending flag", ScreenUsers, ViewState{Flags: []string{"kycPending"}}, []string{"2"}},
		{"cards by number", ScreenCards, ViewState{Search: "1234567890123458"}, []string{"3"}},
		{"cards locked", ScreenCards, ViewState{Filters: map[string]string{"status": "locked"}}, []string{"2"}},
		{"cards balance floor", ScreenCards, ViewState{Ranges: map[string]RangeState{"balance": {Min: "100000"}}}, []string{"1", "2"}},
		{"cards unassigned", ScreenCards, ViewState{Flags: []string{"unassigned"}}, []string{"3"}},
		{"wallets by user email", ScreenWallets, ViewState{Search: "tran.thi"}, []string{"2"}},
		{"wallets by user name", ScreenWallets, ViewState{Search: "john"}, []string{"3"}},
		{"wallets by currency", ScreenWallets, ViewState{Filters: map[string]string{"currency": "VND"}}, []string{"1", "2", "3"}},
		{"wallets mid balance", ScreenWallets, ViewState{Flags: []string{"balance100Kto500K"}}, []string{"2", "3"}},
		{"transactions by description", ScreenTransactions, ViewState{Search: "thanh toán"}, []string{"1", "3"}},
		{"transactions since date", ScreenTransactions, ViewState{Ranges: map[string]RangeState{"createdAt": {Min: "2024-01-29"}}}, []string{"1", "2"}},
		{"transactions amount window", ScreenTransactions, ViewState{Ranges: map[string]RangeState{"amount": {Min: "25000", Max: "50000"}}}, []string{"1", "3"}},
		{"transactions failed flag", ScreenTransactions, ViewState{Flags: []string{"failed"}}, []string{"3"}},
		{"topups pending", ScreenTopUps, ViewState{Filters: map[string]string{"status": "pending"}}, []string{"2"}},
		{"topups by user name", ScreenTopUps, ViewState{Search: "trần"}, []string{"2"}},
		{"topups by method", ScreenTopUps, ViewState{Filters: map[string]string{"paymentMethod": "cash"}}, []string{"1"}},
		{"rates by currency", ScreenExchangeRates, ViewState{Filters: map[string]string{"currency": "USD"}}, []string{"1"}},
		{"rates quoted in VND", ScreenExchangeRates, ViewState{Filters: map[string]string{"currency": "VND"}}, []string{"1", "2"}},
		{"rates inactive", ScreenExchangeRates, ViewState{Filters: map[string]string{"status": "inactive"}}, []string{}},
		{"rates search", ScreenExchangeRates, ViewState{Search: "eur"}, []string{"2"}},
		{"kiosks by address", ScreenKiosks, ViewState{Search: "bến thành"}, []string{"1"}},
		{"kiosks without admin", ScreenKiosks, ViewState{Flags: []string{"unassigned"}}, []string{"2"}},
		{"merchants by commission", ScreenMerchants, ViewState{Ranges: map[string]RangeState{"commissionRate": {Max: "2.5"}}}, []string{"1"}},
		{"merchants by type", ScreenMerchants, ViewState{Filters: map[string]string{"businessType": "Restaurant"}}, []string{"2"}},
		{"admins last 24h", ScreenAdmins, ViewState{Ranges: map[string]RangeState{"lastLogin": {Min: "2024-01-29T16:00:00Z"}}}, []string{"admin1"}},
		{"admins recent flag", ScreenAdmins, ViewState{Flags: []string{"recentLogin"}}, []string{"admin1"}},
		{"admins by name", ScreenAdmins, ViewState{Search: "operator one"}, []string{"admin2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := d.Query(ctx, tt.screen, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(page.Items))
			assert.Equal(t, len(tt.wantIDs), page.MatchedCount)
			assert.Equal(t, len(d.snapshot[d.screens[tt.screen].Collection]), page.Total)
		})
	}
}

func TestScreens_InvalidState(t *testing.T) {
	d := newSeedDashboard(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		screen string
		state  ViewState
	}{
		{"unknown filter", ScreenUsers, ViewState{Filters: map[string]string{"email": "x"}}},
		{"unknown range", ScreenUsers, ViewState{Ranges: map[string]RangeState{"createdAt": {Min: "2024-01-01"}}}},
		{"unknown flag", ScreenCards, ViewState{Flags: []string{"kycPending"}}},
		{"bad number", ScreenTransactions, ViewState{Ranges: map[string]RangeState{"amount": {Min: "abc"}}}},
		{"bad date", ScreenTransactions, ViewState{Ranges: map[string]RangeState{"createdAt": {Max: "yesterday"}}}},
		{"inverted range", ScreenTransactions, ViewState{Ranges: map[string]RangeState{"amount": {Min: "300000", Max: "100000"}}}},
		{"bad status", ScreenExchangeRates, ViewState{Filters: map[string]string{"status": "paused"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Query(ctx, tt.screen, tt.state)
			require.Error(t, err)
			assert.True(t, errs.Is(errs.InvalidCriteria, err), "got %v", err)
		})
	}
}

func TestScreen_CriteriaTyping(t *testing.T) {
	d := newSeedDashboard(t)

	rates, err := d.Screen(ScreenExchangeRates)
	require.NoError(t, err)
	c, err := rates.Criteria(ViewState{Ranges: map[string]RangeState{"rate": {Min: "25000"}}})
	require.NoError(t, err)
	assert.Equal(t, 25000.0, c.RangeFilters["rate"].Min)
	assert.Nil(t, c.RangeFilters["rate"].Max)

	txs, err := d.Screen(ScreenTransactions)
	require.NoError(t, err)
	c, err = txs.Criteria(ViewState{
		Search:  "kiosk",
		Filters: map[string]string{"type": "topup"},
		Ranges:  map[string]RangeState{"createdAt": {Min: "2024-01-29", Max: "2024-01-30T23:59:59Z"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "kiosk", c.SearchText)
	assert.Equal(t, []string{"id", "userId", "description"}, c.SearchFields)
	assert.Equal(t, "topup", c.ExactFilters["type"])
	from, ok := c.RangeFilters["createdAt"].Min.(time.Time)
	require.True(t, ok)
	assert.True(t, from.Equal(time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)))

	empty, err := txs.Criteria(ViewState{})
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestScreens_Stats(t *testing.T) {
	d := newSeedDashboard(t)
	ctx := context.Background()

	users, err := d.Query(ctx, ScreenUsers, ViewState{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"approved": 2, "pending": 1}, users.Stats.Get("byKycStatus").Counts)
	assert.Equal(t, map[string]int{"Vietnamese": 2, "American": 1}, users.Stats.Get("byNationality").Counts)

	cards, err := d.Query(ctx, ScreenCards, ViewState{Filters: map[string]string{"status": "locked"}})
	require.NoError(t, err)
	// stat cards of this screen describe the whole collection
	assert.Equal(t, 1, cards.Stats.Get("active").Count)
	assert.Equal(t, 2, cards.Stats.Get("assigned").Count)
	assert.Equal(t, 750000.0, cards.Stats.Get("totalBalance").Sum)
	assert.Equal(t, []string{"active", "assigned", "totalBalance"}, cards.Stats.Labels)

	wallets, err := d.Query(ctx, ScreenWallets, ViewState{})
	require.NoError(t, err)
	assert.Equal(t, 1150000.0, wallets.Stats.Get("totalBalance").Sum)
	assert.Equal(t, 1, wallets.Stats.Get("balanceOver500K").Count)
	assert.Equal(t, 2, wallets.Stats.Get("balance100Kto500K").Count)
	assert.Equal(t, 0, wallets.Stats.Get("balanceUnder100K").Count)
	assert.Equal(t, 1, wallets.Stats.Get("locked").Count)

	txs, err := d.Query(ctx, ScreenTransactions, ViewState{Filters: map[string]string{"type": "payment"}})
	require.NoError(t, err)
	assert.Equal(t, 75000.0, txs.Stats.Get("totalAmount").Sum)
	assert.Equal(t, 1, txs.Stats.Get("completed").Count)
	byMerchant := txs.Stats.Get("byMerchant")
	assert.Equal(t, map[string]int{"Cửa hàng tiện lợi ABC": 1, "Nhà hàng XYZ": 1}, byMerchant.Counts)
	assert.Equal(t, 1, byMerchant.Skipped)

	topUps, err := d.Query(ctx, ScreenTopUps, ViewState{Filters: map[string]string{"status": "pending"}})
	require.NoError(t, err)
	require.Len(t, topUps.Items, 1)
	assert.Equal(t, 100000.0, topUps.Items[0]["amount"])
	assert.Equal(t, 100000.0, topUps.Stats.Get("totalAmount").Sum)
	assert.Equal(t, 1, topUps.Stats.Get("pending").Count)
	assert.Equal(t, 0, topUps.Stats.Get("completed").Count)
	assert.Equal(t, map[string]int{"cash": 1, "bank_transfer": 1}, topUps.Stats.Get("byPaymentMethod").Counts)
	assert.Equal(t, map[string]float64{"2024-01-29": 200000, "2024-01-30": 100000}, topUps.Stats.Get("amountByDay").Sums)

	rates, err := d.Query(ctx, ScreenExchangeRates, ViewState{})
	require.NoError(t, err)
	assert.Equal(t, 2, rates.Stats.Get("active").Count)
	assert.Equal(t, 0, rates.Stats.Get("inactive").Count)
	assert.Equal(t, 2, rates.Stats.Get("effectiveToday").Count)

	kiosks, err := d.Query(ctx, ScreenKiosks, ViewState{})
	require.NoError(t, err)
	assert.Equal(t, 1, kiosks.Stats.Get("maintenance").Count)
	assert.Equal(t, 0, kiosks.Stats.Get("offline").Count)

	merchants, err := d.Query(ctx, ScreenMerchants, ViewState{})
	require.NoError(t, err)
	assert.Equal(t, 2.0, merchants.Stats.Get("posDevices").Sum)
	assert.Equal(t, 2.0, merchants.Stats.Get("activePosDevices").Sum)
	assert.Equal(t, map[string]int{"Convenience Store": 1, "Restaurant": 1}, merchants.Stats.Get("byBusinessType").Counts)

	admins, err := d.Query(ctx, ScreenAdmins, ViewState{})
	require.NoError(t, err)
	assert.Equal(t, 1, admins.Stats.Get("recentLogins").Count)
	assert.Equal(t, map[string]int{"super_admin": 1, "operator": 1}, admins.Stats.Get("byRole").Counts)
}

func TestScreen_StatLabels(t *testing.T) {
	d := newSeedDashboard(t)
	s := &Screen{
		Name:       "broken",
		Collection: dataset.Users,
		Stats: []Stat{
			countOf("same", hasField("id")),
			filtered(countOf("same", hasField("id"))),
		},
		engine: d.engine,
	}
	_, err := s.Query(d.snapshot[dataset.Users], ViewState{})
	assert.True(t, errs.Is(errs.InvalidSpec, err))

	s.Stats = []Stat{{Request: s.Stats[0].Request.As("")}}
	_, err = s.Query(d.snapshot[dataset.Users], ViewState{})
	assert.True(t, errs.Is(errs.InvalidSpec, err))
}
