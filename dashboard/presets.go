package dashboard

import (
	"fmt"
	"time"

	"github.com/travelpass/dashboard/core/query"
	"github.com/travelpass/dashboard/core/schema"
	"github.com/travelpass/dashboard/dataset"
	errs "github.com/travelpass/dashboard/errors"
)

// Derived fields available to every screen through the engine's compute
// functions.
const (
	FieldFullName          = "fullName"
	FieldUserName          = "userName"
	FieldUserEmail         = "userEmail"
	FieldMerchantName      = "merchantName"
	FieldKioskName         = "kioskName"
	FieldAdminName         = "adminName"
	FieldDeviceCount       = "deviceCount"
	FieldActiveDeviceCount = "activeDeviceCount"
	FieldCreatedDay        = "createdDay"
	FieldPlaceName         = "placeName"
)

const isoDay = "2006-01-02"

// Screen names.
const (
	ScreenUsers         = "users"
	ScreenCards         = "cards"
	ScreenWallets       = "wallets"
	ScreenTransactions  = "transactions"
	ScreenTopUps        = "topups"
	ScreenExchangeRates = "exchange-rates"
	ScreenKiosks        = "kiosks"
	ScreenMerchants     = "merchants"
	ScreenAdmins        = "admins"
)

// ScreenNames lists the screens in sidebar order.
func ScreenNames() []string {
	return []string{
		ScreenUsers, ScreenCards, ScreenWallets, ScreenTransactions, ScreenTopUps,
		ScreenExchangeRates, ScreenKiosks, ScreenMerchants, ScreenAdmins,
	}
}

// index maps record ids to records for cross-collection lookups.
type index map[string]schema.Document

func newIndex(docs []schema.Document) index {
	idx := make(index, len(docs))
	for _, d := range docs {
		if id, ok := d["id"].(string); ok {
			idx[id] = d
		}
	}
	return idx
}

func (idx index) ref(doc schema.Document, field string) (schema.Document, bool) {
	id, ok := doc[field].(string)
	if !ok {
		return nil, false
	}
	target, ok := idx[id]
	return target, ok
}

func fullName(doc schema.Document) (any, error) {
	first, _ := doc["firstName"].(string)
	last, _ := doc["lastName"].(string)
	if first == "" && last == "" {
		return nil, nil
	}
	return first + " " + last, nil
}

// computeFunctions derives display fields, resolving references against the
// snapshot.
func computeFunctions(snap dataset.Snapshot) map[string]query.ComputeFunction {
	users := newIndex(snap[dataset.Users])
	merchants := newIndex(snap[dataset.Merchants])
	kiosks := newIndex(snap[dataset.Kiosks])
	admins := newIndex(snap[dataset.Admins])

	return map[string]query.ComputeFunction{
		FieldFullName: fullName,
		FieldUserName: func(doc schema.Document) (any, error) {
			if u, ok := users.ref(doc, "userId"); ok {
				return fullName(u)
			}
			return nil, nil
		},
		FieldUserEmail: func(doc schema.Document) (any, error) {
			if u, ok := users.ref(doc, "userId"); ok {
				return u["email"], nil
			}
			return nil, nil
		},
		FieldMerchantName: func(doc schema.Document) (any, error) {
			if m, ok := merchants.ref(doc, "merchantId"); ok {
				return m["name"], nil
			}
			return nil, nil
		},
		FieldKioskName: func(doc schema.Document) (any, error) {
			if k, ok := kiosks.ref(doc, "kioskId"); ok {
				return k["name"], nil
			}
			return nil, nil
		},
		FieldAdminName: func(doc schema.Document) (any, error) {
			if a, ok := admins.ref(doc, "adminId"); ok {
				return fullName(a)
			}
			return nil, nil
		},
		FieldPlaceName: func(doc schema.Document) (any, error) {
			if k, ok := kiosks.ref(doc, "kioskId"); ok {
				return k["name"], nil
			}
			if m, ok := merchants.ref(doc, "merchantId"); ok {
				return m["name"], nil
			}
			return nil, nil
		},
		FieldDeviceCount: func(doc schema.Document) (any, error) {
			devices, ok := doc["devices"].([]any)
			if !ok {
				return nil, nil
			}
			return float64(len(devices)), nil
		},
		FieldActiveDeviceCount: activeDeviceCount,
		FieldCreatedDay: func(doc schema.Document) (any, error) {
			v, ok := doc["createdAt"]
			if !ok {
				return nil, nil
			}
			t, ok := query.ToTime(v)
			if !ok {
				return nil, fmt.Errorf("createdAt %v is not a date", v)
			}
			return t.UTC().Format(isoDay), nil
		},
	}
}

func activeDeviceCount(doc schema.Document) (any, error) {
	devices, ok := doc["devices"].([]any)
	if !ok {
		return nil, nil
	}
	n := 0
	for _, d := range devices {
		if m, ok := d.(map[string]any); ok && m["status"] == "active" {
			n++
		}
	}
	return float64(n), nil
}

func hasActiveDevices(doc schema.Document) bool {
	n, _ := activeDeviceCount(doc)
	f, ok := n.(float64)
	return ok && f > 0
}

// fieldIs matches records whose field holds exactly value.
func fieldIs(field string, value any) query.Predicate {
	return func(doc schema.Document) bool {
		v, ok := schema.Lookup(doc, field)
		return ok && v == value
	}
}

func hasField(field string) query.Predicate {
	return func(doc schema.Document) bool {
		_, ok := schema.Lookup(doc, field)
		return ok
	}
}

// numberWithin matches records whose field is a number in [min, max]. Either
// bound may be nil.
func numberWithin(field string, min, max *float64) query.Predicate {
	return func(doc schema.Document) bool {
		v, ok := schema.Lookup(doc, field)
		if !ok {
			return false
		}
		f, ok := query.ToFloat64(v)
		if !ok {
			return false
		}
		return (min == nil || f >= *min) && (max == nil || f <= *max)
	}
}

func numberAbove(field string, limit float64) query.Predicate {
	return func(doc schema.Document) bool {
		v, ok := schema.Lookup(doc, field)
		if !ok {
			return false
		}
		f, ok := query.ToFloat64(v)
		return ok && f > limit
	}
}

func numberBelow(field string, limit float64) query.Predicate {
	return func(doc schema.Document) bool {
		v, ok := schema.Lookup(doc, field)
		if !ok {
			return false
		}
		f, ok := query.ToFloat64(v)
		return ok && f < limit
	}
}

// within matches records whose timestamp lies no further than d before now.
func within(field string, d time.Duration, now func() time.Time) query.Predicate {
	return func(doc schema.Document) bool {
		v, ok := schema.Lookup(doc, field)
		if !ok {
			return false
		}
		t, ok := query.ToTime(v)
		return ok && now().Sub(t) <= d
	}
}

// sameDay matches records whose date falls on today's UTC day.
func sameDay(field string, now func() time.Time) query.Predicate {
	return func(doc schema.Document) bool {
		v, ok := schema.Lookup(doc, field)
		if !ok {
			return false
		}
		t, ok := query.ToTime(v)
		return ok && t.UTC().Format(isoDay) == now().UTC().Format(isoDay)
	}
}

func countOf(label string, p query.Predicate) Stat {
	return Stat{Request: query.CountWhere(p).As(label), Scope: ScopeAll}
}

func statusCount(label, status string) Stat {
	return countOf(label, fieldIs("status", status))
}

func filtered(st Stat) Stat {
	st.Scope = ScopeFiltered
	return st
}

func ptr(f float64) *float64 { return &f }

// presets builds the nine list screens.
func presets(now func() time.Time) []*Screen {
	balanceHigh := numberAbove("balance", 500000)
	balanceMid := numberWithin("balance", ptr(100000), ptr(500000))
	balanceLow := numberBelow("balance", 100000)
	recentLogin := within("lastLogin", 24*time.Hour, now)
	effectiveToday := sameDay("effectiveDate", now)

	return []*Screen{
		{
			Name:         ScreenUsers,
			Title:        "Quản lý người dùng",
			Collection:   dataset.Users,
			SearchFields: []string{"email", FieldFullName, "phone"},
			Filters:      []string{"kycStatus", "accountStatus", "nationality"},
			Stats: []Stat{
				{Request: query.CountBy("kycStatus").As("byKycStatus"), Scope: ScopeAll},
				{Request: query.CountBy("accountStatus").As("byAccountStatus"), Scope: ScopeAll},
				{Request: query.CountBy("nationality").As("byNationality"), Scope: ScopeAll},
			},
		},
		{
			Name:         ScreenCards,
			Title:        "Quản lý thẻ vật lý",
			Collection:   dataset.Cards,
			SearchFields: []string{"cardNumber", "id"},
			Filters:      []string{"status"},
			Ranges:       []string{"balance"},
			Stats: []Stat{
				statusCount("active", "active"),
				countOf("assigned", hasField("userId")),
				{Request: query.Sum("balance").As("totalBalance"), Scope: ScopeAll},
			},
		},
		{
			Name:         ScreenWallets,
			Title:        "Quản lý ví điện tử",
			Collection:   dataset.Wallets,
			SearchFields: []string{"id", "userId", FieldUserName, FieldUserEmail},
			Filters:      []string{"status", "currency"},
			Ranges:       []string{"balance"},
			Stats: []Stat{
				statusCount("active", "active"),
				statusCount("locked", "locked"),
				{Request: query.Sum("balance").As("totalBalance"), Scope: ScopeAll},
				countOf("balanceOver500K", balanceHigh),
				countOf("balance100Kto500K", balanceMid),
				countOf("balanceUnder100K", balanceLow),
			},
		},
		{
			Name:         ScreenTransactions,
			Title:        "Quản lý giao dịch",
			Collection:   dataset.Transactions,
			SearchFields: []string{"id", "userId", "description"},
			Filters:      []string{"type", "status", "currency"},
			Ranges:       []string{"createdAt", "amount"},
			Stats: []Stat{
				filtered(Stat{Request: query.Sum("amount").As("totalAmount")}),
				filtered(statusCount("completed", "completed")),
				{Request: query.CountBy(FieldMerchantName).As("byMerchant"), Scope: ScopeAll},
			},
		},
		{
			Name:         ScreenTopUps,
			Title:        "Quản lý nạp tiền",
			Collection:   dataset.TopUps,
			SearchFields: []string{"id", "userId", FieldUserName},
			Filters:      []string{"status", "paymentMethod"},
			Ranges:       []string{"createdAt", "amount"},
			Stats: []Stat{
				filtered(Stat{Request: query.Sum("amount").As("totalAmount")}),
				filtered(statusCount("completed", "completed")),
				filtered(statusCount("pending", "pending")),
				filtered(statusCount("failed", "failed")),
				{Request: query.CountBy("paymentMethod").As("byPaymentMethod"), Scope: ScopeAll},
				{Request: query.SumBy("amount", FieldCreatedDay).As("amountByDay"), Scope: ScopeAll},
			},
		},
		{
			Name:         ScreenExchangeRates,
			Title:        "Quản lý tỷ giá hối đoái",
			Collection:   dataset.ExchangeRates,
			SearchFields: []string{"fromCurrency", "toCurrency"},
			Virtual: map[string]VirtualFilter{
				"currency": currencyFilter,
				"status":   activeFilter("isActive"),
			},
			Ranges: []string{"rate", "effectiveDate"},
			Stats: []Stat{
				countOf("active", fieldIs("isActive", true)),
				countOf("inactive", fieldIs("isActive", false)),
				countOf("effectiveToday", effectiveToday),
			},
		},
		{
			Name:         ScreenKiosks,
			Title:        "Quản lý kiosk",
			Collection:   dataset.Kiosks,
			SearchFields: []string{"name", "location.address"},
			Filters:      []string{"status"},
			Stats: []Stat{
				statusCount("active", "active"),
				statusCount("maintenance", "maintenance"),
				statusCount("offline", "offline"),
			},
		},
		{
			Name:         ScreenMerchants,
			Title:        "Quản lý đối tác thương mại",
			Collection:   dataset.Merchants,
			SearchFields: []string{"name", "contactEmail", "contactPhone"},
			Filters:      []string{"businessType", "status"},
			Ranges:       []string{"commissionRate"},
			Stats: []Stat{
				statusCount("active", "active"),
				statusCount("inactive", "inactive"),
				statusCount("suspended", "suspended"),
				{Request: query.Sum(FieldDeviceCount).As("posDevices"), Scope: ScopeAll},
				{Request: query.Sum(FieldActiveDeviceCount).As("activePosDevices"), Scope: ScopeAll},
				{Request: query.CountBy("businessType").As("byBusinessType"), Scope: ScopeAll},
			},
		},
		{
			Name:         ScreenAdmins,
			Title:        "Quản lý người dùng admin",
			Collection:   dataset.Admins,
			SearchFields: []string{"username", "email", FieldFullName},
			Filters:      []string{"role", "status"},
			Ranges:       []string{"lastLogin"},
			Stats: []Stat{
				statusCount("active", "active"),
				statusCount("inactive", "inactive"),
				statusCount("locked", "locked"),
				countOf("recentLogins", recentLogin),
				{Request: query.CountBy("role").As("byRole"), Scope: ScopeAll},
			},
		},
	}
}

// presetFlags holds the named predicates of each screen.
func presetFlags(now func() time.Time) map[string]flags {
	return map[string]flags{
		ScreenUsers: {"kycPending": fieldIs("kycStatus", "pending")},
		ScreenCards: {
			"assigned":   hasField("userId"),
			"unassigned": query.Not(hasField("userId")),
		},
		ScreenWallets: {
			"balanceOver500K":   numberAbove("balance", 500000),
			"balance100Kto500K": numberWithin("balance", ptr(100000), ptr(500000)),
			"balanceUnder100K":  numberBelow("balance", 100000),
		},
		ScreenTransactions: {"failed": fieldIs("status", "failed")},
		ScreenTopUps:       {"atKiosk": hasField("kioskId")},
		ScreenExchangeRates: {
			"effectiveToday": sameDay("effectiveDate", now),
		},
		ScreenKiosks:    {"unassigned": query.Not(hasField("adminId"))},
		ScreenMerchants: {"withActiveDevices": hasActiveDevices},
		ScreenAdmins:    {"recentLogin": within("lastLogin", 24*time.Hour, now)},
	}
}

type flags map[string]query.Predicate

func (f flags) names() []string {
	return sortedKeys(map[string]query.Predicate(f))
}

// currencyFilter matches rates quoting the currency on either side.
func currencyFilter(value string) (query.Predicate, error) {
	return query.Or(fieldIs("fromCurrency", value), fieldIs("toCurrency", value)), nil
}

// activeFilter maps the "active" and "inactive" dropdown values onto a
// boolean field.
func activeFilter(field string) VirtualFilter {
	return func(value string) (query.Predicate, error) {
		switch value {
		case "active":
			return fieldIs(field, true), nil
		case "inactive":
			return fieldIs(field, false), nil
		}
		return nil, errs.E(errs.InvalidCriteria, fmt.Sprintf("status must be active or inactive, got %q", value), nil)
	}
}
