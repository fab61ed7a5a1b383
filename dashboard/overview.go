package dashboard

import (
	"context"
	"sort"

	"github.com/travelpass/dashboard/core/query"
	"github.com/travelpass/dashboard/dataset"
)

// DayAmount is the top-up volume of one day.
type DayAmount struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// PlaceCount is the number of transactions at one kiosk or merchant.
type PlaceCount struct {
	Place string `json:"place"`
	Count int    `json:"count"`
}

// Overview holds the headline numbers of the dashboard home page.
type Overview struct {
	TotalUsers             int          `json:"totalUsers"`
	ActiveCards            int          `json:"activeCards"`
	TodayTransactions      int          `json:"todayTransactions"`
	TotalTransactionAmount float64      `json:"totalTransactionAmount"`
	TopUpsByDay            []DayAmount  `json:"topUpsByDay"`
	TransactionsByPlace    []PlaceCount `json:"transactionsByPlace"`
}

// Overview computes the home page numbers from the snapshot. Collections
// missing from the snapshot count as empty.
func (d *Dashboard) Overview(ctx context.Context) (*Overview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ov := &Overview{TotalUsers: len(d.snapshot[dataset.Users])}

	cards, err := d.engine.Aggregate(d.snapshot[dataset.Cards], []query.AggregateRequest{
		query.CountWhere(fieldIs("status", "active")).As("active"),
	})
	if err != nil {
		return nil, err
	}
	ov.ActiveCards = cards.Get("active").Count

	txs, err := d.engine.Aggregate(d.snapshot[dataset.Transactions], []query.AggregateRequest{
		query.CountWhere(sameDay("createdAt", d.now)).As("today"),
		query.Sum("amount").As("amount"),
		query.CountBy(FieldPlaceName).As("byPlace"),
	})
	if err != nil {
		return nil, err
	}
	ov.TodayTransactions = txs.Get("today").Count
	ov.TotalTransactionAmount = txs.Get("amount").Sum

	byPlace := txs.Get("byPlace").Counts
	ov.TransactionsByPlace = make([]PlaceCount, 0, len(byPlace))
	for place, n := range byPlace {
		ov.TransactionsByPlace = append(ov.TransactionsByPlace, PlaceCount{Place: place, Count: n})
	}
	sort.Slice(ov.TransactionsByPlace, func(i, j int) bool {
		a, b := ov.TransactionsByPlace[i], ov.TransactionsByPlace[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Place < b.Place
	})

	topUps, err := d.engine.Aggregate(d.snapshot[dataset.TopUps], []query.AggregateRequest{
		query.SumBy("amount", FieldCreatedDay).As("byDay"),
	})
	if err != nil {
		return nil, err
	}
	byDay := topUps.Get("byDay").Sums
	ov.TopUpsByDay = make([]DayAmount, 0, len(byDay))
	for _, day := range sortedKeys(byDay) {
		ov.TopUpsByDay = append(ov.TopUpsByDay, DayAmount{Date: day, Amount: byDay[day]})
	}

	return ov, nil
}
