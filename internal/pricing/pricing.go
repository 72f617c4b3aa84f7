// Package pricing реализует расчёт стоимости стирки по прайс-листу.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/carpetwash-system/internal/model"
)

// Table задаёт цену стирки за квадратный метр для каждой категории ковра.
// Таблица неизменяема после создания и передаётся явно.
type Table map[model.CarpetType]decimal.Decimal

// DefaultTable возвращает действующий прайс-лист платформы.
func DefaultTable() Table {
	return Table{
		model.CarpetNormal:  decimal.NewFromInt(100),
		model.CarpetShaggy:  decimal.NewFromInt(130),
		model.CarpetSilk:    decimal.NewFromInt(250),
		model.CarpetAntique: decimal.NewFromInt(500),
	}
}

// Item описывает позицию расчёта: категория ковра и его площадь в м².
type Item struct {
	CarpetType model.CarpetType `json:"carpet_type"`
	Area       float64          `json:"area"`
}

// Detail описывает посчитанную позицию с итоговой ценой.
type Detail struct {
	CarpetType model.CarpetType `json:"carpet_type"`
	Area       float64          `json:"area"`
	Price      decimal.Decimal  `json:"price"`
}

// Quote содержит итог расчёта стоимости по списку ковров.
type Quote struct {
	Details    []Detail        `json:"details"`
	TotalArea  float64         `json:"total_area"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Estimate считает стоимость стирки для списка позиций. Позиции с
// неизвестной категорией молча пропускаются.
func (t Table) Estimate(items []Item) Quote {
	q := Quote{
		Details:    make([]Detail, 0, len(items)),
		TotalPrice: decimal.Zero,
	}

	for _, it := range items {
		unit, ok := t[it.CarpetType]
		if !ok {
			continue
		}
		price := unit.Mul(decimal.NewFromFloat(it.Area))
		q.Details = append(q.Details, Detail{
			CarpetType: it.CarpetType,
			Area:       it.Area,
			Price:      price,
		})
		q.TotalArea += it.Area
		q.TotalPrice = q.TotalPrice.Add(price)
	}

	return q
}
