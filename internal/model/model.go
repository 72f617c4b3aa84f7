// Package model содержит доменные сущности сервиса стирки ковров.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя в системе.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleCompany  Role = "company"
	RoleAdmin    Role = "admin"
)

// Valid сообщает, относится ли значение к известным ролям.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя платформы.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"-"`
	Role         Role      `json:"role"`
	Phone        *string   `json:"phone,omitempty"`
	City         *string   `json:"city,omitempty"`
	District     *string   `json:"district,omitempty"`
	Address      *string   `json:"address,omitempty"`
	Picture      *string   `json:"picture,omitempty"`
	IsBanned     bool      `json:"is_banned"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session хранит выданный пользователю токен доступа.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired сообщает, истёк ли срок действия сессии на момент now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// Company представляет профиль фирмы по стирке ковров.
type Company struct {
	UserID          string    `json:"user_id"`
	CompanyName     string    `json:"company_name"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone,omitempty"`
	City            string    `json:"city"`
	Districts       []string  `json:"districts"`
	Address         *string   `json:"address,omitempty"`
	IsActive        bool      `json:"is_active"`
	TotalAreaWashed float64   `json:"total_area_washed"`
	CreatedAt       time.Time `json:"created_at"`
}

// CarpetType описывает категорию ковра из прайс-листа.
type CarpetType string

const (
	CarpetNormal  CarpetType = "normal"
	CarpetShaggy  CarpetType = "shaggy"
	CarpetSilk    CarpetType = "silk"
	CarpetAntique CarpetType = "antique"
)

// DeclaredCarpet описывает ковёр со слов заказчика при оформлении заказа.
type DeclaredCarpet struct {
	CarpetType CarpetType `json:"carpet_type"`
	Width      float64    `json:"width"`
	Length     float64    `json:"length"`
	Area       float64    `json:"area"`
}

// ActualCarpet описывает обмеренный фирмой ковёр и его стоимость.
type ActualCarpet struct {
	CarpetType CarpetType      `json:"carpet_type"`
	Area       float64         `json:"area"`
	Price      decimal.Decimal `json:"price"`
}

// OrderStatus описывает стадию обработки заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusWashing   OrderStatus = "washing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// statusRank задаёт порядок следования стадий жизненного цикла.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusAssigned:  1,
	OrderStatusPickedUp:  2,
	OrderStatusWashing:   3,
	OrderStatusReady:     4,
	OrderStatusDelivered: 5,
}

// Valid сообщает, является ли значение известным статусом заказа.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal сообщает, что дальнейшие переходы из статуса запрещены.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanAdvanceTo проверяет, допустим ли переход из текущего статуса в next.
// Разрешено движение только вперёд по цепочке
// assigned → picked_up → washing → ready → delivered.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	if s.Terminal() || s == OrderStatusPending {
		return false
	}
	if next == OrderStatusPending || next == OrderStatusAssigned {
		return false
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Order описывает заказ на стирку ковров.
type Order struct {
	OrderID            string           `json:"order_id"`
	CustomerID         string           `json:"customer_id"`
	CustomerName       string           `json:"customer_name"`
	CustomerPhone      string           `json:"customer_phone"`
	CustomerEmail      string           `json:"customer_email"`
	CustomerAddress    string           `json:"customer_address"`
	City               string           `json:"city"`
	District           string           `json:"district"`
	Carpets            []DeclaredCarpet `json:"carpets"`
	ActualCarpets      []ActualCarpet   `json:"actual_carpets"`
	ActualTotalArea    float64          `json:"actual_total_area"`
	ActualTotalPrice   decimal.Decimal  `json:"actual_total_price"`
	DiscountPercentage int              `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal  `json:"discount_amount"`
	FinalPrice         decimal.Decimal  `json:"final_price"`
	CarpetCount        int              `json:"carpet_count"`
	SpecialNotes       *string          `json:"special_notes,omitempty"`
	Status             OrderStatus      `json:"status"`
	CompanyID          *string          `json:"company_id"`
	CompanyName        *string          `json:"company_name"`
	NotifiedCompanies  []string         `json:"notified_companies"`
	RejectedBy         []string         `json:"rejected_by"`
	CreatedAt          time.Time        `json:"created_at"`
	AssignedAt         *time.Time       `json:"assigned_at"`
	PickupDate         *time.Time       `json:"pickup_date"`
	WashingDate        *time.Time       `json:"washing_date"`
	DeliveryDate       *time.Time       `json:"delivery_date"`
	CancelledAt        *time.Time       `json:"cancelled_at"`
	CancelReason       *string          `json:"cancel_reason"`
}
