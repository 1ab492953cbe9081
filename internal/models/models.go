package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderCompleted OrderStatus = "completed"
)

// Location is used to interpret timestamps stored without a zone offset
// (the browser's datetime-local format). Set once at startup.
var Location = time.Local

type Product struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

type Order struct {
	ID           string
	Status       OrderStatus
	ProductName  string
	UserName     string
	Location     string
	Phone1       string
	Phone2       string
	Phone3       string
	StartDate    time.Time
	EndDate      *time.Time
	ProofName    string
	ProofData    string
	AltProofName string
	AltProofData string
	Extra        string
	ManualCost   string
	CreatedAt    time.Time
}

// OpenEnded reports whether the order has no scheduled end.
func (o Order) OpenEnded() bool {
	return o.EndDate == nil
}

type orderJSON struct {
	ID           string      `json:"id"`
	Status       OrderStatus `json:"status"`
	ProductName  string      `json:"productName"`
	UserName     string      `json:"userName"`
	Location     string      `json:"location"`
	Phone1       string      `json:"phone1"`
	Phone2       string      `json:"phone2,omitempty"`
	Phone3       string      `json:"phone3,omitempty"`
	StartDate    string      `json:"startDate"`
	EndDate      string      `json:"endDate"`
	ProofName    string      `json:"proofName,omitempty"`
	ProofData    string      `json:"proofData,omitempty"`
	AltProofName string      `json:"altProofName,omitempty"`
	AltProofData string      `json:"altProofData,omitempty"`
	Extra        string      `json:"extra,omitempty"`
	ManualCost   string      `json:"manualCost,omitempty"`
	CreatedAt    string      `json:"createdAt,omitempty"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	out := orderJSON{
		ID:           o.ID,
		Status:       o.Status,
		ProductName:  o.ProductName,
		UserName:     o.UserName,
		Location:     o.Location,
		Phone1:       o.Phone1,
		Phone2:       o.Phone2,
		Phone3:       o.Phone3,
		StartDate:    FormatTimestamp(o.StartDate),
		ProofName:    o.ProofName,
		ProofData:    o.ProofData,
		AltProofName: o.AltProofName,
		AltProofData: o.AltProofData,
		Extra:        o.Extra,
		ManualCost:   o.ManualCost,
	}
	if o.EndDate != nil {
		out.EndDate = FormatTimestamp(*o.EndDate)
	}
	if !o.CreatedAt.IsZero() {
		out.CreatedAt = FormatTimestamp(o.CreatedAt)
	}
	return json.Marshal(out)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var in orderJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	start, err := ParseTimestamp(in.StartDate)
	if err != nil {
		return fmt.Errorf("order %s startDate: %w", in.ID, err)
	}
	var end *time.Time
	if strings.TrimSpace(in.EndDate) != "" {
		t, err := ParseTimestamp(in.EndDate)
		if err != nil {
			return fmt.Errorf("order %s endDate: %w", in.ID, err)
		}
		end = &t
	}
	var created time.Time
	if strings.TrimSpace(in.CreatedAt) != "" {
		created, err = ParseTimestamp(in.CreatedAt)
		if err != nil {
			return fmt.Errorf("order %s createdAt: %w", in.ID, err)
		}
	}
	status := in.Status
	if status == "" {
		status = OrderActive
	}
	*o = Order{
		ID:           in.ID,
		Status:       status,
		ProductName:  in.ProductName,
		UserName:     in.UserName,
		Location:     in.Location,
		Phone1:       in.Phone1,
		Phone2:       in.Phone2,
		Phone3:       in.Phone3,
		StartDate:    start,
		EndDate:      end,
		ProofName:    in.ProofName,
		ProofData:    in.ProofData,
		AltProofName: in.AltProofName,
		AltProofData: in.AltProofData,
		Extra:        in.Extra,
		ManualCost:   in.ManualCost,
		CreatedAt:    created,
	}
	return nil
}

type Expense struct {
	Purpose string    `json:"purpose"`
	Amount  float64   `json:"amount"`
	Date    time.Time `json:"-"`
}

type expenseJSON struct {
	Purpose string  `json:"purpose"`
	Amount  float64 `json:"amount"`
	Date    string  `json:"date,omitempty"`
}

func (e Expense) MarshalJSON() ([]byte, error) {
	out := expenseJSON{Purpose: e.Purpose, Amount: e.Amount}
	if !e.Date.IsZero() {
		out.Date = FormatTimestamp(e.Date)
	}
	return json.Marshal(out)
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	var in expenseJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var date time.Time
	if strings.TrimSpace(in.Date) != "" {
		t, err := ParseTimestamp(in.Date)
		if err != nil {
			return fmt.Errorf("expense date: %w", err)
		}
		date = t
	}
	*e = Expense{Purpose: in.Purpose, Amount: in.Amount, Date: date}
	return nil
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Reminder is the one-time notice for an order whose end date has passed.
type Reminder struct {
	OrderID     string    `json:"orderId"`
	ProductName string    `json:"productName"`
	UserName    string    `json:"userName"`
	EndDate     time.Time `json:"endDate"`
}

func (r Reminder) Message() string {
	return fmt.Sprintf("Reminder: Rental for %s by %s has ended!", r.ProductName, r.UserName)
}
