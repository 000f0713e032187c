package models

import "time"

// OrderItem represents a single line of an order. Price is a snapshot of the
// product price taken at order creation; later catalog changes never alter it.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string  `json:"-" gorm:"type:varchar(36);index"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Product   Product `json:"product" gorm:"foreignKey:ProductID"`
	Amount    int     `json:"amount"`
	Price     float64 `json:"price"`
}

// OrderOpinion is a post-fulfillment rating and review left by the order's
// placer once the order reached a terminal status.
type OrderOpinion struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// Order represents a customer order.
type Order struct {
	ID               string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username         string        `json:"username"`
	Email            string        `json:"email"`
	PhoneNumber      string        `json:"phone_number"`
	Items            []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
	StatusID         string        `json:"-" gorm:"type:varchar(36)"`
	Status           OrderStatus   `json:"status" gorm:"foreignKey:StatusID"`
	ConfirmationDate *time.Time    `json:"confirmation_date"` // set exactly when the order completes
	Opinion          *OrderOpinion `json:"opinion" gorm:"embedded;embeddedPrefix:opinion_"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
