package models

// User roles. Staff accounts can be assigned deliveries, specialists own
// booking slots and subscription plans.
const (
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleSpecialist = "specialist"
	RoleCustomer   = "customer"
)

// User represents an authenticated account. The wallet balance lives directly
// on the user row and is only mutated through the wallet ledger.
type User struct {
	BaseModel
	Email        string  `gorm:"uniqueIndex" json:"email"`
	FullName     string  `json:"full_name"`
	Phone        string  `json:"phone"`
	PasswordHash string  `json:"-"`
	Role         string  `gorm:"index;default:customer" json:"role"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`
	Balance      float64 `json:"balance"`

	// Default shipping destination, used when a checkout request carries no
	// explicit address codes.
	ShippingAddress string `json:"shipping_address"`
	WardCode        string `json:"ward_code"`
	DistrictID      int    `json:"district_id"`
}
