// Package dataset holds the record contracts of the TravelPass back office:
// typed models for the nine collections, their schema definitions, seed data,
// and the Source abstraction the dashboard loads records through.
package dataset

// Collection names, shared by every Source.
const (
	Users         = "users"
	Cards         = "cards"
	Wallets       = "wallets"
	Transactions  = "transactions"
	TopUps        = "topups"
	ExchangeRates = "exchangeRates"
	Kiosks        = "kiosks"
	Merchants     = "merchants"
	Admins        = "admins"
)

// Collections lists every collection in display order.
func Collections() []string {
	return []string{Users, Cards, Wallets, Transactions, TopUps, ExchangeRates, Kiosks, Merchants, Admins}
}

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountLocked    AccountStatus = "locked"
	AccountSuspended AccountStatus = "suspended"
)

type User struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Phone         string        `json:"phone"`
	Nationality   string        `json:"nationality"`
	KYCStatus     KYCStatus     `json:"kycStatus"`
	AccountStatus AccountStatus `json:"accountStatus"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

// FullName is the name as the dashboard shows it.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type CardStatus string

const (
	CardActive   CardStatus = "active"
	CardInactive CardStatus = "inactive"
	CardLocked   CardStatus = "locked"
	CardExpired  CardStatus = "expired"
)

type PhysicalCard struct {
	ID         string     `json:"id"`
	CardNumber string     `json:"cardNumber"`
	UserID     *string    `json:"userId,omitempty"`
	Status     CardStatus `json:"status"`
	Balance    float64    `json:"balance"`
	ExpiryDate string     `json:"expiryDate"`
	IssuedDate string     `json:"issuedDate"`
	LastUsed   *string    `json:"lastUsed,omitempty"`
}

type WalletStatus string

const (
	WalletActive    WalletStatus = "active"
	WalletLocked    WalletStatus = "locked"
	WalletSuspended WalletStatus = "suspended"
)

type DigitalWallet struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	CardID    *string      `json:"cardId,omitempty"`
	Balance   float64      `json:"balance"`
	Currency  string       `json:"currency"`
	Status    WalletStatus `json:"status"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

type TransactionType string

const (
	TransactionPayment  TransactionType = "payment"
	TransactionTopUp    TransactionType = "topup"
	TransactionRefund   TransactionType = "refund"
	TransactionTransfer TransactionType = "transfer"
)

// PaymentStatus is shared by transactions and top-ups.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

type Transaction struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	CardID         *string         `json:"cardId,omitempty"`
	WalletID       *string         `json:"walletId,omitempty"`
	Type           TransactionType `json:"type"`
	Amount         float64         `json:"amount"`
	OriginalAmount *float64        `json:"originalAmount,omitempty"`
	Currency       string          `json:"currency"`
	ExchangeRate   *float64        `json:"exchangeRate,omitempty"`
	Status         PaymentStatus   `json:"status"`
	MerchantID     *string         `json:"merchantId,omitempty"`
	KioskID        *string         `json:"kioskId,omitempty"`
	Description    string          `json:"description"`
	FailureReason  *string         `json:"failureReason,omitempty"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

type TopUp struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	CardID         *string       `json:"cardId,omitempty"`
	WalletID       *string       `json:"walletId,omitempty"`
	Amount         float64       `json:"amount"`
	OriginalAmount *float64      `json:"originalAmount,omitempty"`
	Currency       string        `json:"currency"`
	ExchangeRate   *float64      `json:"exchangeRate,omitempty"`
	Status         PaymentStatus `json:"status"`
	KioskID        *string       `json:"kioskId,omitempty"`
	PaymentMethod  string        `json:"paymentMethod"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

type ExchangeRate struct {
	ID            string  `json:"id"`
	FromCurrency  string  `json:"fromCurrency"`
	ToCurrency    string  `json:"toCurrency"`
	Rate          float64 `json:"rate"`
	EffectiveDate string  `json:"effectiveDate"`
	CreatedBy     string  `json:"createdBy"`
	IsActive      bool    `json:"isActive"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type KioskStatus string

const (
	KioskActive      KioskStatus = "active"
	KioskMaintenance KioskStatus = "maintenance"
	KioskOffline     KioskStatus = "offline"
)

type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Kiosk struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Location        Location    `json:"location"`
	Status          KioskStatus `json:"status"`
	LastMaintenance *string     `json:"lastMaintenance,omitempty"`
	AdminID         *string     `json:"adminId,omitempty"`
	CreatedAt       string      `json:"createdAt"`
	UpdatedAt       string      `json:"updatedAt"`
}

type MerchantStatus string

const (
	MerchantActive    MerchantStatus = "active"
	MerchantInactive  MerchantStatus = "inactive"
	MerchantSuspended MerchantStatus = "suspended"
)

type POSDevice struct {
	ID         string  `json:"id"`
	DeviceID   string  `json:"deviceId"`
	MerchantID string  `json:"merchantId"`
	Status     string  `json:"status"`
	LastUsed   *string `json:"lastUsed,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

type Merchant struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	BusinessType   string         `json:"businessType"`
	ContactEmail   string         `json:"contactEmail"`
	ContactPhone   string         `json:"contactPhone"`
	Address        string         `json:"address"`
	CommissionRate float64        `json:"commissionRate"`
	Status         MerchantStatus `json:"status"`
	Devices        []POSDevice    `json:"devices"`
	CreatedAt      string         `json:"createdAt"`
	UpdatedAt      string         `json:"updatedAt"`
}

type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleOperator   AdminRole = "operator"
)

type AdminStatus string

const (
	AdminActive   AdminStatus = "active"
	AdminInactive AdminStatus = "inactive"
	AdminLocked   AdminStatus = "locked"
)

// Access flags for one dashboard section. Sections only carry the flags
// that apply to them.
type Access struct {
	View    bool  `json:"view"`
	Create  *bool `json:"create,omitempty"`
	Edit    *bool `json:"edit,omitempty"`
	Delete  *bool `json:"delete,omitempty"`
	KYC     *bool `json:"kyc,omitempty"`
	TopUp   *bool `json:"topup,omitempty"`
	Lock    *bool `json:"lock,omitempty"`
	Export  *bool `json:"export,omitempty"`
	Refund  *bool `json:"refund,omitempty"`
	Process *bool `json:"process,omitempty"`
	Cancel  *bool `json:"cancel,omitempty"`
}

type AdminPermissions struct {
	Dashboard     bool   `json:"dashboard"`
	Users         Access `json:"users"`
	Cards         Access `json:"cards"`
	Wallets       Access `json:"wallets"`
	Transactions  Access `json:"transactions"`
	TopUps        Access `json:"topups"`
	ExchangeRates Access `json:"exchangeRates"`
	Kiosks        Access `json:"kiosks"`
	Merchants     Access `json:"merchants"`
	Admins        Access `json:"admins"`
}

type Admin struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	Role        AdminRole        `json:"role"`
	Permissions AdminPermissions `json:"permissions"`
	Status      AdminStatus      `json:"status"`
	LastLogin   *string          `json:"lastLogin,omitempty"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

func (a Admin) FullName() string {
	return a.FirstName + " " + a.LastName
}
