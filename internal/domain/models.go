package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UplineDepth is the number of ancestor generations kept on a user record.
const UplineDepth = 10

// Upline is the ancestor snapshot taken when a user registers, nearest first.
// A zero entry means there is no ancestor at that depth.
type Upline [UplineDepth]int

// Inherit returns the upline of a user sponsored by sponsorID, whose own upline is u.
func (u Upline) Inherit(sponsorID int) Upline {
	var next Upline
	next[0] = sponsorID
	copy(next[1:], u[:UplineDepth-1])
	return next
}

// Populated returns the ids of all non-empty levels.
func (u Upline) Populated() []int {
	ids := make([]int, 0, UplineDepth)
	for _, id := range u {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

type User struct {
	ID                  int        `db:"id"`
	Name                string     `db:"name"`
	Phone               string     `db:"phone"`
	Email               string     `db:"email"`
	MemberID            string     `db:"member_id"`
	SponsorID           string     `db:"sponsor_id"`
	Upline              Upline     `db:"-"`
	IsMember            bool       `db:"is_dtehm_member"`
	MembershipStartedAt *time.Time `db:"membership_started_at"`
	MembershipExpiresAt *time.Time `db:"membership_expires_at"`
	CreatedAt           time.Time  `db:"created_at"`
}

type Admin struct {
	ID           int       `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Product struct {
	ID          int               `db:"id"`
	Name        string            `db:"name"`
	Price       decimal.Decimal   `db:"price"`
	Description string            `db:"description"`
	Tags        []string          `db:"tags"`
	Attributes  map[string]string `db:"attributes"`
	ProcessedAt *time.Time        `db:"processed_at"`
	CreatedAt   time.Time         `db:"created_at"`
}

type Order struct {
	ID          int             `db:"id"`
	UserID      int             `db:"user_id"`
	OrderNumber string          `db:"order_number"`
	Total       decimal.Decimal `db:"total"`
	CreatedAt   time.Time       `db:"created_at"`
}

// LevelShare is the payout recorded for one upline generation.
type LevelShare struct {
	UserID int
	Amount decimal.Decimal
}

type Commission struct {
	Seller      decimal.Decimal
	Levels      [UplineDepth]LevelShare
	Total       decimal.Decimal
	ProcessedAt *time.Time
}

type OrderedItem struct {
	ID              int             `db:"id"`
	OrderID         *int            `db:"order_id"`
	MultipleOrderID *int            `db:"multiple_order_id"`
	ProductID       int             `db:"product_id"`
	Qty             int             `db:"qty"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	Color           string          `db:"color"`
	Size            string          `db:"size"`
	HasDtehmSeller  bool            `db:"has_dtehm_seller"`
	SellerID        int             `db:"dtehm_user_id"`
	Paid            bool            `db:"item_is_paid"`
	PaidAt          *time.Time      `db:"paid_at"`
	CommissionState CommissionState `db:"commission_state"`
	Commission      Commission      `db:"-"`
	CreatedAt       time.Time       `db:"created_at"`
}

// CommissionEligible reports whether the item may be handed to the distributor.
func (i *OrderedItem) CommissionEligible() bool {
	return i.Paid && i.HasDtehmSeller && i.SellerID != 0
}

type CartLine struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
}

type MultipleOrder struct {
	ID                int              `db:"id"`
	UserID            int              `db:"user_id"`
	SponsorID         string           `db:"sponsor_id"`
	StockistID        string           `db:"stockist_id"`
	Items             []CartLine       `db:"items_json"`
	Subtotal          decimal.Decimal  `db:"subtotal"`
	DeliveryFee       decimal.Decimal  `db:"delivery_fee"`
	Total             decimal.Decimal  `db:"total_amount"`
	PaymentStatus     PaymentStatus    `db:"payment_status"`
	ConversionStatus  ConversionStatus `db:"conversion_status"`
	MerchantReference string           `db:"merchant_reference"`
	TrackingID        string           `db:"pesapal_tracking_id"`
	RedirectURL       string           `db:"pesapal_redirect_url"`
	PaidByAdmin       bool             `db:"is_paid_by_admin"`
	AdminNote         string           `db:"admin_payment_note"`
	PaidAt            *time.Time       `db:"paid_at"`
	ConvertedAt       *time.Time       `db:"converted_at"`
	ConversionResult  []int            `db:"conversion_result"`
	ConversionError   string           `db:"conversion_error"`
	CreatedAt         time.Time        `db:"created_at"`
}

// PaymentConfirmed reports whether conversion may run.
func (m *MultipleOrder) PaymentConfirmed() bool {
	return m.PaymentStatus == PaymentCompleted
}

type TransactionSource string

const (
	SourceCommission TransactionSource = "commission"
	SourceWithdrawal TransactionSource = "withdrawal"
	SourceManual     TransactionSource = "manual"
)

type AccountTransaction struct {
	ID                int               `db:"id"`
	UserID            int               `db:"user_id"`
	Amount            decimal.Decimal   `db:"amount"`
	Source            TransactionSource `db:"source"`
	Description       string            `db:"description"`
	TransactionDate   time.Time         `db:"transaction_date"`
	CreatedBy         int               `db:"created_by"`
	OrderedItemID     *int              `db:"ordered_item_id"`
	WithdrawRequestID *int              `db:"withdraw_request_id"`
}

type Balance struct {
	UserID    int
	Current   decimal.Decimal
	Withdrawn decimal.Decimal
}

// BalanceOf derives a user's balance from their ledger rows. Current is the signed sum,
// Withdrawn the negated sum of withdrawal rows.
func BalanceOf(userID int, txs []AccountTransaction) Balance {
	b := Balance{UserID: userID, Current: decimal.Zero, Withdrawn: decimal.Zero}
	for _, tx := range txs {
		if tx.UserID != userID {
			continue
		}
		b.Current = b.Current.Add(tx.Amount)
		if tx.Source == SourceWithdrawal {
			b.Withdrawn = b.Withdrawn.Sub(tx.Amount)
		}
	}
	return b
}

type WithdrawRequest struct {
	ID                   int             `db:"id"`
	UserID               int             `db:"user_id"`
	Amount               decimal.Decimal `db:"amount"`
	Status               WithdrawStatus  `db:"status"`
	BalanceBefore        decimal.Decimal `db:"account_balance_before"`
	AccountTransactionID *int            `db:"account_transaction_id"`
	ProcessedBy          int             `db:"processed_by"`
	ProcessedAt          *time.Time      `db:"processed_at"`
	Description          string          `db:"description"`
	AdminNote            string          `db:"admin_note"`
	CreatedAt            time.Time       `db:"created_at"`
}
