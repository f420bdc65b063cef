package ordering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DerivePaymentStatus maps paid versus total with a one-cent tolerance
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	if !paid.IsPositive() {
		return PaymentStatusUnpaid
	}
	if paid.GreaterThanOrEqual(total.Sub(valueobject.PaymentTolerance)) {
		return PaymentStatusPaid
	}
	return PaymentStatusPartial
}

// CashDetails describes a cash tender
type CashDetails struct {
	Received decimal.Decimal
}

// CardDetails describes a card tender
type CardDetails struct {
	Brand             string
	Last4             string
	AuthorizationCode string
	Installments      int
}

// PixDetails describes an instant transfer
type PixDetails struct {
	EndToEndID string
	PayerKey   string
}

// VoucherDetails describes a meal voucher
type VoucherDetails struct {
	Provider string
	Code     string
}

// PaymentDetails is a tagged variant keyed by Method. At most the member
// matching Method is set.
type PaymentDetails struct {
	Method  PaymentMethod
	Cash    *CashDetails
	Card    *CardDetails
	Pix     *PixDetails
	Voucher *VoucherDetails
}

// Validate checks that only the variant matching Method is populated
func (d PaymentDetails) Validate() error {
	if !d.Method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", d.Method))
	}
	set := map[PaymentMethod]bool{
		PaymentMethodCash:    d.Cash != nil,
		PaymentMethodPix:     d.Pix != nil,
		PaymentMethodVoucher: d.Voucher != nil,
	}
	cardSet := d.Card != nil
	for m, present := range set {
		if present && m != d.Method {
			return shared.NewDomainError("INVALID_PAYMENT_DETAILS", fmt.Sprintf("%s details sent for a %s payment", m, d.Method))
		}
	}
	if cardSet && d.Method != PaymentMethodCreditCard && d.Method != PaymentMethodDebitCard {
		return shared.NewDomainError("INVALID_PAYMENT_DETAILS", fmt.Sprintf("card details sent for a %s payment", d.Method))
	}
	if d.Cash != nil && d.Cash.Received.IsNegative() {
		return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Received cash cannot be negative")
	}
	if d.Card != nil && d.Card.Last4 != "" && len(d.Card.Last4) != 4 {
		return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Card last4 must have four digits")
	}
	return nil
}

// Reference renders a short human-readable ledger reference
func (d PaymentDetails) Reference() string {
	switch {
	case d.Card != nil:
		parts := []string{d.Card.Brand}
		if d.Card.Last4 != "" {
			parts = append(parts, "****"+d.Card.Last4)
		}
		if d.Card.AuthorizationCode != "" {
			parts = append(parts, "auth "+d.Card.AuthorizationCode)
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	case d.Pix != nil:
		return "pix " + d.Pix.EndToEndID
	case d.Voucher != nil:
		return strings.TrimSpace(d.Voucher.Provider + " " + d.Voucher.Code)
	}
	return string(d.Method)
}

// PaymentResult describes the effect of one recorded payment
type PaymentResult struct {
	Amount         decimal.Decimal
	Change         decimal.Decimal
	PreviousStatus PaymentStatus
	Status         PaymentStatus
}

// BecamePaid reports the transition into fully paid
func (r PaymentResult) BecamePaid() bool {
	return r.PreviousStatus != PaymentStatusPaid && r.Status == PaymentStatusPaid
}

// RecordPayment applies a payment to the order. Paid is capped at the total;
// change is only computed for cash.
func (o *Order) RecordPayment(amount decimal.Decimal, details PaymentDetails) (PaymentResult, error) {
	if !amount.IsPositive() {
		return PaymentResult{}, shared.ErrInvalidAmount
	}
	if o.Status == OrderStatusCancelled {
		return PaymentResult{}, ErrOrderCancelled
	}
	if err := details.Validate(); err != nil {
		return PaymentResult{}, err
	}
	amount = valueobject.RoundMoney(amount)
	remaining := o.RemainingBalance()
	if amount.GreaterThan(remaining.Add(valueobject.PaymentTolerance)) {
		return PaymentResult{}, shared.NewDomainError(ErrPaymentExceedsBalance.Code,
			fmt.Sprintf("Payment of %s exceeds remaining balance of %s", amount.StringFixed(2), remaining.StringFixed(2)))
	}

	prev := o.PaymentStatus
	o.PaidAmount = decimal.Min(o.PaidAmount.Add(amount), o.TotalAmount)

	change := decimal.Zero
	if details.Method.IsCash() && details.Cash != nil {
		change = valueobject.RoundMoney(valueobject.NonNegative(details.Cash.Received.Sub(amount)))
	}
	o.ChangeAmount = change
	o.PaymentMethod = details.Method
	o.PaymentStatus = DerivePaymentStatus(o.PaidAmount, o.TotalAmount)
	o.Touch()

	result := PaymentResult{
		Amount:         amount,
		Change:         change,
		PreviousStatus: prev,
		Status:         o.PaymentStatus,
	}
	o.AddDomainEvent(NewOrderPaymentRecordedEvent(o, amount, details.Method))
	if result.BecamePaid() {
		now := time.Now()
		o.PaidAt = &now
		o.AddDomainEvent(NewOrderPaymentCompletedEvent(o))
	}
	return result, nil
}

// StampLoyaltyEarned records points granted for this order
func (o *Order) StampLoyaltyEarned(points int) {
	o.LoyaltyPointsEarned = points
}

// CancellationResult captures what compensations a cancellation needs.
// PaymentMethod is the last tender and only names refunds no ledger row covers.
type CancellationResult struct {
	WasFullyPaid     bool
	WasServed        bool
	Refund           decimal.Decimal
	PaymentMethod    PaymentMethod
	CustomerCredited decimal.Decimal
	VisitCounted     bool
	PointsEarned     int
	PointsRedeemed   int
}

// CreditedCustomer reports whether the customer's history holds this order
func (r CancellationResult) CreditedCustomer() bool {
	return r.VisitCounted || r.CustomerCredited.IsPositive()
}

// Cancel marks the order cancelled. The refund equals whatever was paid.
func (o *Order) Cancel(userID uuid.UUID, reason string) (CancellationResult, error) {
	if o.Status == OrderStatusCancelled {
		return CancellationResult{}, ErrAlreadyCancelled
	}
	result := CancellationResult{
		WasFullyPaid:     o.PaymentStatus == PaymentStatusPaid,
		WasServed:        o.StockDeducted,
		Refund:           o.PaidAmount,
		PaymentMethod:    o.PaymentMethod,
		CustomerCredited: o.CustomerCredited,
		VisitCounted:     o.VisitCounted,
		PointsEarned:     o.LoyaltyPointsEarned,
		PointsRedeemed:   o.LoyaltyPointsRedeemed,
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.RefundAmount = o.PaidAmount
	o.CancelledAt = &now
	o.CancelledBy = &userID
	o.CancelReason = reason
	o.Touch()
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return result, nil
}
