package domain

import "fmt"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// CanBecome reports whether a payment may move from s to next.
// COMPLETED and CANCELLED are final; a FAILED payment may be retried.
func (s PaymentStatus) CanBecome(next PaymentStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case PaymentPending:
		return true
	case PaymentFailed:
		return next == PaymentPending || next == PaymentCompleted
	case PaymentCompleted, PaymentCancelled:
		return false
	}
	return false
}

type ConversionStatus string

const (
	ConversionPending    ConversionStatus = "PENDING"
	ConversionProcessing ConversionStatus = "PROCESSING"
	ConversionCompleted  ConversionStatus = "COMPLETED"
	ConversionFailed     ConversionStatus = "FAILED"
)

func ParseConversionStatus(s string) (ConversionStatus, error) {
	switch st := ConversionStatus(s); st {
	case ConversionPending, ConversionProcessing, ConversionCompleted, ConversionFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown conversion status %q", s)
}

// Convertible reports whether a conversion attempt may start from s.
// Automatic triggers only start from PENDING; an admin may retry a FAILED conversion.
func (s ConversionStatus) Convertible(manual bool) bool {
	switch s {
	case ConversionPending:
		return true
	case ConversionFailed:
		return manual
	case ConversionProcessing, ConversionCompleted:
		return false
	}
	return false
}

type CommissionState string

const (
	CommissionPending   CommissionState = "PENDING"
	CommissionProcessed CommissionState = "PROCESSED"
)

func ParseCommissionState(s string) (CommissionState, error) {
	switch st := CommissionState(s); st {
	case CommissionPending, CommissionProcessed:
		return st, nil
	}
	return "", fmt.Errorf("unknown commission state %q", s)
}

type WithdrawStatus string

const (
	WithdrawPending  WithdrawStatus = "pending"
	WithdrawApproved WithdrawStatus = "approved"
	WithdrawRejected WithdrawStatus = "rejected"
)

func ParseWithdrawStatus(s string) (WithdrawStatus, error) {
	switch st := WithdrawStatus(s); st {
	case WithdrawPending, WithdrawApproved, WithdrawRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown withdraw status %q", s)
}

// Resolved reports whether the request has reached a final state.
func (s WithdrawStatus) Resolved() bool {
	switch s {
	case WithdrawPending:
		return false
	case WithdrawApproved, WithdrawRejected:
		return true
	}
	return true
}
