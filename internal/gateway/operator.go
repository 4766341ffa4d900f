package gateway

import (
	"errors"
	"strings"
)

// Operator identifies the payout channel a withdrawal is routed through.
// The set is closed: two USSD carriers plus the generic bank/wallet payout
// channel. Each operator maps to a fixed endpoint suffix on the PSP.
type Operator string

const (
	// OperatorMTN routes through the MTN mobile-money USSD channel.
	OperatorMTN Operator = "mtn"
	// OperatorOrange routes through the Orange Money USSD channel.
	OperatorOrange Operator = "orange"
	// OperatorPayout routes through the provider's generic payout channel.
	OperatorPayout Operator = "payout"
)

// ErrUnknownOperator indicates the supplied routing key is not part of the
// supported set.
var ErrUnknownOperator = errors.New("unknown operator")

// ParseOperator normalizes and validates an externally supplied routing key.
func ParseOperator(s string) (Operator, error) {
	switch Operator(strings.ToLower(strings.TrimSpace(s))) {
	case OperatorMTN:
		return OperatorMTN, nil
	case OperatorOrange:
		return OperatorOrange, nil
	case OperatorPayout:
		return OperatorPayout, nil
	default:
		return "", ErrUnknownOperator
	}
}

// Route returns the PSP endpoint suffix for the operator.
func (o Operator) Route() string {
	switch o {
	case OperatorMTN:
		return "/payouts/ussd/mtn"
	case OperatorOrange:
		return "/payouts/ussd/orange"
	default:
		return "/payouts/transfer"
	}
}

// USSD reports whether the operator is a carrier USSD channel as opposed to
// the generic payout channel. The two families use different payload shapes.
func (o Operator) USSD() bool {
	return o == OperatorMTN || o == OperatorOrange
}
