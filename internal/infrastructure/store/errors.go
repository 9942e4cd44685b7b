package store

import "errors"

// ErrDuplicatePayment signals that a payment record already exists for the
// order id. Callers treat it as "already processed", not as a failure.
var ErrDuplicatePayment = errors.New("payment record already exists for order")
