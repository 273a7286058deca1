package customer

import "errors"

var (
	// ErrCustomerNotFound indicates the requested customer is absent
	// from the current metrics batch.
	ErrCustomerNotFound = errors.New("customer not found in metrics batch")

	// ErrEmptyBatch indicates the metrics query returned zero rows.
	ErrEmptyBatch = errors.New("customer metrics batch is empty")
)
