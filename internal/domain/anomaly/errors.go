package anomaly

import "errors"

var (
	// ErrEmptyBaseline indicates no finite values survived filtering for
	// any feature, so no population statistics can be computed.
	ErrEmptyBaseline = errors.New("no finite values available for baseline")

	// ErrEmptyInput indicates the batch has zero rows.
	ErrEmptyInput = errors.New("empty customer metrics batch")
)
