package kafka

import (
	"errors"
	"fmt"
)

var errNoFull = errors.New("kafka source has no full-dump capability, use --incremental-from only")

func errMissingField(field string) error {
	return fmt.Errorf("message payload has no %q field", field)
}
