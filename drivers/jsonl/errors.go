package jsonl

import (
	"errors"
	"fmt"
)

var errNoIncremental = errors.New("jsonl source has no incremental capability")

func errMissingID(table, field string) error {
	return fmt.Errorf("record in table %q has no %q field", table, field)
}
