package csv

import (
	"errors"
	"fmt"
)

var errNoIncremental = errors.New("csv source has no incremental capability")

func errMissingID(table, field string) error {
	return fmt.Errorf("table %q has no %q column", table, field)
}
