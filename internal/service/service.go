// Package service implements the ledger operations on top of the repositories:
// statement import, reclassification, transaction listing, settings and
// month planning.
package service

import (
	"github.com/rs/zerolog"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/period"
)

var nopLogger = zerolog.Nop()

func loggerOr(l *zerolog.Logger) *zerolog.Logger {
	if l == nil {
		return &nopLogger
	}
	return l
}

func monthRange(m period.Month) repository.DateRange {
	start, end := m.Bounds()
	return repository.DateRange{Start: start, End: end}
}
