// Package schema validates assessment forms before they are persisted.
package schema

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"oral-health-intake-service/internal/assessment"
)

// ErrInvalidChoice is returned when an enumerated field holds a value outside its choice set.
var ErrInvalidChoice = errors.New("invalid choice")

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate checks every enumerated field of rec. Empty values are always accepted.
func (v *Validator) Validate(rec assessment.Record) error {
	var errs []error
	for _, f := range assessment.ContentFields {
		choices := assessment.Choices(f)
		if choices == nil {
			continue
		}
		val := rec.Get(f)
		if val == "" || slices.Contains(choices, val) {
			continue
		}
		errs = append(errs, fmt.Errorf("%w for %s: %q", ErrInvalidChoice, f.Label(), val))
	}

	if err := errors.Join(errs...); err != nil {
		log.Debug().Err(err).Msg("assessment failed schema validation")
		return err
	}
	return nil
}
