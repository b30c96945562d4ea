package engine

import (
	"fmt"

	"coursesched/internal/domain"

	"github.com/go-playground/validator/v10"
)

var shapeValidator = validator.New()

// ValidateShape runs struct-tag validation over the inbound envelope,
// catching missing ids and malformed fields before any domain logic runs.
func ValidateShape(input domain.SchedulingInput) []domain.ValidationError {
	if err := shapeValidator.Struct(input); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []domain.ValidationError{{Code: "invalid_input", Message: err.Error()}}
		}
		errs := make([]domain.ValidationError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			errs = append(errs, domain.ValidationError{
				Code:    "invalid_input",
				Message: fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag()),
			})
		}
		return errs
	}
	return nil
}

// ValidateCrosslistCapacity checks that every cross-list group's aggregate
// expected enrollment fits in the largest available room.
func ValidateCrosslistCapacity(input domain.SchedulingInput, idx indices) []domain.ValidationError {
	maxCapacity := 0
	for _, r := range input.Rooms {
		if r.Capacity > maxCapacity {
			maxCapacity = r.Capacity
		}
	}

	var errs []domain.ValidationError
	for _, g := range input.CrosslistGroups {
		total := idx.crosslistCapacity[g.ID]
		if total > maxCapacity {
			errs = append(errs, domain.ValidationError{
				Code: "crosslist_capacity",
				Message: fmt.Sprintf(
					"Cross-list group %s requires capacity %d, but max room is %d.",
					g.ID, total, maxCapacity),
			})
		}
	}
	return errs
}
