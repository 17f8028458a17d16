// Package validation checks tagged structs with go-playground/validator and
// turns the result into voxscribe AppErrors.
//
// Config structs get a single Configuration error listing every problem,
// request structs get an InvalidInput error for the first failing field.
//
//	type Form struct {
//	    NumSpeakers int `form:"num_speakers" validate:"omitempty,min=1"`
//	}
//	if err := validation.Request(form); err != nil { ... }
package validation
