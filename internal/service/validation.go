package service

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the domain rules registered:
// score_step (multiples of 0.5) and yyyymm (calendar month).
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("score_step", validateScoreStep)
	_ = v.RegisterValidation("yyyymm", validateMonth)
	return v
}

func validateScoreStep(fl validator.FieldLevel) bool {
	doubled := fl.Field().Float() * 2
	return math.Abs(doubled-math.Round(doubled)) < 1e-9
}

func validateMonth(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01", fl.Field().String())
	return err == nil
}
