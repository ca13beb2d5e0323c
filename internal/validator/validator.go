// Package validator provides custom validation functions for Gin's binding
// engine and the CLI flag structs.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"assettracker/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerAll(v)
	}
}

// New returns a standalone validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	registerAll(v)
	return v
}

func registerAll(v *validator.Validate) {
	_ = v.RegisterValidation("isodate", validateISODate)
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("market", validateMarket)
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	_, err := models.ParseCurrency(fl.Field().String())
	return err == nil
}

func validateMarket(fl validator.FieldLevel) bool {
	_, err := models.ParseMarket(fl.Field().String())
	return err == nil
}
