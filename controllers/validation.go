package controllers

import (
	"errors"
	"sync"

	"github.com/Kariqs/tableside-api/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the enum rules used in request binding tags to
// gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
			return models.OrderStatus(fl.Field().String()).Valid()
		})
		v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
			return models.PaymentMethod(fl.Field().String()).Valid()
		})
	})
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fieldMessage(fe)
		}
		return out
	}
	out["body"] = err.Error()
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "orderstatus":
		return "must be one of: pending, accepted, preparing, completed, paid, cancelled"
	case "paymentmethod":
		return "must be one of: COD, ESEWA, KHALTI"
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}
