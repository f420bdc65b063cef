package ordering

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// inputValidator returns the shared validator with decimal support registered
func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		validate.RegisterStructValidation(discountStructLevel, DiscountInput{})
	})
	return validate
}

// DiscountInput is the boundary shape of an order discount change
type DiscountInput struct {
	Type  DiscountType    `validate:"required,oneof=amount percent"`
	Value decimal.Decimal `validate:"gte=0"`
}

// FeeInput is the boundary shape of a fee change
type FeeInput struct {
	ServiceCharge decimal.Decimal `validate:"gte=0"`
	DeliveryFee   decimal.Decimal `validate:"gte=0"`
	PackagingFee  decimal.Decimal `validate:"gte=0"`
}

func discountStructLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(DiscountInput)
	if in.Type == DiscountTypePercent && in.Value.GreaterThan(maxPercent) {
		sl.ReportError(in.Value, "Value", "Value", "lte", "100")
	}
}

// ValidateDiscountInput rejects negative discounts and percentages above 100
func ValidateDiscountInput(in DiscountInput) error {
	if err := inputValidator().Struct(in); err != nil {
		return toDomainError(ErrInvalidDiscount.Code, err)
	}
	return nil
}

// ValidateFeeInput rejects negative fees
func ValidateFeeInput(in FeeInput) error {
	if err := inputValidator().Struct(in); err != nil {
		return toDomainError(ErrInvalidFee.Code, err)
	}
	return nil
}

func toDomainError(code string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.NewDomainError(code, err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s %s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return shared.NewDomainError(code, strings.TrimSpace(strings.Join(msgs, "; ")))
}
