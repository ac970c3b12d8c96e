package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// bindingErrorMessage 把绑定验证错误转成对外的提示
// 只返回第一个错误字段。
func bindingErrorMessage(err error) string {
	if validationErr, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErr {
			switch fieldErr.Tag() {
			case "required":
				return fmt.Sprintf("Field %s is required", fieldErr.Field())
			case "min":
				return fmt.Sprintf("Field %s is below the minimum of %s", fieldErr.Field(), fieldErr.Param())
			case "max":
				return fmt.Sprintf("Field %s exceeds the maximum of %s", fieldErr.Field(), fieldErr.Param())
			default:
				return fmt.Sprintf("Field %s failed validation", fieldErr.Field())
			}
		}
	}
	return "Invalid request body"
}
