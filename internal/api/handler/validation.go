package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tertcoder/garbage-app-backend/internal/service"
)

// RegisterValidators 配置 gin 默认校验器：
//   - 校验错误中的字段名取 json / form tag，与请求体一致
//   - pickupday: 星期标签（MON..SUN 或全称，大小写不敏感）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}
	v.RegisterTagNameFunc(fieldName)
	return v.RegisterValidation("pickupday", func(fl validator.FieldLevel) bool {
		return service.IsPickupDay(fl.Field().String())
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
