package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"report-service/internal/model"
)

var registerOnce sync.Once

// registerValidators adds the domain tags to gin's binding engine and makes
// field errors report json names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("violence_type", func(fl validator.FieldLevel) bool {
			_, ok := model.ParseViolenceType(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("report_status", func(fl validator.FieldLevel) bool {
			_, ok := model.ParseReportStatus(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
			_, ok := model.ParsePriority(fl.Field().String())
			return ok
		})
	})
}

// bindingError turns a binder failure into a field and a readable message.
func bindingError(err error) (string, string) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field(), fmt.Sprintf("%s wajib diisi", fe.Field())
		case "email":
			return fe.Field(), "alamat email tidak valid"
		case "violence_type":
			return fe.Field(), "jenis kekerasan tidak dikenal"
		case "report_status":
			return fe.Field(), "status tidak dikenal"
		case "priority":
			return fe.Field(), "prioritas tidak dikenal"
		default:
			return fe.Field(), fmt.Sprintf("%s tidak valid", fe.Field())
		}
	}
	return "", "format permintaan tidak valid"
}
