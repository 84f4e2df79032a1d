package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marcelojr/daily-doodle/internal/app/doodle"
)

var validate = novoValidador()

func novoValidador() *validator.Validate {
	v := validator.New()
	// Erros citam o nome do campo no JSON, não o do struct.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validarPayload devolve ErrMissingField com o primeiro campo obrigatório ausente.
func validarPayload(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		return fmt.Errorf("%w: %s", doodle.ErrMissingField, vErrs[0].Field())
	}
	return err
}
