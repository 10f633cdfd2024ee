package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies of the write endpoints
const maxBodyBytes = 16 << 10

var validate *validator.Validate

func init() {
	validate = validator.New()
	// report json field names in messages
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// normalizer is implemented by requests that clean their fields before validation
type normalizer interface {
	Normalize()
}

// bindAndValidate reads a JSON or form body into req, normalizes it, applies
// `default` tags and runs validation. The returned error message is safe to show to users.
func bindAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := bind(r, req); err != nil {
		return err
	}

	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}

	if err := defaults.Set(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	if err := validate.StructCtx(r.Context(), req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New(validationMessage(verrs[0]))
		}
		return errors.New("invalid request")
	}
	return nil
}

func bind(r *http.Request, req interface{}) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json", "":
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return errors.New("invalid JSON body")
		}
		return nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return errors.New("invalid form body")
		}
		bindForm(r, req)
		return nil
	}
	return fmt.Errorf("unsupported content type %q", mediaType)
}

// bindForm copies form values into the string fields of req, matched by json tag
func bindForm(r *http.Request, req interface{}) {
	v := reflect.ValueOf(req).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Kind() != reflect.String {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		if val := r.PostFormValue(name); val != "" {
			v.Field(i).SetString(val)
		}
	}
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
