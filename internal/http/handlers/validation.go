package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator. It is safe to
// call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("decklink", func(fl validator.FieldLevel) bool {
			return validDeckLink(fl.Field().String())
		})
	})
}

// validDeckLink accepts anything ParseDeckLink understands plus any absolute http(s) URL,
// so links to other deck builders are stored as given.
func validDeckLink(raw string) bool {
	if services.ParseDeckLink(raw).Error == nil {
		return true
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// bindJSON decodes the body into out and turns binding failures into 400s that name the
// offending field. An empty body validates as an empty object.
func bindJSON(c *gin.Context, out any) error {
	err := c.ShouldBindJSON(out)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(out)
	}
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apierr.BadRequest("Missing " + fe.Field())
		case "decklink":
			return apierr.BadRequest("Unsupported deck link.")
		default:
			return apierr.BadRequest("Invalid " + fe.Field())
		}
	}
	return apierr.New(http.StatusBadRequest, "invalid_request", errors.New("Invalid request body"))
}
