package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/middleware"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string parameters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError writes a domain error with its mapped status. Unclassified
// errors are logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	status := apierror.HTTPStatus(err)
	if status == http.StatusInternalServerError || !apierror.IsDomain(err) {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

// actorFrom builds the caller identity from the JWT claims. It writes a 401
// and returns false when the claims are missing or malformed.
func actorFrom(c *gin.Context) (tenant.Actor, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("authentication required"))
		return tenant.Actor{}, false
	}
	userID, err1 := uuid.Parse(claims.UserID)
	companyID, err2 := uuid.Parse(claims.CompanyID)
	if err1 != nil || err2 != nil || !tenant.ValidRole(claims.Role) {
		c.JSON(http.StatusUnauthorized, apierror.New("malformed token claims"))
		return tenant.Actor{}, false
	}
	return tenant.Actor{UserID: userID, Role: claims.Role, CompanyID: companyID}, true
}

// uuidParam parses a path parameter, writing a 400 on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// uuidQuery parses an optional query parameter. Absent means nil.
func uuidQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" must be a UUID"))
		return nil, false
	}
	return &id, true
}

// timeQuery parses an optional RFC3339 query parameter.
func timeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" must be an RFC3339 timestamp"))
		return nil, false
	}
	t = t.UTC()
	return &t, true
}

// intQuery reads an integer query parameter, falling back to def.
func intQuery(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return n
}
