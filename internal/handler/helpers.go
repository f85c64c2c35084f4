package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"tradenet/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.New("invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindGuarded is bindAndValidate for payloads with protected fields: the raw
// body is scanned first and any key in forbidden fails with an
// ImmutableFieldError before binding. This is how debt/level/id stay out of
// the general write path regardless of the attempted value. The returned
// key set lets callers distinguish absent fields from explicit nulls.
func bindGuarded(c *gin.Context, req interface{}, forbidden ...string) (map[string]json.RawMessage, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, apperr.New("cannot read request body"))
		return nil, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		c.JSON(http.StatusBadRequest, apperr.New("invalid JSON: "+err.Error()))
		return nil, false
	}
	for _, field := range forbidden {
		if _, present := raw[field]; present {
			err := apperr.ImmutableField(field)
			c.JSON(apperr.Status(err), apperr.Envelope(err))
			return nil, false
		}
	}

	if err := json.Unmarshal(body, req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.New("invalid JSON: "+err.Error()))
		return nil, false
	}
	if !validateStruct(c, req) {
		return nil, false
	}
	return raw, true
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		verr := apperr.ValidationFields(fields)
		c.JSON(apperr.Status(verr), apperr.Envelope(verr))
		return false
	}
	return true
}

// checkQueryKeys rejects query parameters outside the allow-list so a typo
// like ?county=DE fails loudly instead of silently returning everything.
func checkQueryKeys(c *gin.Context, allowed map[string]struct{}) bool {
	for key := range c.Request.URL.Query() {
		if _, ok := allowed[key]; !ok {
			err := apperr.InvalidQuery("unknown query parameter " + strconv.Quote(key))
			c.JSON(apperr.Status(err), apperr.Envelope(err))
			return false
		}
	}
	return true
}

// fail hands err to the error-handler middleware, which maps the domain
// error kind to a status code and the canonical envelope.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
