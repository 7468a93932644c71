// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"yamdb/internal/models"
	"yamdb/internal/slug"
)

// validate is shared by all handlers. validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names so errors key on what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return models.ValidUsername(fl.Field().String())
	})
	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})

	v.RegisterAlias("score", fmt.Sprintf("min=%d,max=%d", models.MinScore, models.MaxScore))
	v.RegisterAlias("reviewtext", fmt.Sprintf("notblank,max=%d", models.MaxReviewTextLen))
	v.RegisterAlias("commenttext", fmt.Sprintf("notblank,max=%d", models.MaxCommentTextLen))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// validateStruct checks s and returns a 400 keyed by field, or nil.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string][]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = append(fields[e.Field()], friendlyMessage(e))
	}
	return &APIError{Status: http.StatusBadRequest, Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.ActualTag() {
	case "required":
		return "This field is required."
	case "notblank":
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "username":
		if e.Value() == models.MeUsername {
			return fmt.Sprintf("Username %q is reserved.", models.MeUsername)
		}
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "role":
		return fmt.Sprintf("%q is not a valid choice.", e.Value())
	default:
		return "This value is invalid."
	}
}
