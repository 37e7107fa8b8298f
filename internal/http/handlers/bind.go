package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes and validates the request body. On failure it answers 422
// with one message per offending field, same shape as domain validation.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondUnprocessable(ctx, bindErrorMessages(err, out))

		return false
	}

	return true
}

func bindErrorMessages(err error, out interface{}) []string {
	rootType := baseStructType(out)

	// validator errors from binding tags
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		msgs := make([]string, 0, len(validatorError))

		for _, fieldError := range validatorError {
			field := humanizeField(jsonFieldName(rootType, fieldError.StructField()))
			msgs = append(msgs, field+" "+ruleMessage(fieldError.Tag(), fieldError.Param()))
		}

		return msgs
	}

	// type mismatches get a field-level message too
	var typeError *json.UnmarshalTypeError

	if errors.As(err, &typeError) {
		field := strings.TrimSpace(typeError.Field)

		if field == "" {
			field = "body"
		}

		return []string{fmt.Sprintf("%s must be of type %s.", humanizeField(field), typeError.Type.String())}
	}

	// empty or malformed body
	return []string{"Request body must be valid JSON."}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func jsonFieldName(rootType reflect.Type, structField string) string {
	if rootType == nil {
		return structField
	}

	sf, ok := rootType.FieldByName(structField)

	if !ok {
		return structField
	}

	tag := sf.Tag.Get("json")

	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")

	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

// "minutes_to_complete" -> "Minutes to complete"
func humanizeField(jsonName string) string {
	words := strings.ReplaceAll(jsonName, "_", " ")

	if words == "" {
		return words
	}

	return strings.ToUpper(words[:1]) + words[1:]
}

func ruleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "must be present."
	case "min":
		return "must be at least " + param + "."
	case "max":
		return "must be at most " + param + "."
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s).", rule, param)
		}
		return "failed " + rule + " validation."
	}
}
