package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/content"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const (
	errorInvalidRequest   = "invalid_request"
	errorValidationFailed = "validation_failed"
	errorNotFound         = "not_found"
	errorUnauthorized     = "unauthorized"
	errorStorageFailed    = "storage_failed"

	codeResolveUser = "users.resolve.query_failed"
	codeUnknown     = "unknown"
)

type validationResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields"`
}

// bindJSON decodes the request body into target. Wrong JSON types are reported as field errors
// so the client sees which field to fix; anything else unreadable is an invalid request.
func (h *httpHandler) bindJSON(c *gin.Context, target any) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err == nil {
		err = binding.JSON.BindBody(body, target)
	}
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		c.JSON(http.StatusBadRequest, validationResponse{
			Error: errorValidationFailed,
			Fields: []validation.FieldError{{
				Field:   indexedFieldPath(body, typeErr),
				Message: "must be " + describeJSONType(typeErr.Type.Kind().String()),
			}},
		})
		return false
	}

	if !errors.Is(err, io.EOF) {
		h.logger.Debug("request body rejected", zap.Error(err))
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
	return false
}

// indexedFieldPath turns the dotted path of a type error ("posts.day") into the indexed form
// used by validation failures ("posts[1].day") by finding the offending value in body.
func indexedFieldPath(body []byte, typeErr *json.UnmarshalTypeError) string {
	var document any
	if err := json.Unmarshal(body, &document); err != nil {
		return typeErr.Field
	}
	path, found := locateTypeMismatch(document, strings.Split(typeErr.Field, "."), "", typeErr.Type.Kind())
	if !found {
		return typeErr.Field
	}
	return path
}

func locateTypeMismatch(node any, segments []string, path string, want reflect.Kind) (string, bool) {
	if elements, isList := node.([]any); isList && (len(segments) > 0 || (want != reflect.Slice && want != reflect.Array)) {
		for index, element := range elements {
			if found, ok := locateTypeMismatch(element, segments, fmt.Sprintf("%s[%d]", path, index), want); ok {
				return found, true
			}
		}
		return "", false
	}
	if len(segments) == 0 {
		return path, !acceptsJSONValue(want, node)
	}

	object, isObject := node.(map[string]any)
	if !isObject {
		return "", false
	}
	child, ok := lookupJSONKey(object, segments[0])
	if !ok {
		return "", false
	}
	next := segments[0]
	if path != "" {
		next = path + "." + segments[0]
	}
	return locateTypeMismatch(child, segments[1:], next, want)
}

// lookupJSONKey matches keys the way encoding/json does: exact first, then case-insensitively.
func lookupJSONKey(object map[string]any, key string) (any, bool) {
	if value, ok := object[key]; ok {
		return value, true
	}
	for candidate, value := range object {
		if strings.EqualFold(candidate, key) {
			return value, true
		}
	}
	return nil, false
}

func acceptsJSONValue(want reflect.Kind, value any) bool {
	switch value.(type) {
	case nil:
		return true
	case float64:
		switch want {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64, reflect.Interface:
			return true
		}
	case string:
		return want == reflect.String || want == reflect.Interface
	case bool:
		return want == reflect.Bool || want == reflect.Interface
	case []any:
		return want == reflect.Slice || want == reflect.Array || want == reflect.Interface
	case map[string]any:
		return want == reflect.Struct || want == reflect.Map || want == reflect.Interface
	}
	return false
}

func describeJSONType(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return "a number"
	case "string":
		return "a string"
	case "bool":
		return "a boolean"
	case "slice", "array":
		return "an array"
	case "struct", "map":
		return "an object"
	default:
		return "of type " + kind
	}
}

// respondError maps service failures to the wire error taxonomy. Driver detail never reaches
// the client; it is already logged by the service.
func (h *httpHandler) respondError(c *gin.Context, err error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, validationResponse{Error: errorValidationFailed, Fields: validationErr.Fields})
		return
	}

	code := codeUnknown
	var serviceErr *content.ServiceError
	if errors.As(err, &serviceErr) {
		code = serviceErr.Code()
	} else {
		h.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	if strings.HasSuffix(code, ".missing_user_id") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errorUnauthorized})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": errorStorageFailed, "code": code})
}

func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": errorNotFound})
}
