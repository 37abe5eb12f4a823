package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ai-fitness-coach/internal/apperr"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// fail reports err to the client. Validation failures carry their reason;
// every server-side failure is logged and answered with the generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, generic string) {
	kind := apperr.KindOf(err)
	status := apperr.Status(kind)

	switch status {
	case http.StatusBadRequest:
		writeError(w, status, apperr.Message(err))
	case http.StatusUnauthorized:
		writeError(w, status, "Unauthorized")
	case http.StatusNotFound:
		writeError(w, status, apperr.Message(err))
	default:
		s.logger.Error("request failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		writeError(w, status, generic)
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst. An empty body leaves dst untouched when
// allowEmpty is set.
func decode(r *http.Request, dst any, allowEmpty bool) error {
	const op = "server.decode"

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Errorf(apperr.KindValidation, op, "invalid request body")
	}
	return nil
}

// bind decodes a JSON body into the struct dst and validates it.
func (s *Server) bind(r *http.Request, dst any) error {
	if err := decode(r, dst, false); err != nil {
		return err
	}
	return s.check(dst)
}

func (s *Server) check(v any) error {
	const op = "server.validate"

	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.E(apperr.KindValidation, op, fieldError(verrs[0]))
	}
	return apperr.E(apperr.KindValidation, op, err)
}

func fieldError(fe validator.FieldError) error {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "min", "gte":
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Errorf("%s must be greater than %s", field, fe.Param())
	case "max", "lte":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Errorf(apperr.KindValidation, "server.pathID", "invalid id")
	}
	return id, nil
}

func queryLimit(r *http.Request, fallback, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return fallback
	}
	return min(n, max)
}
