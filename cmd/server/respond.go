package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Simplici0/shadequote/internal/apperr"
	"github.com/Simplici0/shadequote/internal/logger"
)

const maxBodyBytes = 1 << 20

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err onto its HTTP status. Internal and dependency failures are
// logged and answered with their generic public message.
func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case apperr.CodeValidation, apperr.CodeUnauthorized, apperr.CodeNotFound:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := errorEnvelope{Error: apiError{Code: string(typed.Code()), Message: msg}}
	if meta.DetailsAllowed {
		payload.Error.Details = typed.Details()
	}

	if logg != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		logg.Error(logg.WithField(ctx, "error_code", string(typed.Code())), "request.error", err)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// decodeJSON reads a JSON body into dest. Unknown fields are ignored because
// clients send display-only values such as their own price estimate.
func decodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "Invalid request body").
			WithDetails(map[string]string{"body": err.Error()})
	}
	return nil
}

func (s *server) decodeAndValidate(r *http.Request, dest any) error {
	if err := decodeJSON(r, dest); err != nil {
		return err
	}
	if err := s.validate.StructCtx(r.Context(), dest); err != nil {
		return apperr.FromValidation(err)
	}
	return nil
}

func invalidParam(name, raw string) error {
	return apperr.New(apperr.CodeValidation, fmt.Sprintf("Missing or invalid %s, received: %q", name, raw))
}
