package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"go.uber.org/zap"
)

type envelope map[string]any

type controller struct {
	log *zap.Logger
}

func (c *controller) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (c *controller) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := errorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	if err := c.writeJSON(w, status, resp, nil); err != nil {
		c.log.Error("cannot write error response", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (c *controller) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	c.errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

func (c *controller) NotFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	c.errorResponse(w, r, http.StatusNotFound, "not_found", err.Error())
}

// CanceledResponse. the request context ended before the query finished, the client is usually gone.
func (c *controller) CanceledResponse(w http.ResponseWriter, r *http.Request, err error) {
	c.log.Debug("request canceled", zap.String("path", r.URL.Path), zap.Error(err))
	c.errorResponse(w, r, http.StatusServiceUnavailable, "request_canceled", err.Error())
}

func (c *controller) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	c.log.Error("internal error", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	c.errorResponse(w, r, http.StatusInternalServerError, "internal_server_error", util.MessageInternalServerError)
}

// getStatusCode maps the error code carried by err onto an http status.
func (c *controller) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	switch util.ErrorCode(err) {
	case util.ErrBadParamInput:
		c.BadRequestResponse(w, r, err)
	case util.ErrNotFound:
		c.NotFoundResponse(w, r, err)
	case util.ErrCanceled:
		c.CanceledResponse(w, r, err)
	default:
		c.ServerErrorResponse(w, r, err)
	}
}

func translateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
