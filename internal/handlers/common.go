package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/nimasrn/wa-messenger/internal/csvimport"
	"github.com/nimasrn/wa-messenger/internal/services"
	"github.com/nimasrn/wa-messenger/internal/whatsapp"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
	"github.com/nimasrn/wa-messenger/pkg/logger"
)

var errInvalidJSON = errors.New("invalid JSON body")

// payload is merged into the success envelope.
type payload map[string]any

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("[handlers] failed to encode response", "error", err)
		status = xhttp.StatusInternalServerError
		b = []byte(`{"success":false,"message":"failed to encode response"}`)
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeOK(ctx *xhttp.RequestCtx, status int, p payload) {
	body := make(map[string]any, len(p)+1)
	for k, v := range p {
		body[k] = v
	}
	body["success"] = true
	writeJSON(ctx, status, body)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]any{"success": false, "message": msg})
}

// writeServiceError maps err onto the HTTP status of its class.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, errInvalidJSON),
		services.IsValidation(err),
		errors.Is(err, whatsapp.ErrInvalidPhone),
		errors.Is(err, whatsapp.ErrAlreadyPaired),
		errors.Is(err, whatsapp.ErrNotReady),
		errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrMissingPhone),
		errors.Is(err, csvimport.ErrMissingFields):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case services.IsNotFound(err):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	default:
		logger.Error("[handlers] request failed", "path", string(ctx.Path()), "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func param(ctx *xhttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

// formDelay parses an optional multipart delay in milliseconds.
// formTokens decodes the optional customTokens form field, a JSON object.
func formTokens(v string) (map[string]any, error) {
	if v == "" {
		return nil, nil
	}
	var tokens map[string]any
	if err := json.Unmarshal([]byte(v), &tokens); err != nil {
		return nil, errInvalidJSON
	}
	return tokens, nil
}

func formDelay(v string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, services.ErrInvalidDelay
	}
	return &ms, nil
}
