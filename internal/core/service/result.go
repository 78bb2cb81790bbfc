// Package service implements the hub's identity and resource operations on
// top of the request gateway. Every operation returns a Result; no error
// crosses this boundary.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
)

// Result is the uniform outcome of a hub operation. Data is the zero value
// unless OK; Error is empty when OK.
type Result[T any] struct {
	OK    bool
	Data  T
	Error string
}

func succeed[T any](v T) Result[T] {
	return Result[T]{OK: true, Data: v}
}

func fail[T any](msg string) Result[T] {
	return Result[T]{Error: msg}
}

// messageFunc turns a failure body into the message shown to the caller.
type messageFunc func(body []byte, fallback string) string

// errorOrMessage resolves `error`, then `message`, then fallback.
func errorOrMessage(body []byte, fallback string) string {
	var b struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if json.Unmarshal(body, &b) != nil {
		return fallback
	}
	if s := nonEmptyString(b.Error); s != "" {
		return s
	}
	if s := nonEmptyString(b.Message); s != "" {
		return s
	}
	return fallback
}

// errorList resolves `error` as a string or as a list of {message} entries
// joined by ", ", then fallback.
func errorList(body []byte, fallback string) string {
	var b struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &b) != nil {
		return fallback
	}
	if s := nonEmptyString(b.Error); s != "" {
		return s
	}

	var list []struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b.Error, &list) == nil && len(list) > 0 {
		msgs := make([]string, 0, len(list))
		for _, e := range list {
			msgs = append(msgs, e.Message)
		}
		return strings.Join(msgs, ", ")
	}
	return fallback
}

func nonEmptyString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// operation describes one hub call.
type operation struct {
	method   string
	path     string
	fallback string
	message  messageFunc
	opts     []ports.RequestOption
}

// decoder extracts the data record from a successful response.
type decoder[T any] func(*ports.Response) (T, error)

// field decodes the JSON member name of the body.
func field[T any](name string) decoder[T] {
	return func(resp *ports.Response) (T, error) {
		var zero T
		var members map[string]json.RawMessage
		if err := resp.Decode(&members); err != nil {
			return zero, err
		}
		raw, ok := members[name]
		if !ok {
			return zero, errors.New("missing " + name)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return zero, err
		}
		return v, nil
	}
}

// whole decodes the entire body.
func whole[T any](resp *ports.Response) (T, error) {
	var v T
	err := resp.Decode(&v)
	return v, err
}

// ignore discards the body.
func ignore(*ports.Response) (struct{}, error) {
	return struct{}{}, nil
}

func call[T any](ctx context.Context, r ports.Requester, log zerolog.Logger, op operation, body any, decode decoder[T]) Result[T] {
	resp, err := r.Request(ctx, op.method, op.path, body, op.opts...)
	if err != nil {
		log.Warn().Err(err).Str("method", op.method).Str("path", op.path).Msg("hub call failed")
		if errors.Is(err, domain.ErrTransport) {
			return fail[T](domain.NetworkErrorMessage)
		}
		return fail[T](op.fallback)
	}

	if !resp.OK() {
		msg := op.message(resp.Body, op.fallback)
		log.Debug().Str("path", op.path).Int("status", resp.StatusCode).Str("error", msg).Msg("hub call rejected")
		return fail[T](msg)
	}

	v, err := decode(resp)
	if err != nil {
		log.Warn().Err(err).Str("path", op.path).Msg("unreadable hub response")
		return fail[T](op.fallback)
	}
	return succeed(v)
}
