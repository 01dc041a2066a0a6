package technotes

import (
	"context"
	"net/http"
)

type contextKey int

const (
	bodyKey contextKey = iota
	cookiesKey
)

// fields is a decoded JSON object body.
type fields map[string]any

// bodyFields returns the body decoded by the pipeline. It is empty, never
// nil, for requests without a JSON body.
func bodyFields(r *http.Request) fields {
	if f, ok := r.Context().Value(bodyKey).(fields); ok {
		return f
	}
	return fields{}
}

func withBody(ctx context.Context, f fields) context.Context {
	return context.WithValue(ctx, bodyKey, f)
}

func contextWithCookies(ctx context.Context, cookies map[string]string) context.Context {
	return context.WithValue(ctx, cookiesKey, cookies)
}

// Cookies returns the cookies parsed by the pipeline, by name.
func Cookies(r *http.Request) map[string]string {
	if c, ok := r.Context().Value(cookiesKey).(map[string]string); ok {
		return c
	}
	return map[string]string{}
}

// str returns a present, non-empty string field.
func (f fields) str(key string) (string, bool) {
	s, ok := f[key].(string)
	return s, ok && s != ""
}

// boolean returns a field that is a JSON boolean. Truthy values of other
// types do not count.
func (f fields) boolean(key string) (bool, bool) {
	b, ok := f[key].(bool)
	return b, ok
}

// strings returns a non-empty list of non-empty strings.
func (f fields) strings(key string) ([]string, bool) {
	raw, ok := f[key].([]any)
	if !ok || len(raw) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func (f fields) has(key string) bool {
	_, ok := f[key]
	return ok
}
