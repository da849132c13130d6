package httpx

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware listed runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// ChainFunc is Chain for a HandlerFunc.
func ChainFunc(fn http.HandlerFunc, mws ...Middleware) http.Handler {
	return Chain(fn, mws...)
}
