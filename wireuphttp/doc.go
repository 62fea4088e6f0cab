/*
Package wireuphttp wires a [wireup.Container] into an HTTP middleware
pipeline.

The request-scope step opens a child scope for every request, makes the
*http.Request resolvable inside it, carries the scope on the request
context, and closes the scope when the request finishes, on every exit
path. Middleware components registered with the container can be installed
as pipeline stages that resolve themselves from the request scope on each
invocation.

Example:

	package main

	import (
		"net/http"

		"github.com/tkrause/wireup"
		"github.com/tkrause/wireup/wireupctx"
		"github.com/tkrause/wireup/wireuphttp"
	)

	func main() {
		c, err := wireup.NewContainer(
			wireup.WithService(NewService),
			wireup.WithService(NewRequestLog, wireup.Scoped),
			// Installed as a pipeline stage by RegisterAllMiddleware
			wireup.WithService(NewAuthMiddleware, wireup.As[AuthMiddleware]()),
		)
		if err != nil {
			panic(err)
		}

		b, err := wireuphttp.RegisterAllMiddleware(wireuphttp.NewBuilder(), c)
		if err != nil {
			panic(err)
		}

		handler := b.Build(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			svc := wireupctx.MustResolve[*RequestLog](r.Context())
			svc.HandleRequest(w, r)
		}))

		http.ListenAndServe(":8080", handler)
	}
*/
package wireuphttp
