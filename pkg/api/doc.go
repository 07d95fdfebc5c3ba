// Package api exposes the template store as a read-only HTTP service.
//
// # Overview
//
// The server wraps a [store.Store] and answers queries about generated
// identity templates. It never writes: generation happens through the
// pipeline, and the API only reports what has been persisted.
//
// # Routes
//
//	GET /healthz                  liveness probe
//	GET /api/templates            list template metadata (width, depth, limit filters)
//	GET /api/templates/{hash}     one circuit in the export wire format
//	GET /api/stats                store totals, per-width counts, hardness average
//
// The list endpoint returns store records (canonical hash, hardness score,
// job id, timestamps). The detail endpoint returns the same JSON document
// that batch export writes, so API clients and file consumers parse one
// format.
//
// # Errors
//
// Error responses carry a machine-readable code and a user-facing message:
//
//	{"error": {"code": "TEMPLATE_NOT_FOUND", "message": "no template with hash ..."}}
//
// Codes come from [github.com/fzabel/revsynth/pkg/errors].
//
// # Usage
//
//	srv := api.NewServer(st, logger)
//	http.ListenAndServe(":8080", srv)
package api
