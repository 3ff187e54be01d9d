package main

import (
	"net/http"

	"github.com/monkeyprint/listings/libs/httpx"
	"github.com/monkeyprint/listings/services/listing-service/internal/handlers"
)

type routeDeps struct {
	listings    *handlers.ListingHandler
	admin       *handlers.AdminHandler
	requireAuth httpx.Middleware
	publicLimit httpx.Middleware
}

func registerRoutes(mux *http.ServeMux, d routeDeps) {
	public := func(h http.HandlerFunc) http.Handler { return httpx.Chain(h, d.publicLimit) }
	admin := func(h http.HandlerFunc) http.Handler { return httpx.Chain(h, d.requireAuth) }

	mux.Handle("GET /api/v1/listings", public(d.listings.Search))
	mux.Handle("GET /api/v1/listings/{id}", public(d.listings.Get))
	mux.Handle("POST /api/v1/listings", admin(d.listings.Create))
	mux.Handle("PUT /api/v1/listings/{id}/window", admin(d.listings.UpdateWindow))
	mux.Handle("DELETE /api/v1/listings/{id}", admin(d.listings.Delete))

	mux.Handle("GET /api/v1/admin/dashboard", admin(d.admin.Dashboard))
	mux.Handle("POST /api/v1/admin/maintenance/sweep", admin(d.admin.Sweep))
}
