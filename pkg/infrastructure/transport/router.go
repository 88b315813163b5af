package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"autoshop/pkg/domain/model"
	"autoshop/pkg/domain/service"
)

type Services struct {
	Auth      service.AuthService
	Invoices  service.InvoiceService
	Customers service.CustomerService
	Staff     service.StaffService
	Shop      service.ShopService
	Dashboard service.DashboardService
	// Issuer backs the finalize-invoice function endpoint.
	Issuer model.InvoiceNumberIssuer
}

type Handler struct {
	services Services
}

func Router(services Services) http.Handler {
	h := &Handler{services: services}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(h.authMiddleware)
	authed.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)
	authed.HandleFunc("/me", h.me).Methods(http.MethodGet)
	authed.HandleFunc("/dashboard", h.dashboard).Methods(http.MethodGet)

	authed.HandleFunc("/customers", h.listCustomers).Methods(http.MethodGet)
	authed.HandleFunc("/customers", h.createCustomer).Methods(http.MethodPost)
	authed.HandleFunc("/customers/{id}/vehicles", h.listVehicles).Methods(http.MethodGet)
	authed.HandleFunc("/customers/{id}/vehicles", h.addVehicle).Methods(http.MethodPost)

	authed.HandleFunc("/invoices", h.listInvoices).Methods(http.MethodGet)
	authed.HandleFunc("/invoices", h.createInvoice).Methods(http.MethodPost)
	authed.HandleFunc("/invoices/{id}", h.getInvoice).Methods(http.MethodGet)
	authed.HandleFunc("/invoices/{id}/items", h.addLineItem).Methods(http.MethodPost)
	authed.HandleFunc("/invoices/{id}/finalize", h.finalizeInvoice).Methods(http.MethodPost)

	authed.HandleFunc("/staff", h.listStaff).Methods(http.MethodGet)
	authed.HandleFunc("/staff", h.createStaff).Methods(http.MethodPost)
	authed.HandleFunc("/staff/{id}/disable", h.disableStaff).Methods(http.MethodPost)

	authed.HandleFunc("/shop", h.getShop).Methods(http.MethodGet)
	authed.HandleFunc("/shop", h.updateShop).Methods(http.MethodPut)

	functions := r.PathPrefix("/functions/v1").Subrouter()
	functions.Use(h.authMiddleware)
	functions.HandleFunc("/finalize-invoice", h.finalizeInvoiceFunction).Methods(http.MethodPost)

	return logMiddleware(r)
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) model.Session {
	session, _ := ctx.Value(sessionKey{}).(model.Session)
	return session
}

// authMiddleware resolves the bearer token into the session every handler below works with.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		session, err := h.services.Auth.ResolveSession(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
