// Package api exposes the commerce store and category cache to the storefront UI over JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"storefront/commerce/internal/category"
	"storefront/commerce/internal/commerce"
	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/service"
	"storefront/commerce/internal/session"
)

type Handler struct {
	store      *commerce.Store
	cache      *category.Cache
	categories *service.CategoryService
	bootstrap  *session.Bootstrap
}

func NewHandler(store *commerce.Store, cache *category.Cache, categories *service.CategoryService, bootstrap *session.Bootstrap) *Handler {
	return &Handler{
		store:      store,
		cache:      cache,
		categories: categories,
		bootstrap:  bootstrap,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Patch("/items/{id}", h.updateQuantity)
		r.Delete("/items/{id}", h.removeItem)
	})

	r.Route("/wishlist", func(r chi.Router) {
		r.Get("/", h.getWishlist)
		r.Post("/", h.addToWishlist)
		r.Get("/{productID}", h.isInWishlist)
		r.Delete("/{productID}", h.removeFromWishlist)
	})

	r.Route("/recently-viewed", func(r chi.Router) {
		r.Get("/", h.getRecentlyViewed)
		r.Post("/", h.addRecentlyViewed)
		r.Delete("/", h.clearRecentlyViewed)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.getProfile)
		r.Put("/", h.setProfile)
		r.Post("/addresses", h.addAddress)
		r.Delete("/addresses/{id}", h.removeAddress)
		r.Put("/default-address", h.setDefaultAddress)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Delete("/", h.clearCategories)
		r.Get("/meta", h.categoryMetadata)
		r.Get("/slug/{slug}", h.categoryBySlug)
		r.Get("/{id}", h.categoryByID)
	})

	r.Post("/session/bootstrap", h.runBootstrap)

	return r
}

type cartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice float64           `json:"total_price"`
}

func newCartResponse(state domain.State) cartResponse {
	return cartResponse{
		Items:      state.Items,
		TotalItems: commerce.TotalItems(state),
		TotalPrice: commerce.TotalPrice(state),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(h.store.Snapshot()))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CartItem
	if !decode(w, r, &item) {
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(h.store.AddItem(r.Context(), item)))
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Quantity == nil {
		writeError(w, http.StatusBadRequest, errors.New("quantity is required"))
		return
	}
	state := h.store.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *body.Quantity)
	writeJSON(w, http.StatusOK, newCartResponse(state))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	state := h.store.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, newCartResponse(state))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(h.store.ClearCart(r.Context())))
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().Wishlist)
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	var entry domain.WishlistEntry
	if !decode(w, r, &entry) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.AddToWishlist(r.Context(), entry).Wishlist)
}

func (h *Handler) isInWishlist(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id":  productID,
		"in_wishlist": h.store.IsInWishlist(productID),
	})
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	state := h.store.RemoveFromWishlist(r.Context(), chi.URLParam(r, "productID"))
	writeJSON(w, http.StatusOK, state.Wishlist)
}

func (h *Handler) getRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().RecentlyViewed)
}

func (h *Handler) addRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	var entry domain.RecentlyViewedEntry
	if !decode(w, r, &entry) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.AddRecentlyViewed(r.Context(), entry).RecentlyViewed)
}

func (h *Handler) clearRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ClearRecentlyViewed(r.Context()).RecentlyViewed)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile := h.store.Snapshot().Profile
	if profile == nil {
		writeError(w, http.StatusNotFound, errors.New("no user profile"))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) setProfile(w http.ResponseWriter, r *http.Request) {
	var profile *domain.UserProfile
	if !decode(w, r, &profile) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.SetUserProfile(r.Context(), profile).Profile)
}

func (h *Handler) addAddress(w http.ResponseWriter, r *http.Request) {
	if h.store.Snapshot().Profile == nil {
		writeError(w, http.StatusConflict, errors.New("no user profile"))
		return
	}

	var address domain.Address
	if !decode(w, r, &address) {
		return
	}
	if address.ID == "" {
		address.ID = uuid.NewString()
	}
	writeJSON(w, http.StatusCreated, h.store.AddAddress(r.Context(), address).Profile)
}

func (h *Handler) removeAddress(w http.ResponseWriter, r *http.Request) {
	state := h.store.RemoveAddress(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, state.Profile)
}

func (h *Handler) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !decode(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.SetDefaultAddress(r.Context(), body.ID).Profile)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) clearCategories(w http.ResponseWriter, r *http.Request) {
	h.cache.ClearCategories(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) categoryMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"metadata":       h.cache.Metadata(),
		"should_refetch": h.cache.ShouldRefetch(),
	})
}

func (h *Handler) categoryBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	cat, ok := h.cache.CategoryBySlug(slug)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("category not found: "+slug))
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *Handler) categoryByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cat, ok := h.cache.CategoryByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("category not found: "+id))
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *Handler) runBootstrap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"profile": h.bootstrap.Run(r.Context()),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
