package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/majidsadri/mireva/internal/email"
	"github.com/majidsadri/mireva/internal/food"
	"github.com/majidsadri/mireva/internal/handler"
	"github.com/majidsadri/mireva/internal/middleware"
	"github.com/majidsadri/mireva/internal/store"
	ws "github.com/majidsadri/mireva/internal/websocket"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// Config carries the runtime options the server needs beyond the database.
type Config struct {
	Matcher       *food.Matcher
	CORSOrigins   []string
	SuggestionTTL time.Duration
	SessionTTL    time.Duration

	// Mailer sends join request emails; nil disables them.
	Mailer *email.Client
}

type Server struct {
	hub          *ws.Hub
	authH        *handler.AuthHandler
	pantryH      *handler.PantryHandler
	membershipH  *handler.MembershipHandler
	shoppingH    *handler.ShoppingHandler
	recipeH      *handler.RecipeHandler
	foodH        *handler.FoodHandler
	sessionStore *store.SessionStore
	pantryStore  *store.PantryStore
	rateLimiter  *middleware.RateLimiter
	corsOrigins  []string
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	matcher := cfg.Matcher
	if matcher == nil {
		matcher = food.Default()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	pantryStore := store.NewPantryStore(db)
	sessionStore := store.NewSessionStore(db).WithTTL(cfg.SessionTTL)
	joinStore := store.NewJoinRequestStore(db)
	pantryItemStore := store.NewPantryItemStore(db)
	shoppingStore := store.NewShoppingStore(db)
	recipeStore := store.NewRecipeStore(db)
	suggestionCache := store.NewSuggestionCache(db)

	membershipH := handler.NewMembershipHandler(pantryStore, joinStore, sessionStore, userStore, hub, logger.With("component", "membership"))
	if cfg.Mailer != nil {
		membershipH.WithNotifier(cfg.Mailer)
	}

	return &Server{
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, pantryStore, sessionStore, suggestionCache, logger.With("component", "auth")),
		pantryH:      handler.NewPantryHandler(pantryItemStore, matcher, hub, logger.With("component", "pantry")),
		membershipH:  membershipH,
		shoppingH:    handler.NewShoppingHandler(shoppingStore, pantryItemStore, recipeStore, userStore, suggestionCache, matcher, cfg.SuggestionTTL, hub, logger.With("component", "shopping")),
		recipeH:      handler.NewRecipeHandler(recipeStore, suggestionCache, logger.With("component", "recipe")),
		foodH:        handler.NewFoodHandler(matcher),
		sessionStore: sessionStore,
		pantryStore:  pantryStore,
		rateLimiter:  middleware.NewRateLimiter(),
		corsOrigins:  origins,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// AuthHandler exposes the account handler so tests can lower the bcrypt cost.
func (s *Server) AuthHandler() *handler.AuthHandler {
	return s.authH
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /api/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/signin", s.rateLimitedHandler(s.authH.Signin))
	outerMux.HandleFunc("GET /api/food/lookup", s.foodH.Lookup)
	outerMux.HandleFunc("GET /api/food/categories", s.foodH.Categories)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.pantryStore)
	outerMux.Handle("/api/", authMiddleware(protectedMux))
	outerMux.Handle("GET /ws", middleware.QueryToken(authMiddleware(ws.HandleWebSocket(s.hub, s.corsOrigins, s.logger.With("component", "websocket")))))

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	})

	return middleware.RequestLogger(s.logger.With("component", "http"))(c.Handler(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByIP, authRateLimit, authRateWindow)
	return rl(h).ServeHTTP
}

func ownerOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireOwner(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account
	mux.HandleFunc("POST /api/signout", s.authH.Signout)
	mux.HandleFunc("GET /api/profile", s.authH.GetProfile)
	mux.HandleFunc("PUT /api/profile", s.authH.UpdateProfile)

	// Pantry inventory
	mux.HandleFunc("GET /api/pantry/items", s.pantryH.List)
	mux.HandleFunc("POST /api/pantry/items", s.pantryH.Create)
	mux.HandleFunc("GET /api/pantry/items/grouped", s.pantryH.Grouped)
	mux.HandleFunc("PUT /api/pantry/items/{id}", s.pantryH.Update)
	mux.HandleFunc("DELETE /api/pantry/items/{id}", s.pantryH.Delete)

	// Sharing
	mux.HandleFunc("GET /api/pantries", s.membershipH.ListPantries)
	mux.HandleFunc("POST /api/pantries/{id}/join", s.membershipH.RequestJoin)
	mux.HandleFunc("POST /api/pantries/{id}/switch", s.membershipH.Switch)
	mux.HandleFunc("GET /api/pantry/members", s.membershipH.ListMembers)
	mux.Handle("DELETE /api/pantry/members/{user_id}", ownerOnly(s.membershipH.RemoveMember))
	mux.Handle("GET /api/pantry/requests", ownerOnly(s.membershipH.ListRequests))
	mux.Handle("POST /api/pantry/requests/{id}/approve", ownerOnly(s.membershipH.ApproveRequest))
	mux.Handle("POST /api/pantry/requests/{id}/reject", ownerOnly(s.membershipH.RejectRequest))

	// Shopping list
	mux.HandleFunc("GET /api/shopping/items", s.shoppingH.List)
	mux.HandleFunc("POST /api/shopping/items", s.shoppingH.Create)
	mux.HandleFunc("DELETE /api/shopping/items/{id}", s.shoppingH.Delete)
	mux.HandleFunc("POST /api/shopping/items/{id}/check", s.shoppingH.ToggleChecked)
	mux.HandleFunc("POST /api/shopping/items/{id}/purchase", s.shoppingH.Purchase)
	mux.HandleFunc("POST /api/shopping/clear-checked", s.shoppingH.ClearChecked)
	mux.HandleFunc("GET /api/shopping/suggestions", s.shoppingH.Suggestions)

	// Saved recipes
	mux.HandleFunc("GET /api/saved-recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/saved-recipes", s.recipeH.Create)
	mux.HandleFunc("DELETE /api/saved-recipes/{id}", s.recipeH.Delete)
}
