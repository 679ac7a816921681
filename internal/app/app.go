package app

import (
	"accounts/internal/app/deps"
	"accounts/internal/app/services"
	activateaccount "accounts/internal/http/handlers/users/activate_account"
	listactiveaccounts "accounts/internal/http/handlers/users/list_active_accounts"
	registeraccount "accounts/internal/http/handlers/users/register_account"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func NewRouter(s *services.Services, allowedOrigins []string, isTestMode bool) http.Handler {
	usersRouter := chi.NewRouter()
	usersRouter.Method(http.MethodPost, "/", registeraccount.New(s.RegisterAccount, isTestMode))
	usersRouter.Method(http.MethodGet, "/", listactiveaccounts.New(s.ListActiveAccounts))
	usersRouter.Method(http.MethodPost, "/token/{token}", activateaccount.New(s.ActivateAccount))

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{registeraccount.TEST_ACTIVATION_TOKEN_HEADER},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/api/1.0/users", usersRouter)
	return router
}

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler: NewRouter(s, deps.Config.AllowedOrigins, deps.Config.IsTestMode),
		Addr:    address,
	}
}
