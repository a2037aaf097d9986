package router

import (
	"context"
	"fmt"
	"log"

	"github.com/anonto42/social-connect/backend/internal/handlers"
	"github.com/anonto42/social-connect/backend/internal/middleware"
	"github.com/anonto42/social-connect/backend/internal/repositories"
	"github.com/anonto42/social-connect/backend/internal/services"
	"github.com/anonto42/social-connect/backend/internal/validators"
	"github.com/anonto42/social-connect/backend/pkg/config"
	"github.com/labstack/echo/v4"
)

// Repositories are the stores selected by STORAGE_BACKEND.
type Repositories struct {
	Users repositories.UserRepository
	Posts repositories.PostRepository
}

// NewRepositories builds the repositories for backend on top of the open
// connections in db and prepares their indexes or tables.
func NewRepositories(ctx context.Context, backend string, db *config.DB) (*Repositories, error) {
	switch backend {
	case config.BackendMemory:
		return &Repositories{
			Users: repositories.NewMemoryUserRepository(),
			Posts: repositories.NewMemoryPostRepository(),
		}, nil

	case config.BackendHybrid:
		userRepo := repositories.NewPostgresUserRepository(db.Postgres)
		if err := userRepo.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to auto migrate users: %w", err)
		}
		log.Println("PostgreSQL auto-migrations completed.")

		postRepo := repositories.NewMongoPostRepository(db.Mongo)
		if err := postRepo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return &Repositories{Users: userRepo, Posts: postRepo}, nil

	case config.BackendMongo:
		userRepo := repositories.NewMongoUserRepository(db.Mongo)
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		postRepo := repositories.NewMongoPostRepository(db.Mongo)
		if err := postRepo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		log.Println("MongoDB indexes ensured.")
		return &Repositories{Users: userRepo, Posts: postRepo}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}

// Dependencies are everything SetupRoutes wires into the handlers.
type Dependencies struct {
	Repos    *Repositories
	Hasher   services.PasswordHasher
	Tokens   TokenService
	Firebase services.IDTokenVerifier // nil disables Firebase login
}

// TokenService issues and verifies identity tokens.
type TokenService interface {
	services.TokenIssuer
	middleware.TokenVerifier
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	if e.Validator == nil {
		e.Validator = validators.NewValidator()
	}

	e.GET("/health", handlers.HealthCheck)

	userService := services.NewUserService(deps.Repos.Users, deps.Hasher, deps.Tokens)
	if deps.Firebase != nil {
		userService.WithFirebase(deps.Firebase)
	}
	postService := services.NewPostService(deps.Repos.Posts, deps.Repos.Users)

	requireAuth := middleware.JWTAuthMiddleware(deps.Tokens)
	api := e.Group("/api")

	// --- Unprotected routes for registration and login ---
	authHandler := handlers.NewAuthHandler(userService)
	authHandler.RegisterUserRoutes(api.Group("/users"))
	authHandler.RegisterAuthRoutes(api.Group("/auth"), requireAuth)
	log.Println("Auth routes configured.")

	// --- Protected routes ---
	posts := api.Group("/posts", requireAuth)

	postHandler := handlers.NewPostHandler(postService)
	postHandler.RegisterPostRoutes(posts)
	log.Println("Post routes configured.")

	likeHandler := handlers.NewLikeHandler(postService)
	likeHandler.RegisterLikeRoutes(posts)
	log.Println("Like routes configured.")

	commentHandler := handlers.NewCommentHandler(postService)
	commentHandler.RegisterCommentRoutes(posts)
	log.Println("Comment routes configured.")

	log.Println("All routes configured.")
}
