package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkbook/internal/metrics"
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/pkg/apperror"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo      repositories.UserRepository
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewAuthService creates a new AuthService issuing tokens valid for tokenDuration.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenDuration time.Duration) *AuthService {
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
	}
}

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	Username string      `json:"username" validate:"required,min=3,max=100,alphanum"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=client artist"`
}

// RegisterUser creates an account with a bcrypt-hashed password.
// Admin accounts cannot be self-registered.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, apperror.New(apperror.CodeConflict, "username '%s' already taken", username)
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperror.New(apperror.CodeConflict, "email '%s' already registered", email)
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role != models.RoleArtist {
		role = models.RoleClient
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// LoginUser authenticates by username or email and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, identifier, password string) (string, *models.User, error) {
	identifier = strings.TrimSpace(identifier)

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil || user == nil {
		metrics.RecordAuthAttempt(false)
		if err != nil && !apperror.IsNotFound(err) {
			return "", nil, err
		}
		return "", nil, apperror.New(apperror.CodeUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.RecordAuthAttempt(false)
		return "", nil, apperror.New(apperror.CodeUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		metrics.RecordAuthAttempt(false)
		return "", nil, apperror.New(apperror.CodeForbidden, "account is disabled")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	metrics.RecordAuthAttempt(true)
	return token, user, nil
}

// IssueToken signs an HS256 token carrying the user's id, name and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenDuration).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeUnauthorized, err, "invalid token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperror.New(apperror.CodeUnauthorized, "invalid token")
}

// ActorFromClaims converts validated token claims into an Actor.
func ActorFromClaims(claims jwt.MapClaims) (Actor, error) {
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Actor{}, apperror.New(apperror.CodeUnauthorized, "token has no subject")
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = string(models.RoleClient)
	}
	return Actor{UserID: userID, Username: username, Role: models.Role(role)}, nil
}

// GetUser returns the account behind an actor.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
