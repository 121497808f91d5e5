package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrPlayerLinkRequired   = errors.New("player accounts must be linked to a roster player")
)

// Claims is the authenticated caller extracted from a token.
type Claims struct {
	UserID   primitive.ObjectID
	Role     domain.Role
	PlayerID string
}

// IsCoach reports whether the caller may manage team data.
func (c Claims) IsCoach() bool { return c.Role == domain.RoleCoach }

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.Role, playerID string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	ParseToken(token string) (*Claims, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	rosterRepo    repository.RosterRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, rosterRepo repository.RosterRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 12 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		rosterRepo:    rosterRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates an account. Player accounts must name an existing roster player.
func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role, playerID string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrInvalid)
	}
	if role != domain.RoleCoach && role != domain.RolePlayer {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalid, role)
	}

	user := &domain.User{Name: name, Email: email, Role: role}
	if role == domain.RolePlayer {
		pid, err := primitive.ObjectIDFromHex(playerID)
		if err != nil {
			return nil, ErrPlayerLinkRequired
		}
		if _, err := s.rosterRepo.GetByID(ctx, pid); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPlayerLinkRequired
			}
			return nil, err
		}
		user.PlayerID = &pid
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}
	user.PasswordHash = string(hashedPassword)

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// unique index on email closes the check-then-create race
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID   string      `json:"uid"`
	Role     domain.Role `json:"role"`
	PlayerID string      `json:"pid,omitempty"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "team-ops",
		},
	}
	if user.PlayerID != nil {
		claims.PlayerID = user.PlayerID.Hex()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken validates an HS256 token and returns its claims.
func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: uid, Role: claims.Role, PlayerID: claims.PlayerID}, nil
}
