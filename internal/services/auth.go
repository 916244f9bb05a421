package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/EndaleK/Synaptic-sub012/internal/data/repos"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/auth"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/user"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/ctxutil"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
)

// JWTClaims is the access-token claim set. Subject carries the user ID.
type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TokenPair is one issued credential set. The access token is a stateless
// JWT; the refresh token is an opaque value persisted for rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*user.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	tokenRepo  repos.UserTokenRepo
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	tokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:         db,
		log:        baseLog.With("service", "AuthService"),
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtSecret:  jwtSecretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	email := normalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email required")
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("first_name and last_name required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	row := &user.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hash),
		FirstName: firstName,
		LastName:  lastName,
	}

	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return fmt.Errorf("email already registered")
		}
		if _, err := as.userRepo.Create(dbc, []*user.User{row}); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	}); err != nil {
		as.log.Warn("Register transaction error", "error", err)
		return nil, err
	}
	return row, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password required")
	}

	found, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	var pair *TokenPair
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		// Login doubles as the reap point for expired refresh rows.
		if _, err := as.tokenRepo.DeleteExpired(dbc, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to reap expired tokens: %w", err)
		}
		p, err := as.issue(dbc, found.ID)
		if err != nil {
			return err
		}
		pair = p
		return nil
	}); err != nil {
		as.log.Warn("Login transaction error", "error", err)
		return nil, err
	}
	return pair, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh_token required")
	}

	var pair *TokenPair
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := as.tokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return fmt.Errorf("error fetching refresh token: %w", err)
		}
		if row == nil {
			return fmt.Errorf("invalid refresh token")
		}
		now := time.Now().UTC()
		if row.ExpiresAt.Before(now) {
			if _, err := as.tokenRepo.DeleteByUserAndToken(dbc, row.UserID, refreshToken); err != nil {
				return fmt.Errorf("failed to delete expired refresh token: %w", err)
			}
			return fmt.Errorf("refresh token expired")
		}

		accessToken, err := as.generateAccessToken(row.UserID)
		if err != nil {
			return fmt.Errorf("failed to generate access token: %w", err)
		}
		// Rotation: the presented token stops working as soon as this
		// transaction commits.
		rotated := uuid.New().String()
		if err := as.tokenRepo.UpdateRefreshToken(dbc, row.ID, rotated, now.Add(as.refreshTTL)); err != nil {
			return fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		pair = &TokenPair{
			AccessToken:  accessToken,
			RefreshToken: rotated,
			ExpiresIn:    int(as.accessTTL.Seconds()),
		}
		return nil
	}); err != nil {
		as.log.Warn("Refresh transaction error", "error", err)
		return nil, err
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context, refreshToken string) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return fmt.Errorf("refresh_token required")
	}
	// A miss is fine: logging out twice is not an error.
	if _, err := as.tokenRepo.DeleteByUserAndToken(dbctx.Context{Ctx: ctx}, rd.UserID, refreshToken); err != nil {
		as.log.Warn("Logout delete error", "error", err)
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (as *authService) generateAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecret))
}

// issue mints an access token and persists a fresh refresh row.
func (as *authService) issue(dbc dbctx.Context, userID uuid.UUID) (*TokenPair, error) {
	accessToken, err := as.generateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken := uuid.New().String()
	row := &auth.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(as.refreshTTL),
	}
	if _, err := as.tokenRepo.Create(dbc, []*auth.UserToken{row}); err != nil {
		return nil, fmt.Errorf("failed to create user token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(as.accessTTL.Seconds()),
	}, nil
}

// SetContextFromToken verifies the JWT and stamps the caller identity onto
// the context. Verification is stateless; no lookup hits the database.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecret), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}
