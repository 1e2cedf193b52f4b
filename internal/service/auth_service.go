package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"buzzhire/internal/config"
	"buzzhire/internal/dto"
	"buzzhire/internal/infra"
	"buzzhire/internal/model"
	"buzzhire/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityVerifier verifies a federated ID token and extracts the identity
// claims. Implemented by infra.GoogleVerifier; faked in tests.
type IdentityVerifier interface {
	Verify(idToken string) (*infra.GoogleClaims, error)
}

// RefreshTokenStore tracks outstanding refresh tokens so they can be
// rotated and revoked. Implemented by infra.RefreshTokenStore.
type RefreshTokenStore interface {
	Save(ctx context.Context, tokenID, fingerprint string, ttl time.Duration) error
	Consume(ctx context.Context, tokenID string) (string, error)
}

type AuthService interface {
	// GoogleLogin verifies a Google ID token, enforces the email
	// allow-list, finds-or-creates the local user, and issues a token pair.
	GoogleLogin(ctx context.Context, idToken string) (*dto.LoginResponse, error)
	// Refresh rotates a refresh token. Tokens are single-use: a second
	// refresh with the same token fails.
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	users    repository.UserRepository
	verifier IdentityVerifier
	tokens   RefreshTokenStore
	cfg      *config.Config
}

func NewAuthService(users repository.UserRepository, verifier IdentityVerifier, tokens RefreshTokenStore, cfg *config.Config) AuthService {
	return &authService{users: users, verifier: verifier, tokens: tokens, cfg: cfg}
}

func (s *authService) GoogleLogin(ctx context.Context, idToken string) (*dto.LoginResponse, error) {
	claims, err := s.verifier.Verify(idToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !s.cfg.EmailAllowed(claims.Email) {
		return nil, ErrNotAllowed
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if user == nil {
		user = &model.User{
			Email:       claims.Email,
			Name:        claims.Name,
			LastLoginAt: now,
			Active:      true,
		}
		if claims.Picture != "" {
			user.Picture = &claims.Picture
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else {
		if !user.Active {
			return nil, ErrNotAllowed
		}
		user.Name = claims.Name
		if claims.Picture != "" {
			user.Picture = &claims.Picture
		}
		user.LastLoginAt = now
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != "refresh" {
		return nil, ErrInvalidToken
	}
	tokenID, _ := claims["jti"].(string)
	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil || tokenID == "" {
		return nil, ErrInvalidToken
	}

	// Single-use check: consume the stored fingerprint and compare.
	fingerprint, err := s.tokens.Consume(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if fingerprint == "" || fingerprint != fingerprintOf(refreshToken) {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil || !user.Active {
		return nil, ErrInvalidToken
	}

	return s.issueTokens(ctx, user)
}

// ── Token issuance ────────────────────────────────────────────────────────────

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*dto.LoginResponse, error) {
	accessTTL := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	refreshTTL := time.Duration(s.cfg.JWTRefreshHours) * time.Hour

	access, err := s.signToken(user, "access", uuid.NewString(), accessTTL)
	if err != nil {
		return nil, err
	}
	refreshID := uuid.NewString()
	refresh, err := s.signToken(user, "refresh", refreshID, refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, refreshID, fingerprintOf(refresh), refreshTTL); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User: dto.UserResponse{
			ID:      user.ID.String(),
			Email:   user.Email,
			Name:    user.Name,
			Picture: user.Picture,
		},
	}, nil
}

func (s *authService) signToken(user *model.User, typ, tokenID string, ttl time.Duration) (string, error) {
	picture := ""
	if user.Picture != nil {
		picture = *user.Picture
	}
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"name":    user.Name,
		"picture": picture,
		"typ":     typ,
		"jti":     tokenID,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// fingerprintOf hashes a token for at-rest storage. SHA-256 rather than
// bcrypt: tokens are high-entropy JWTs, and bcrypt truncates at 72 bytes.
func fingerprintOf(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
