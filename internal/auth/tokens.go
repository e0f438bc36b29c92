package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taskforge/taskforge/internal/database/models"
	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer creates and resolves opaque bearer tokens. The plaintext is
// 32 bytes of entropy, base64url-encoded; only its SHA-256 digest is stored,
// so a lookup is a single indexed query and a storage compromise never
// yields usable tokens.
type TokenIssuer struct {
	db  *gorm.DB
	ttl time.Duration // zero means tokens never expire
}

func NewTokenIssuer(db *gorm.DB, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{db: db, ttl: ttl}
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Issue creates a token for the user and returns its plaintext exactly once.
// db may be a transaction handle so issuance can share a transactional
// boundary with user creation; pass nil to use the issuer's own handle.
func (i *TokenIssuer) Issue(ctx context.Context, db *gorm.DB, userID uuid.UUID, name string) (string, *models.AuthToken, error) {
	if db == nil {
		db = i.db
	}

	plaintext, err := generateSecret()
	if err != nil {
		return "", nil, err
	}

	token := models.AuthToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hashToken(plaintext),
	}
	if i.ttl > 0 {
		expires := time.Now().Add(i.ttl)
		token.ExpiresAt = &expires
	}

	if err := db.WithContext(ctx).Create(&token).Error; err != nil {
		return "", nil, err
	}

	return plaintext, &token, nil
}

// Resolve maps a presented plaintext token to its record. Unknown and expired
// tokens both come back as ErrInvalidToken; expired rows are deleted lazily.
func (i *TokenIssuer) Resolve(ctx context.Context, plaintext string) (*models.AuthToken, error) {
	var token models.AuthToken
	err := i.db.WithContext(ctx).
		Preload("User").
		Where("token_hash = ?", hashToken(plaintext)).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if token.Expired(time.Now()) {
		i.db.WithContext(ctx).Delete(&models.AuthToken{}, "id = ?", token.ID)
		return nil, ErrInvalidToken
	}

	// Best-effort usage stamp; failures here must not fail the request.
	now := time.Now()
	i.db.WithContext(ctx).Model(&models.AuthToken{}).
		Where("id = ?", token.ID).
		UpdateColumn("last_used_at", now)

	return &token, nil
}

// Revoke deletes the token matching the plaintext. Revoking an unknown or
// already-revoked token is a no-op.
func (i *TokenIssuer) Revoke(ctx context.Context, plaintext string) error {
	return i.db.WithContext(ctx).
		Where("token_hash = ?", hashToken(plaintext)).
		Delete(&models.AuthToken{}).Error
}

// RevokeAll deletes every token for the user (logout everywhere, password
// reset invalidation). db may be a transaction handle; nil uses the issuer's.
func (i *TokenIssuer) RevokeAll(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	if db == nil {
		db = i.db
	}
	return db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.AuthToken{}).Error
}
