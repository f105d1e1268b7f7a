package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenStore persists one session token per backend URL.
type TokenStore struct {
	db     *gorm.DB
	apiURL string
}

func NewTokenStore(db *gorm.DB, apiURL string) *TokenStore {
	return &TokenStore{db: db, apiURL: apiURL}
}

// Load returns the stored token and username, or empty strings when no
// session was saved for this backend.
func (s *TokenStore) Load(ctx context.Context) (string, string, error) {
	var stored StoredSession
	err := s.db.WithContext(ctx).Where("api_url = ?", s.apiURL).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return stored.Token, stored.Username, nil
}

func (s *TokenStore) Save(ctx context.Context, token, username string) error {
	now := time.Now().Unix()
	stored := StoredSession{
		APIURL:    s.apiURL,
		Token:     token,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "api_url"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "username", "updated_at"}),
	}).Create(&stored).Error
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("api_url = ?", s.apiURL).Delete(&StoredSession{}).Error
}
