package service

import (
	"time"

	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/pkg/util"
)

// TokenIssuer mints the bearer tokens handed out on signup, login and
// password reset.
type TokenIssuer struct {
	secret string
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, expiry: expiry}
}

func (i *TokenIssuer) Issue(user *model.User) (string, error) {
	return util.GenerateToken(user.ID, string(user.Role), i.secret, i.expiry)
}
