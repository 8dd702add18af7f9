package auth

import (
	"context"
	"time"
)

// tokenTTL is how long an issued token stays valid.
const tokenTTL = 24 * time.Hour

// Service authenticates operators and issues bearer tokens. The token's
// subject is the user id that recorded transactions are attributed to.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}
