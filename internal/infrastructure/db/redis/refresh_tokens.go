package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carnavalia/catalog-api/internal/core/domain"
)

// expiredGrace keeps a token stored past its expiry so a late redeem is
// reported as expired instead of unknown.
const expiredGrace = 24 * time.Hour

// RefreshTokenRepository implements ports.RefreshTokenRepository on Redis.
//
// Keys:
//
//	refresh:token:<sha256(token)>  hash {user_id, expires_at, created_at}
//	refresh:user:<user_id>         sha256(token)
//
// Raw token values are never written to Redis.
type RefreshTokenRepository struct {
	client *redis.Client
	now    func() time.Time
}

// saveScript makes the new token its owner's only token in one step.
//
//	KEYS[1] owner index, KEYS[2] new token hash
//	ARGV[1] new fingerprint, ARGV[2] ttl in ms, ARGV[3] token key prefix,
//	ARGV[4..] hash field/value pairs
var saveScript = redis.NewScript(`
local prev = redis.call('GET', KEYS[1])
if prev and prev ~= ARGV[1] then
	redis.call('DEL', ARGV[3] .. prev)
end
redis.call('DEL', KEYS[2])
redis.call('HSET', KEYS[2], unpack(ARGV, 4))
redis.call('PEXPIRE', KEYS[2], ARGV[2])
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

// deleteTokenScript removes a token hash and clears its owner's index only
// while the index still points at it.
//
//	KEYS[1] token hash; ARGV[1] fingerprint, ARGV[2] owner key prefix
var deleteTokenScript = redis.NewScript(`
local owner = redis.call('HGET', KEYS[1], 'user_id')
if not owner then
	return 0
end
redis.call('DEL', KEYS[1])
local idx = ARGV[2] .. owner
if redis.call('GET', idx) == ARGV[1] then
	redis.call('DEL', idx)
end
return 1
`)

// deleteUserScript removes the owner's index and the token it points at.
//
//	KEYS[1] owner index; ARGV[1] token key prefix
var deleteUserScript = redis.NewScript(`
local fp = redis.call('GET', KEYS[1])
if not fp then
	return 0
end
redis.call('DEL', ARGV[1] .. fp, KEYS[1])
return 1
`)

func NewRefreshTokenRepository(client *redis.Client) *RefreshTokenRepository {
	return &RefreshTokenRepository{client: client, now: time.Now}
}

func (r *RefreshTokenRepository) Save(ctx context.Context, token *domain.RefreshToken) error {
	fp := fingerprint(token.Token)
	ttl := token.ExpiresAt.Sub(r.now()) + expiredGrace
	if ttl <= 0 {
		return nil
	}

	args := append([]any{fp, ttl.Milliseconds(), tokenKeyPrefix}, encodeToken(token)...)
	if err := saveScript.Run(ctx, r.client, []string{userKey(token.UserID), tokenKey(fp)}, args...).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	fp := fingerprint(token)
	fields, err := r.client.HGetAll(ctx, tokenKey(fp)).Result()
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrInvalidToken
	}
	rt, err := decodeToken(token, fields)
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	// A token the owner index no longer points at has been replaced.
	current, err := r.client.Get(ctx, userKey(rt.UserID)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && current != fp) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token owner: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	fp := fingerprint(token)
	if err := deleteTokenScript.Run(ctx, r.client, []string{tokenKey(fp)}, fp, userKeyPrefix).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if err := deleteUserScript.Run(ctx, r.client, []string{userKey(userID)}, tokenKeyPrefix).Err(); err != nil {
		return fmt.Errorf("delete user refresh token: %w", err)
	}
	return nil
}

const (
	fieldUserID    = "user_id"
	fieldExpiresAt = "expires_at"
	fieldCreatedAt = "created_at"
)

// encodeToken returns the hash fields as alternating names and values.
func encodeToken(t *domain.RefreshToken) []any {
	return []any{
		fieldUserID, t.UserID,
		fieldExpiresAt, strconv.FormatInt(t.ExpiresAt.UnixNano(), 10),
		fieldCreatedAt, strconv.FormatInt(t.CreatedAt.UnixNano(), 10),
	}
}

func decodeToken(token string, fields map[string]string) (*domain.RefreshToken, error) {
	userID := fields[fieldUserID]
	if userID == "" {
		return nil, errors.New("refresh token record has no owner")
	}
	expires, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fieldExpiresAt, err)
	}
	created, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
	}
	return &domain.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Unix(0, expires).UTC(),
		CreatedAt: time.Unix(0, created).UTC(),
	}, nil
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

const (
	tokenKeyPrefix = "refresh:token:"
	userKeyPrefix  = "refresh:user:"
)

func tokenKey(fp string) string     { return tokenKeyPrefix + fp }
func userKey(userID string) string { return userKeyPrefix + userID }
