package codes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/repository/kvstore"
)

// Records outlive the code TTL by this factor so a late claim can be answered
// with Expired instead of an indistinguishable NotFound.
const _retentionFactor = 2

// consumeScript is the only consumption path: exactly one caller can flip the
// consumed flag even when claims race from different gateway processes.
var consumeScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
	return {"notfound"}
end
local rec = cjson.decode(raw)
if rec.consumed then
	return {"consumed"}
end
if tonumber(ARGV[1]) >= tonumber(rec.expires_at_ms) then
	return {"expired"}
end
rec.consumed = true
rec.consumed_by = ARGV[2]
redis.call("SET", KEYS[1], cjson.encode(rec), "KEEPTTL")
return {"ok", raw}
`)

// markLostScript clears the display location on an unconsumed code so a later
// claim reports the display as gone instead of binding to a dead socket.
var markLostScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
	return {"notfound"}
end
local rec = cjson.decode(raw)
if rec.consumed then
	return {"consumed"}
end
rec.display_location = {}
rec.display_location["process_id"] = ""
rec.display_location["connection_id"] = ""
redis.call("SET", KEYS[1], cjson.encode(rec), "KEEPTTL")
return {"ok"}
`)

type record struct {
	entity.PairingCode
	ExpiresAtMs int64 `json:"expires_at_ms"`
}

// RedisRegistry stores pairing codes in the shared store so any gateway
// process can validate a code issued by any other.
type RedisRegistry struct {
	client *redis.Client
	prefix string
	cfg    Config
}

// NewRedisRegistry -.
func NewRedisRegistry(client *redis.Client, prefix string, cfg Config) *RedisRegistry {
	return &RedisRegistry{
		client: client,
		prefix: prefix,
		cfg:    cfg.withDefaults(),
	}
}

func (r *RedisRegistry) key(code string) string {
	return r.prefix + ":pairing:code:" + code
}

// Issue generates a fresh code for the announcing display, regenerating on
// the rare collision with a live code.
func (r *RedisRegistry) Issue(ctx context.Context, displayID string, location entity.Location) (entity.PairingCode, error) {
	now := time.Now().UTC()

	for attempt := 0; attempt < _issueAttempts; attempt++ {
		code, err := Generate(r.cfg.Length)
		if err != nil {
			return entity.PairingCode{}, err
		}

		pc := entity.PairingCode{
			Code:            code,
			DisplayID:       displayID,
			DisplayLocation: location,
			IssuedAt:        now,
			ExpiresAt:       now.Add(r.cfg.TTL),
		}

		raw, err := json.Marshal(record{PairingCode: pc, ExpiresAtMs: pc.ExpiresAt.UnixMilli()})
		if err != nil {
			return entity.PairingCode{}, fmt.Errorf("codes - Issue - json.Marshal: %w", err)
		}

		ok, err := r.client.SetNX(ctx, r.key(code), raw, r.cfg.TTL*_retentionFactor).Result()
		if err != nil {
			return entity.PairingCode{}, kvstore.Wrap(err)
		}

		if ok {
			return pc, nil
		}
	}

	return entity.PairingCode{}, ErrIssueExhausted
}

// ValidateAndConsume atomically consumes the code on behalf of the claiming
// controller. Distinct errors separate unknown, expired and already consumed
// codes.
func (r *RedisRegistry) ValidateAndConsume(ctx context.Context, code, controllerPrincipalID string) (entity.PairingCode, error) {
	res, err := consumeScript.Run(ctx, r.client,
		[]string{r.key(code)},
		time.Now().UTC().UnixMilli(), controllerPrincipalID,
	).Slice()
	if err != nil {
		return entity.PairingCode{}, kvstore.Wrap(err)
	}

	marker, _ := res[0].(string)

	switch marker {
	case "ok":
		raw, _ := res[1].(string)

		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return entity.PairingCode{}, fmt.Errorf("codes - ValidateAndConsume - json.Unmarshal: %w", err)
		}

		rec.Consumed = true
		rec.ConsumedBy = controllerPrincipalID

		return rec.PairingCode, nil
	case "expired":
		return entity.PairingCode{}, ErrExpired
	case "consumed":
		return entity.PairingCode{}, ErrAlreadyConsumed
	default:
		return entity.PairingCode{}, ErrNotFound
	}
}

// MarkDisplayLost records that the announcing display disconnected before its
// code was claimed. The code stays live so a claimer gets the specific
// display-gone answer rather than an unknown-code one.
func (r *RedisRegistry) MarkDisplayLost(ctx context.Context, code string) error {
	if err := markLostScript.Run(ctx, r.client, []string{r.key(code)}).Err(); err != nil {
		return kvstore.Wrap(err)
	}

	return nil
}

// Revoke discards a live code, for example when its session was
// administratively revoked before being claimed.
func (r *RedisRegistry) Revoke(ctx context.Context, code string) error {
	if err := r.client.Del(ctx, r.key(code)).Err(); err != nil {
		return kvstore.Wrap(err)
	}

	return nil
}
