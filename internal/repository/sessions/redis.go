package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/repository/kvstore"
)

var createScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if raw then
	local s = cjson.decode(raw)
	if s.state ~= "CLOSED" then
		return {"conflict"}
	end
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[2])
redis.call("SADD", KEYS[3], ARGV[2])
return {"ok"}
`)

var attachDisplayScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
	return {"notfound"}
end
local s = cjson.decode(raw)
if s.state == "CLOSED" then
	return {"closed"}
end
local prev_proc = s.display_process_id
local prev_conn = s.display_connection_id
s.display_process_id = ARGV[1]
s.display_connection_id = ARGV[2]
s.state = "ACTIVE"
s.last_heartbeat_ms = tonumber(ARGV[3])
redis.call("SET", KEYS[1], cjson.encode(s))
redis.call("PERSIST", KEYS[2])
if prev_proc ~= "" and not (prev_proc == ARGV[1] and prev_conn == ARGV[2]) then
	return {"superseded", cjson.encode(s), prev_proc, prev_conn}
end
return {"ok", cjson.encode(s)}
`)

var detachDisplayScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
	return {"notfound"}
end
local s = cjson.decode(raw)
if s.state == "CLOSED" then
	return {"closed"}
end
if s.display_process_id ~= ARGV[1] or s.display_connection_id ~= ARGV[2] then
	return {"mismatch"}
end
s.display_process_id = ""
s.display_connection_id = ""
s.state = "DISPLAY_DISCONNECTED"
redis.call("SET", KEYS[1], cjson.encode(s), "PX", ARGV[3])
redis.call("PEXPIRE", KEYS[2], ARGV[3])
return {"ok", cjson.encode(s)}
`)

var heartbeatScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
	return {"notfound"}
end
local s = cjson.decode(raw)
if s.state ~= "ACTIVE" then
	return {"ignored"}
end
s.last_heartbeat_ms = tonumber(ARGV[1])
redis.call("SET", KEYS[1], cjson.encode(s))
return {"ok"}
`)

var closeScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
	return {"notfound"}
end
local s = cjson.decode(raw)
if s.state == "CLOSED" then
	return {"closed", raw}
end
if ARGV[2] ~= "" and s.state ~= ARGV[2] then
	return {"statechange"}
end
s.state = "CLOSED"
s.close_reason = ARGV[1]
s.display_process_id = ""
s.display_connection_id = ""
local enc = cjson.encode(s)
redis.call("SET", KEYS[1], enc, "PX", ARGV[3])
redis.call("PEXPIRE", KEYS[2], ARGV[3])
redis.call("SREM", KEYS[3], s.display_id)
return {"ok", enc}
`)

var detachControllerScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
	return {"notfound"}
end
local l = cjson.decode(raw)
if l.process_id ~= ARGV[1] or l.connection_id ~= ARGV[2] then
	return {"mismatch"}
end
redis.call("DEL", KEYS[1])
return {"ok"}
`)

// RedisStore keeps sessions in the shared store, keyed by display identity to
// enforce the one-active-session-per-display invariant at the storage layer.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore -.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) displayKey(displayID string) string {
	return r.prefix + ":sess:display:" + displayID
}

func (r *RedisStore) idKey(sessionID string) string {
	return r.prefix + ":sess:id:" + sessionID
}

func (r *RedisStore) controllerIndexKey(principalID string) string {
	return r.prefix + ":sess:ctrl:idx:" + principalID
}

func (r *RedisStore) controllerLocKey(principalID string) string {
	return r.prefix + ":sess:ctrl:loc:" + principalID
}

// Create stores a fresh PENDING session. A live (unclosed) session for the
// same display rejects the create.
func (r *RedisStore) Create(ctx context.Context, session entity.Session) error {
	raw, err := json.Marshal(toRecord(session))
	if err != nil {
		return fmt.Errorf("sessions - Create - json.Marshal: %w", err)
	}

	res, err := createScript.Run(ctx, r.client,
		[]string{
			r.displayKey(session.DisplayID),
			r.idKey(session.ID),
			r.controllerIndexKey(session.ControllerPrincipalID),
		},
		raw, session.DisplayID,
	).Slice()
	if err != nil {
		return kvstore.Wrap(err)
	}

	if marker, _ := res[0].(string); marker == "conflict" {
		return ErrConflict
	}

	return nil
}

// AttachDisplay binds the display's live connection, moving the session to
// ACTIVE. The most recent attach wins; when it displaces a previous live
// location, that location is returned so its owning process can drop the
// stale socket. Attaching also lifts the disconnect-retention expiry.
func (r *RedisStore) AttachDisplay(ctx context.Context, displayID string, location entity.Location) (entity.Session, *entity.Location, error) {
	idKey, err := r.lookupIDKey(ctx, displayID)
	if err != nil {
		return entity.Session{}, nil, err
	}

	res, err := attachDisplayScript.Run(ctx, r.client,
		[]string{r.displayKey(displayID), idKey},
		location.ProcessID, location.ConnectionID, time.Now().UTC().UnixMilli(),
	).Slice()
	if err != nil {
		return entity.Session{}, nil, kvstore.Wrap(err)
	}

	marker, _ := res[0].(string)

	switch marker {
	case "ok", "superseded":
		raw, _ := res[1].(string)

		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return entity.Session{}, nil, fmt.Errorf("sessions - AttachDisplay - json.Unmarshal: %w", err)
		}

		var superseded *entity.Location

		if marker == "superseded" {
			proc, _ := res[2].(string)
			conn, _ := res[3].(string)
			superseded = &entity.Location{ProcessID: proc, ConnectionID: conn}
		}

		return rec.toSession(nil), superseded, nil
	case "closed":
		return entity.Session{}, nil, ErrClosed
	default:
		return entity.Session{}, nil, ErrNotFound
	}
}

// DetachDisplay clears the display location, but only if the given location
// still owns it; a connection superseded by a newer attach must not detach
// the winner. The detached record carries a retention expiry so a crash of
// the process holding its grace timer cannot strand it forever.
func (r *RedisStore) DetachDisplay(ctx context.Context, displayID string, location entity.Location) (entity.Session, error) {
	idKey, err := r.lookupIDKey(ctx, displayID)
	if err != nil {
		return entity.Session{}, err
	}

	res, err := detachDisplayScript.Run(ctx, r.client,
		[]string{r.displayKey(displayID), idKey},
		location.ProcessID, location.ConnectionID, _disconnectedRetention.Milliseconds(),
	).Slice()
	if err != nil {
		return entity.Session{}, kvstore.Wrap(err)
	}

	marker, _ := res[0].(string)

	switch marker {
	case "ok":
		raw, _ := res[1].(string)

		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return entity.Session{}, fmt.Errorf("sessions - DetachDisplay - json.Unmarshal: %w", err)
		}

		return rec.toSession(nil), nil
	case "mismatch":
		return entity.Session{}, ErrLocationMismatch
	case "closed":
		return entity.Session{}, ErrClosed
	default:
		return entity.Session{}, ErrNotFound
	}
}

// lookupIDKey resolves the session-id index key for the display's current
// record. The transition scripts re-check the record atomically afterwards.
func (r *RedisStore) lookupIDKey(ctx context.Context, displayID string) (string, error) {
	raw, err := r.client.Get(ctx, r.displayKey(displayID)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}

	if err != nil {
		return "", kvstore.Wrap(err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return "", fmt.Errorf("sessions - lookupIDKey - json.Unmarshal: %w", err)
	}

	return r.idKey(rec.ID), nil
}

// Heartbeat records display liveness on an ACTIVE session.
func (r *RedisStore) Heartbeat(ctx context.Context, displayID string, at time.Time) error {
	res, err := heartbeatScript.Run(ctx, r.client,
		[]string{r.displayKey(displayID)}, at.UnixMilli(),
	).Slice()
	if err != nil {
		return kvstore.Wrap(err)
	}

	if marker, _ := res[0].(string); marker == "notfound" {
		return ErrNotFound
	}

	return nil
}

// Close transitions the session to its terminal state. A non-empty
// expectState makes the close conditional, so a grace timer firing after a
// successful reconnect is a no-op.
func (r *RedisStore) Close(ctx context.Context, displayID, reason string, expectState entity.SessionState) (entity.Session, error) {
	res, err := r.runClose(ctx, displayID, reason, expectState)
	if err != nil {
		return entity.Session{}, err
	}

	marker, _ := res[0].(string)

	switch marker {
	case "ok", "closed":
		raw, _ := res[1].(string)

		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return entity.Session{}, fmt.Errorf("sessions - Close - json.Unmarshal: %w", err)
		}

		if marker == "closed" {
			return rec.toSession(nil), ErrClosed
		}

		return rec.toSession(nil), nil
	case "statechange":
		return entity.Session{}, ErrStateChanged
	default:
		return entity.Session{}, ErrNotFound
	}
}

func (r *RedisStore) runClose(ctx context.Context, displayID, reason string, expectState entity.SessionState) ([]interface{}, error) {
	// The id-index and controller-index keys depend on the current record, so
	// read it once first; the close script re-checks state atomically.
	raw, err := r.client.Get(ctx, r.displayKey(displayID)).Result()
	if err == redis.Nil {
		return []interface{}{"notfound"}, nil
	}

	if err != nil {
		return nil, kvstore.Wrap(err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("sessions - Close - json.Unmarshal: %w", err)
	}

	res, err := closeScript.Run(ctx, r.client,
		[]string{
			r.displayKey(displayID),
			r.idKey(rec.ID),
			r.controllerIndexKey(rec.ControllerPrincipalID),
		},
		reason, string(expectState), _closedRetention.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, kvstore.Wrap(err)
	}

	return res, nil
}

// GetByDisplayID -.
func (r *RedisStore) GetByDisplayID(ctx context.Context, displayID string) (entity.Session, error) {
	raw, err := r.client.Get(ctx, r.displayKey(displayID)).Result()
	if err == redis.Nil {
		return entity.Session{}, ErrNotFound
	}

	if err != nil {
		return entity.Session{}, kvstore.Wrap(err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return entity.Session{}, fmt.Errorf("sessions - GetByDisplayID - json.Unmarshal: %w", err)
	}

	loc, _ := r.GetControllerLocation(ctx, rec.ControllerPrincipalID)

	return rec.toSession(loc), nil
}

// GetBySessionID -.
func (r *RedisStore) GetBySessionID(ctx context.Context, sessionID string) (entity.Session, error) {
	displayID, err := r.client.Get(ctx, r.idKey(sessionID)).Result()
	if err == redis.Nil {
		return entity.Session{}, ErrNotFound
	}

	if err != nil {
		return entity.Session{}, kvstore.Wrap(err)
	}

	return r.GetByDisplayID(ctx, displayID)
}

// GetByController returns all unclosed sessions claimed by the principal.
func (r *RedisStore) GetByController(ctx context.Context, principalID string) ([]entity.Session, error) {
	displayIDs, err := r.client.SMembers(ctx, r.controllerIndexKey(principalID)).Result()
	if err != nil {
		return nil, kvstore.Wrap(err)
	}

	out := make([]entity.Session, 0, len(displayIDs))

	for _, displayID := range displayIDs {
		s, err := r.GetByDisplayID(ctx, displayID)
		if err == ErrNotFound {
			continue
		}

		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// AttachController records where the principal's live controller socket is.
// The most recent attach wins; a displaced location is returned for teardown.
func (r *RedisStore) AttachController(ctx context.Context, principalID string, location entity.Location) (*entity.Location, error) {
	raw, err := json.Marshal(location)
	if err != nil {
		return nil, fmt.Errorf("sessions - AttachController - json.Marshal: %w", err)
	}

	prev, err := r.client.GetSet(ctx, r.controllerLocKey(principalID), raw).Result()
	if err == redis.Nil {
		return nil, nil
	}

	if err != nil {
		return nil, kvstore.Wrap(err)
	}

	var prevLoc entity.Location
	if err := json.Unmarshal([]byte(prev), &prevLoc); err != nil {
		return nil, fmt.Errorf("sessions - AttachController - json.Unmarshal: %w", err)
	}

	if prevLoc == location {
		return nil, nil
	}

	return &prevLoc, nil
}

// DetachController removes the principal's controller location if the given
// connection still owns it.
func (r *RedisStore) DetachController(ctx context.Context, principalID string, location entity.Location) error {
	res, err := detachControllerScript.Run(ctx, r.client,
		[]string{r.controllerLocKey(principalID)},
		location.ProcessID, location.ConnectionID,
	).Slice()
	if err != nil {
		return kvstore.Wrap(err)
	}

	switch marker, _ := res[0].(string); marker {
	case "ok":
		return nil
	case "mismatch":
		return ErrLocationMismatch
	default:
		return ErrNotFound
	}
}

// GetControllerLocation -.
func (r *RedisStore) GetControllerLocation(ctx context.Context, principalID string) (*entity.Location, error) {
	raw, err := r.client.Get(ctx, r.controllerLocKey(principalID)).Result()
	if err == redis.Nil {
		return nil, nil
	}

	if err != nil {
		return nil, kvstore.Wrap(err)
	}

	var loc entity.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, fmt.Errorf("sessions - GetControllerLocation - json.Unmarshal: %w", err)
	}

	return &loc, nil
}
