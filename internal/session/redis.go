package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storekeeper:session:"

const (
	kindUser  = "user"
	kindAdmin = "admin"
)

// envelope is the JSON form of a State in Redis.
type envelope struct {
	Kind        string `json:"kind"`
	Step        Step   `json:"step,omitempty"`
	Action      Action `json:"action,omitempty"`
	ProductID   int    `json:"product_id,omitempty"`
	FacultyID   int    `json:"faculty_id,omitempty"`
	Comment     string `json:"comment,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

// RedisStore shares dialogue state between bot replicas. Keys never expire.
// Redis failures are logged and reads degrade to Idle.
type RedisStore struct {
	client redis.Cmdable
	log    *slog.Logger
}

func NewRedisStore(client redis.Cmdable, log *slog.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Get(ctx context.Context, userID int64) State {
	raw, err := s.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.ErrorContext(ctx, "failed to read session", "user", userID, "error", err)
		}
		return Idle{}
	}

	var env envelope
	if err = json.Unmarshal(raw, &env); err != nil {
		s.log.ErrorContext(ctx, "failed to decode session", "user", userID, "error", err)
		return Idle{}
	}

	switch env.Kind {
	case kindUser:
		return UserFlow{Step: env.Step, ProductID: env.ProductID, FacultyID: env.FacultyID, Comment: env.Comment}
	case kindAdmin:
		return AdminFlow{Action: env.Action, ProductName: env.ProductName, ProductID: env.ProductID}
	default:
		return Idle{}
	}
}

func (s *RedisStore) Set(ctx context.Context, userID int64, state State) {
	var env envelope
	switch st := state.(type) {
	case UserFlow:
		env = envelope{Kind: kindUser, Step: st.Step, ProductID: st.ProductID, FacultyID: st.FacultyID, Comment: st.Comment}
	case AdminFlow:
		env = envelope{Kind: kindAdmin, Action: st.Action, ProductName: st.ProductName, ProductID: st.ProductID}
	default:
		s.Clear(ctx, userID)
		return
	}

	raw, err := json.Marshal(env)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to encode session", "user", userID, "error", err)
		return
	}

	if err = s.client.Set(ctx, key(userID), raw, 0).Err(); err != nil {
		s.log.ErrorContext(ctx, "failed to store session", "user", userID, "error", err)
	}
}

func (s *RedisStore) Clear(ctx context.Context, userID int64) {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		s.log.ErrorContext(ctx, "failed to clear session", "user", userID, "error", err)
	}
}
