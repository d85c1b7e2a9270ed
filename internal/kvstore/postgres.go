package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const notifyChannel = "roamly_storage"

type notification struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// PostgresStorage keeps items in the storage_item table. Every write also sends a
// notification on the roamly_storage channel so other Roamly processes sharing the
// database can refresh.
type PostgresStorage struct {
	db     *pgxpool.Pool
	origin string
}

func NewPostgresStorage(db *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{db: db, origin: uuid.NewString()}
}

func (s *PostgresStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT item_value FROM storage_item WHERE item_key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, unavailable("get "+key, err)
	}
	return value, true, nil
}

func (s *PostgresStorage) SetItem(ctx context.Context, key string, value string) error {
	query := `INSERT INTO storage_item (item_key, item_value, updated_at) VALUES ($1, $2, now())
				ON CONFLICT (item_key) DO UPDATE SET item_value = EXCLUDED.item_value, updated_at = EXCLUDED.updated_at`
	return s.writeAndNotify(ctx, key, query, key, value)
}

func (s *PostgresStorage) RemoveItem(ctx context.Context, key string) error {
	return s.writeAndNotify(ctx, key, `DELETE FROM storage_item WHERE item_key = $1`, key)
}

func (s *PostgresStorage) writeAndNotify(ctx context.Context, key string, query string, args ...any) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return unavailable("begin "+key, err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return unavailable("write "+key, err)
	}
	if result.RowsAffected() > 0 {
		payload, err := json.Marshal(notification{Key: key, Origin: s.origin})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(payload)); err != nil {
			return unavailable("notify "+key, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return unavailable("commit "+key, err)
	}
	return nil
}

func (s *PostgresStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT item_key FROM storage_item ORDER BY item_key`)
	if err != nil {
		return nil, unavailable("keys", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, unavailable("keys", err)
	}
	return keys, nil
}

// Watch holds one pooled connection in LISTEN mode until ctx is cancelled. A lost
// connection is re-established; the gap is reported as a Change with an empty key.
func (s *PostgresStorage) Watch(ctx context.Context, fn func(Change)) error {
	conn, err := s.listen(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			err := s.receive(ctx, conn, fn)
			discard(conn)
			if ctx.Err() != nil {
				return
			}
			log.Warnf("storage listener lost connection: %v", err)

			conn, err = s.relisten(ctx)
			if err != nil {
				return
			}
			fn(Change{})
		}
	}()
	return nil
}

func (s *PostgresStorage) listen(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, unavailable("listen", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, unavailable("listen", err)
	}
	return conn, nil
}

// discard closes a listening connection instead of releasing it, so the pool never hands
// out a connection that is still subscribed to notifyChannel.
func discard(conn *pgxpool.Conn) {
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Hijack().Close(closeCtx); err != nil {
		log.Debugf("closing storage listener connection: %v", err)
	}
}

func (s *PostgresStorage) relisten(ctx context.Context) (*pgxpool.Conn, error) {
	backoff := time.Second
	for {
		conn, err := s.listen(ctx)
		if err == nil {
			return conn, nil
		}
		log.Debugf("storage listener reconnect failed: %v", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *PostgresStorage) receive(ctx context.Context, conn *pgxpool.Conn, fn func(Change)) error {
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var payload notification
		if err := json.Unmarshal([]byte(n.Payload), &payload); err != nil {
			log.Warnf("ignoring malformed storage notification %q: %v", n.Payload, err)
			continue
		}
		if payload.Origin == s.origin {
			continue
		}
		fn(Change{Key: payload.Key})
	}
}
