// Package redisstore is a share.Store backed by Redis hashes.
package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jrsteele09/chatcraft-server/share"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	fieldContentType = "content_type"
	fieldData        = "data"
	fieldSize        = "size"
	fieldUploaded    = "uploaded"
)

// Store keeps each share in a hash and indexes a user's ids in a set.
type Store struct {
	client *redis.Client
	prefix string
}

var _ share.Store = (*Store)(nil)

func New(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Open connects to rawURL (redis://...) and checks the connection.
func Open(ctx context.Context, rawURL, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", opts.Addr)
	}
	return New(client, prefix), nil
}

func (s *Store) objectKey(user, id string) string {
	return fmt.Sprintf("%s:share:%s:%s", s.prefix, user, id)
}

func (s *Store) indexKey(user string) string {
	return fmt.Sprintf("%s:shares:%s", s.prefix, user)
}

func (s *Store) Put(ctx context.Context, user, id string, obj share.Object) error {
	if err := share.ValidateName(user); err != nil {
		return err
	}
	if err := share.ValidateName(id); err != nil {
		return err
	}

	key := s.objectKey(user, id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]interface{}{
			fieldContentType: obj.ContentType,
			fieldData:        obj.Data,
			fieldSize:        len(obj.Data),
			fieldUploaded:    obj.Uploaded.UnixNano(),
		})
		pipe.SAdd(ctx, s.indexKey(user), id)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to store share %s", share.Key(user, id))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, user, id string) (share.Object, error) {
	res, err := s.client.HGetAll(ctx, s.objectKey(user, id)).Result()
	if err != nil {
		return share.Object{}, errors.Wrapf(err, "failed to read share %s", share.Key(user, id))
	}
	if len(res) == 0 {
		return share.Object{}, share.ErrNotFound
	}

	uploaded, err := strconv.ParseInt(res[fieldUploaded], 10, 64)
	if err != nil {
		return share.Object{}, errors.Wrapf(err, "corrupt upload time on share %s", share.Key(user, id))
	}

	return share.Object{
		ContentType: res[fieldContentType],
		Data:        []byte(res[fieldData]),
		Uploaded:    time.Unix(0, uploaded).UTC(),
	}, nil
}

func (s *Store) List(ctx context.Context, user string) ([]share.Info, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(user)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list shares for %s", user)
	}
	if len(ids) == 0 {
		return []share.Info{}, nil
	}

	pipe := s.client.Pipeline()
	sizes := make([]*redis.StringCmd, len(ids))
	uploads := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		key := s.objectKey(user, id)
		sizes[i] = pipe.HGet(ctx, key, fieldSize)
		uploads[i] = pipe.HGet(ctx, key, fieldUploaded)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(err, "failed to list shares for %s", user)
	}

	infos := make([]share.Info, 0, len(ids))
	for i, id := range ids {
		uploaded, err := uploads[i].Int64()
		if err != nil {
			// Index entry without an object
			continue
		}
		size, err := sizes[i].Int()
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt size on share %s", share.Key(user, id))
		}
		infos = append(infos, share.Info{
			ID:       id,
			Size:     size,
			Uploaded: time.Unix(0, uploaded).UTC(),
		})
	}
	share.SortInfos(infos)
	return infos, nil
}

func (s *Store) Delete(ctx context.Context, user, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.objectKey(user, id))
		pipe.SRem(ctx, s.indexKey(user), id)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete share %s", share.Key(user, id))
	}
	if del.Val() == 0 {
		return share.ErrNotFound
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
