package modelstore

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/pawel-madurski/PredictionIO/pkg/env"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// redisstore keeps instance records in redis so several processes (a train
// runner and one or more serving runtimes) share one store. Each record is
// one key written with a single SET, which makes the multi-model save as
// atomic as the local rename.
type redisstore struct {
	ctx    context.Context
	client *redis.Client
	prefix string
}

// NewRedisstore connects a store to the configured redis instance
func NewRedisstore() Store {
	client := redis.NewClient(&redis.Options{
		Addr:     viper.GetString(env.RedisIP) + ":" + viper.GetString(env.RedisPort),
		Password: viper.GetString(env.RedisPassword),
		DB:       viper.GetInt(env.DefaultDb),
	})
	return &redisstore{
		ctx:    context.Background(),
		client: client,
		prefix: viper.GetString(env.RedisKeyPrefix),
	}
}

// NewRedisstoreAt connects a store to addr with keys under prefix
func NewRedisstoreAt(addr, prefix string) Store {
	return &redisstore{
		ctx:    context.Background(),
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
	}
}

var _ Store = &redisstore{}

func (s *redisstore) sequenceKey() string { return s.prefix + "sequence" }
func (s *redisstore) currentKey() string  { return s.prefix + "current" }
func (s *redisstore) instanceKey(id string) string {
	return s.prefix + "instance:" + id
}

func (s *redisstore) NextInstanceID() (string, error) {
	id, err := s.client.Incr(s.ctx, s.sequenceKey()).Result()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *redisstore) SaveInstance(instance *Instance) error {
	existing, err := s.GetInstance(instance.ID)
	if err != nil && err != ErrInstanceNotFound {
		return err
	}
	if existing != nil && existing.Status != instance.Status &&
		!existing.Status.CanTransition(instance.Status) {
		return errorutils.NewDeployInconsistencyError(instance.ID, string(existing.Status))
	}
	data, err := yaml.Marshal(instance)
	if err != nil {
		return err
	}
	return s.client.Set(s.ctx, s.instanceKey(instance.ID), data, 0).Err()
}

func (s *redisstore) GetInstance(id string) (*Instance, error) {
	data, err := s.client.Get(s.ctx, s.instanceKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrInstanceNotFound
	}
	if err != nil {
		return nil, err
	}
	instance := Instance{}
	if err := yaml.Unmarshal([]byte(data), &instance); err != nil {
		return nil, err
	}
	return &instance, nil
}

func (s *redisstore) ListInstances() ([]*Instance, error) {
	keys, err := s.client.Keys(s.ctx, s.instanceKey("*")).Result()
	if err != nil {
		return nil, err
	}
	instances := make([]*Instance, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(s.ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		instance := Instance{}
		if err := yaml.Unmarshal([]byte(data), &instance); err != nil {
			return nil, err
		}
		instances = append(instances, &instance)
	}
	sortByID(instances)
	return instances, nil
}

func (s *redisstore) UpdateStatus(id string, status Status) error {
	instance, err := s.GetInstance(id)
	if err != nil {
		return err
	}
	if !instance.Status.CanTransition(status) {
		return errorutils.NewDeployInconsistencyError(id, string(instance.Status))
	}
	instance.Status = status
	data, err := yaml.Marshal(instance)
	if err != nil {
		return err
	}
	return s.client.Set(s.ctx, s.instanceKey(id), data, 0).Err()
}

// SetCurrent checks and swaps inside a WATCH transaction so two concurrent
// deploys cannot interleave between the status check and the pointer write
func (s *redisstore) SetCurrent(id string) error {
	key := s.instanceKey(id)
	return s.client.Watch(s.ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(s.ctx, key).Result()
		if err == redis.Nil {
			return ErrInstanceNotFound
		}
		if err != nil {
			return err
		}
		instance := Instance{}
		if err := yaml.Unmarshal([]byte(data), &instance); err != nil {
			return err
		}
		if instance.Status != StatusTrained {
			return errorutils.NewDeployInconsistencyError(id, string(instance.Status))
		}
		instance.Status = StatusDeployed
		updated, err := yaml.Marshal(&instance)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(s.ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(s.ctx, s.currentKey(), id, 0)
			pipe.Set(s.ctx, key, updated, 0)
			return nil
		})
		return err
	}, key)
}

func (s *redisstore) GetCurrent() (string, error) {
	id, err := s.client.Get(s.ctx, s.currentKey()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
