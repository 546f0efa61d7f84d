package redis

import (
	"context"

	"github.com/cloudflare/cfssl/log"
	"github.com/go-redis/redis/v8"
)

var ctx = context.Background()
var rdb *redis.Client

// 事件推送为尽力而为：redis不可用时只记日志，不影响合约状态
func InitClient(addr string) {
	rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
	})
}

//set
func SetIntoRedis(key string, value string) error {
	if rdb == nil {
		return nil
	}
	err := rdb.Set(ctx, key, value, 0).Err()
	if err != nil {
		log.Errorf("redis set error: %s", err)
	}
	return err
}

//get
func GetFromRedis(key string) (string, error) {
	if rdb == nil {
		return "", nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		log.Errorf("the key:%s does not exist\n", key)
		return "", nil
	} else if err != nil {
		log.Errorf("redis get error: %s", err)
		return "", err
	}
	return val, nil
}

// list push
func PushToList(key string, value string) error {
	if rdb == nil {
		return nil
	}
	err := rdb.RPush(ctx, key, value).Err()
	if err != nil {
		log.Errorf("event push to list error: %s", err)
		return err
	}
	return nil
}
