package config

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	RDB     *redis.Client
	redisMu sync.Mutex
)

// ConnectRedis initializes the shared Redis client (idempotent). Redis is
// optional, an empty REDIS_ADDR disables caching and the app runs without it.
func ConnectRedis(env Env) *redis.Client {
	redisMu.Lock()
	defer redisMu.Unlock()

	if RDB != nil {
		return RDB
	}
	if env.RedisAddr == "" {
		log.Println("REDIS_ADDR empty, match suggestion cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: env.RedisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable at %s, caching disabled: %v", env.RedisAddr, err)
		_ = client.Close()
		return nil
	}

	RDB = client
	log.Println("connected to Redis")
	return RDB
}

func CloseRedis() {
	redisMu.Lock()
	defer redisMu.Unlock()

	if RDB != nil {
		_ = RDB.Close()
		RDB = nil
	}
}
