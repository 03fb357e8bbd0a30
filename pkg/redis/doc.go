// Package redis connects to Redis with go-redis/v9. The tenant package uses
// the client for its shared tenant cache:
//
//	client, err := redis.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	c := tenant.NewRedisCache(client, tenant.WithRedisPrefix(cfg.KeyPrefix))
package redis
