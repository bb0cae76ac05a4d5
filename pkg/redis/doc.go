// Package redis opens go-redis clients for the optional Redis session store.
//
//	client, err := redis.Open(ctx, cfg.Redis.URL, redis.WithPoolSize(cfg.Redis.PoolSize))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Open pings the server and retries with linear backoff until the context
// expires or the attempts run out. Healthcheck and Shutdown return closures for
// readiness probes and shutdown hooks.
package redis
