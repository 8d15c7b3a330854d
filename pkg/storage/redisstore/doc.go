// Package redisstore keeps sessions in Redis (go-redis v8). Keys are
// "session:<id>" and expire with the session, so no purge job is needed.
package redisstore
