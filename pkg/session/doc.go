/*
Package session serializes conversation updates per user.

Telegram delivers updates concurrently, but a user's state must be read, advanced and
written back one event at a time. Manager keeps a reference-counted mutex per user and,
when several bot replicas share a Redis instance, an optional distributed lock.
*/
package session
