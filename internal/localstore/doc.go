// Package localstore provides the client's persistent key/value storage, the
// terminal counterpart of a browser's localStorage. It backs the persisted
// login flag and the cookie jar.
//
// Three backends are available: a JSON file (default), a SQLite database and
// Redis. All of them implement Storage.
package localstore
