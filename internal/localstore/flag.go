package localstore

import (
	"context"
	"fmt"
)

// LoginFlagKey is the storage key of the persisted login flag.
const LoginFlagKey = "isLoggedIn"

// LoginFlag is the persisted hint that a login succeeded earlier.
// Its presence does not prove the server session is still valid.
type LoginFlag struct {
	storage Storage
}

// NewLoginFlag returns the login flag kept in s.
func NewLoginFlag(s Storage) *LoginFlag {
	return &LoginFlag{storage: s}
}

// Present reports whether the flag is stored with a non-empty value.
func (f *LoginFlag) Present(ctx context.Context) (bool, error) {
	v, ok, err := f.storage.GetItem(ctx, LoginFlagKey)
	if err != nil {
		return false, fmt.Errorf("localstore.LoginFlag.Present: %w", err)
	}
	return ok && v != "", nil
}

// Set stores the flag.
func (f *LoginFlag) Set(ctx context.Context) error {
	if err := f.storage.SetItem(ctx, LoginFlagKey, "true"); err != nil {
		return fmt.Errorf("localstore.LoginFlag.Set: %w", err)
	}
	return nil
}

// Clear removes the flag.
func (f *LoginFlag) Clear(ctx context.Context) error {
	if err := f.storage.RemoveItem(ctx, LoginFlagKey); err != nil {
		return fmt.Errorf("localstore.LoginFlag.Clear: %w", err)
	}
	return nil
}
