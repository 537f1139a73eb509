// Package auth decides whether a caller-supplied credential may perform a
// catalog operation.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Operation tags the kind of privileged action being attempted.
type Operation string

const (
	// OpEdit covers content updates to an existing card.
	OpEdit Operation = "edit"
	// OpAdmin covers moderation: hiding, restoring, purging, reordering,
	// exporting and listing hidden cards.
	OpAdmin Operation = "admin"
)

// Authorizer is the capability the catalog consults before privileged work.
type Authorizer interface {
	Allow(ctx context.Context, credential string, op Operation) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, credential string, op Operation) bool

func (f AuthorizerFunc) Allow(ctx context.Context, credential string, op Operation) bool {
	return f(ctx, credential, op)
}

// DenyAll rejects every credential.
var DenyAll Authorizer = AuthorizerFunc(func(context.Context, string, Operation) bool { return false })

// HashAuthorizer checks credentials against bcrypt hashes, one per operation
// kind. The admin credential also satisfies edit checks.
type HashAuthorizer struct {
	admin []byte
	edit  []byte
}

// NewHashAuthorizer validates both hashes up front so a typo in configuration
// fails at startup rather than on the first request.
func NewHashAuthorizer(adminHash, editHash string) (*HashAuthorizer, error) {
	if _, err := bcrypt.Cost([]byte(adminHash)); err != nil {
		return nil, fmt.Errorf("invalid admin credential hash: %w", err)
	}
	if _, err := bcrypt.Cost([]byte(editHash)); err != nil {
		return nil, fmt.Errorf("invalid edit credential hash: %w", err)
	}
	return &HashAuthorizer{admin: []byte(adminHash), edit: []byte(editHash)}, nil
}

func (a *HashAuthorizer) Allow(_ context.Context, credential string, op Operation) bool {
	if credential == "" {
		return false
	}
	if matches(a.admin, credential) {
		return op == OpAdmin || op == OpEdit
	}
	if op == OpEdit {
		return matches(a.edit, credential)
	}
	return false
}

func matches(hash []byte, credential string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(credential)) == nil
}

// HashCredential produces a bcrypt hash for configuration.
func HashCredential(credential string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
