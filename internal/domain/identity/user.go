// Package identity holds the User and Client aggregates — the tenancy
// root entities described in spec §3. It follows the teacher's
// domain-aggregate idiom (internal/domain/post, internal/domain/team):
// private fields, typed getters, NewX/Reconstruct constructors.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is created on first successful authentication against the
// external OIDC issuer; ExternalSubject is the stable subject identifier
// the Identity Verifier returns.
type User struct {
	id              uuid.UUID
	externalSubject string
	email           string
	name            string
	avatar          string
	createdAt       time.Time
	updatedAt       time.Time
}

func NewUser(externalSubject, email, name string) *User {
	now := time.Now().UTC()
	return &User{
		id:              uuid.New(),
		externalSubject: externalSubject,
		email:           email,
		name:            name,
		createdAt:       now,
		updatedAt:       now,
	}
}

func ReconstructUser(id uuid.UUID, externalSubject, email, name, avatar string, createdAt, updatedAt time.Time) *User {
	return &User{
		id:              id,
		externalSubject: externalSubject,
		email:           email,
		name:            name,
		avatar:          avatar,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (u *User) ID() uuid.UUID            { return u.id }
func (u *User) ExternalSubject() string  { return u.externalSubject }
func (u *User) Email() string            { return u.email }
func (u *User) Name() string             { return u.name }
func (u *User) Avatar() string           { return u.avatar }
func (u *User) CreatedAt() time.Time     { return u.createdAt }
func (u *User) UpdatedAt() time.Time     { return u.updatedAt }

func (u *User) UpdateProfile(name, avatar string) {
	u.name = name
	u.avatar = avatar
	u.updatedAt = time.Now().UTC()
}
