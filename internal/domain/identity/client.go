package identity

import (
	"time"

	"github.com/google/uuid"
)

// Client is the tenant entity: the scope for all content, calendars,
// publications, and social accounts. A user may own many clients; every
// tenant-scoped entity references exactly one client.
type Client struct {
	id        uuid.UUID
	userID    uuid.UUID
	name      string
	avatar    string
	createdAt time.Time
}

func NewClient(userID uuid.UUID, name string) *Client {
	return &Client{
		id:        uuid.New(),
		userID:    userID,
		name:      name,
		createdAt: time.Now().UTC(),
	}
}

func ReconstructClient(id, userID uuid.UUID, name, avatar string, createdAt time.Time) *Client {
	return &Client{id: id, userID: userID, name: name, avatar: avatar, createdAt: createdAt}
}

func (c *Client) ID() uuid.UUID        { return c.id }
func (c *Client) UserID() uuid.UUID    { return c.userID }
func (c *Client) Name() string         { return c.name }
func (c *Client) Avatar() string       { return c.avatar }
func (c *Client) CreatedAt() time.Time { return c.createdAt }

// OwnedBy reports whether the client belongs to the given user — the
// check the Tenancy Resolver runs before binding an X-Client-Id hint
// (spec §4.1 step 4: "verify the client belongs to the user").
func (c *Client) OwnedBy(userID uuid.UUID) bool { return c.userID == userID }
