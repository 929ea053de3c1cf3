// Package gatewaytest provides an in-memory Gateway for tests.
package gatewaytest

import (
	"context"
	"strconv"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/gateway"
)

const SelfID = "bot"

// Fake records every provisioning call. Errors set on the exported fields are
// returned by the matching method.
type Fake struct {
	mu       sync.Mutex
	nextID   int
	channels map[string]*createdChannel
	roles    map[string]gateway.Role
	messages map[string][]postedMessage
	deleted  []string
	grants   []Grant
	listed   int

	CreateChannelErr  error
	CreateCategoryErr error
	PostMessageErr    error
	DeleteChannelErr  error
	ListMessagesErr   error
	ListChannelsErr   error
	AddMemberRoleErr  error
}

// Grant records an AddMemberRole call.
type Grant struct {
	UserID string
	RoleID string
}

type createdChannel struct {
	channel    gateway.Channel
	overwrites []gateway.Overwrite
}

type postedMessage struct {
	posted gateway.PostedMessage
	msg    gateway.Message
}

// New returns an empty guild.
func New() *Fake {
	return &Fake{
		channels: make(map[string]*createdChannel),
		roles:    make(map[string]gateway.Role),
		messages: make(map[string][]postedMessage),
	}
}

func (f *Fake) id(prefix string) string {
	f.nextID++
	return prefix + strconv.Itoa(f.nextID)
}

// AddChannel seeds an existing channel and returns it.
func (f *Fake) AddChannel(name string, kind gateway.ChannelKind) gateway.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := gateway.Channel{ID: f.id("c"), Name: name, Kind: kind}
	f.channels[ch.ID] = &createdChannel{channel: ch}
	return ch
}

// AddRole seeds an existing role and returns it.
func (f *Fake) AddRole(name string) gateway.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	role := gateway.Role{ID: f.id("r"), Name: name}
	f.roles[role.ID] = role
	return role
}

// Seed adds a message to a channel's history as if authorID had posted it.
func (f *Fake) Seed(channelID, authorID string, withControls bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[channelID] = append(f.messages[channelID], postedMessage{
		posted: gateway.PostedMessage{ID: f.id("m"), ChannelID: channelID, AuthorID: authorID, HasControls: withControls},
	})
}

func (f *Fake) find(name string, kind gateway.ChannelKind) *gateway.Channel {
	for _, c := range f.channels {
		if c.channel.Name == name && c.channel.Kind == kind {
			ch := c.channel
			return &ch
		}
	}
	return nil
}

func (f *Fake) FindCategory(ctx context.Context, name string) (*gateway.Channel, error) {
	return f.FindChannel(ctx, name, gateway.ChannelKindCategory)
}

func (f *Fake) CreateCategory(_ context.Context, name string) (*gateway.Channel, error) {
	f.mu.Lock()
	err := f.CreateCategoryErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	ch := f.AddChannel(name, gateway.ChannelKindCategory)
	return &ch, nil
}

func (f *Fake) FindChannel(_ context.Context, name string, kind gateway.ChannelKind) (*gateway.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch := f.find(name, kind); ch != nil {
		return ch, nil
	}
	return nil, gateway.ErrNotFound
}

func (f *Fake) ListChannels(_ context.Context, kind gateway.ChannelKind) ([]gateway.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed++
	if f.ListChannelsErr != nil {
		return nil, f.ListChannelsErr
	}
	var out []gateway.Channel
	for _, c := range f.channels {
		if c.channel.Kind == kind {
			out = append(out, c.channel)
		}
	}
	return out, nil
}

// ListChannelsCalls counts ListChannels calls.
func (f *Fake) ListChannelsCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listed
}

func (f *Fake) CreateChannel(_ context.Context, spec gateway.ChannelSpec) (*gateway.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateChannelErr != nil {
		return nil, f.CreateChannelErr
	}
	ch := gateway.Channel{ID: f.id("c"), Name: spec.Name, Kind: spec.Kind, ParentID: spec.ParentID}
	f.channels[ch.ID] = &createdChannel{channel: ch, overwrites: append([]gateway.Overwrite(nil), spec.Overwrites...)}
	return &ch, nil
}

func (f *Fake) DeleteChannel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteChannelErr != nil {
		return f.DeleteChannelErr
	}
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *Fake) PostMessage(_ context.Context, channelID string, msg gateway.Message) (*gateway.PostedMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PostMessageErr != nil {
		return nil, f.PostMessageErr
	}
	posted := gateway.PostedMessage{ID: f.id("m"), ChannelID: channelID, AuthorID: SelfID, HasControls: len(msg.Controls) > 0}
	f.messages[channelID] = append(f.messages[channelID], postedMessage{posted: posted, msg: msg})
	return &posted, nil
}

// ListRecentMessages returns newest first, like the platform does.
func (f *Fake) ListRecentMessages(_ context.Context, channelID string, limit int) ([]gateway.PostedMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListMessagesErr != nil {
		return nil, f.ListMessagesErr
	}
	history := f.messages[channelID]
	out := make([]gateway.PostedMessage, 0, limit)
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i].posted)
	}
	return out, nil
}

func (f *Fake) FindRole(_ context.Context, name string) (*gateway.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			role := r
			return &role, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (f *Fake) CreateRole(_ context.Context, name string, _ []gateway.Permission) (*gateway.Role, error) {
	role := f.AddRole(name)
	return &role, nil
}

func (f *Fake) AddMemberRole(_ context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddMemberRoleErr != nil {
		return f.AddMemberRoleErr
	}
	f.grants = append(f.grants, Grant{UserID: userID, RoleID: roleID})
	return nil
}

func (f *Fake) SelfID() string {
	return SelfID
}

// Channel returns a live channel by ID.
func (f *Fake) Channel(id string) (gateway.Channel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.channels[id]
	if !ok {
		return gateway.Channel{}, false
	}
	return c.channel, true
}

// Overwrites returns the overwrites a channel was created with.
func (f *Fake) Overwrites(channelID string) []gateway.Overwrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.channels[channelID]; ok {
		return append([]gateway.Overwrite(nil), c.overwrites...)
	}
	return nil
}

// Messages returns the messages the bot posted to a channel, oldest first.
func (f *Fake) Messages(channelID string) []gateway.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []gateway.Message
	for _, m := range f.messages[channelID] {
		if m.posted.AuthorID == SelfID {
			out = append(out, m.msg)
		}
	}
	return out
}

// ChannelsNamed counts live channels with the given name and kind.
func (f *Fake) ChannelsNamed(name string, kind gateway.ChannelKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.channels {
		if c.channel.Name == name && c.channel.Kind == kind {
			n++
		}
	}
	return n
}

// Deleted lists deleted channel IDs in call order.
func (f *Fake) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Grants lists role grants in call order.
func (f *Fake) Grants() []Grant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Grant(nil), f.grants...)
}

// SetError configures a failure under the fake's lock.
func (f *Fake) SetError(fn func(f *Fake)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

var _ gateway.Gateway = (*Fake)(nil)
