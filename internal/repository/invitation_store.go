package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estatedesk/estate-service/internal/domain"
)

// ErrInvitationNotFound is returned when a token is unknown, expired or consumed.
var ErrInvitationNotFound = errors.New("invitation not found")

const (
	inviteTokenPrefix = "invite:token:"
	inviteStatePrefix = "invite:state:"
	inviteStateTTL    = 30 * 24 * time.Hour
)

// InvitationStore keeps pending agent invitations in Redis with a TTL.
type InvitationStore interface {
	Save(ctx context.Context, invitation *domain.Invitation, ttl time.Duration) error
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	Consume(ctx context.Context, token string) (*domain.Invitation, error)
	MarkState(ctx context.Context, agentID string, state domain.InvitationState) error
	GetState(ctx context.Context, agentID string) (domain.InvitationState, error)
}

type invitationStore struct {
	client *redis.Client
}

// NewInvitationStore constructs the Redis-backed store.
func NewInvitationStore(client *redis.Client) InvitationStore {
	return &invitationStore{client: client}
}

func (s *invitationStore) Save(ctx context.Context, invitation *domain.Invitation, ttl time.Duration) error {
	payload, err := json.Marshal(invitation)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, inviteTokenPrefix+invitation.Token, payload, ttl).Err()
}

func (s *invitationStore) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	payload, err := s.client.Get(ctx, inviteTokenPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return unmarshalInvitation(payload)
}

// Consume atomically fetches and deletes the invitation, making tokens single-use.
func (s *invitationStore) Consume(ctx context.Context, token string) (*domain.Invitation, error) {
	payload, err := s.client.GetDel(ctx, inviteTokenPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return unmarshalInvitation(payload)
}

func (s *invitationStore) MarkState(ctx context.Context, agentID string, state domain.InvitationState) error {
	return s.client.Set(ctx, inviteStatePrefix+agentID, string(state), inviteStateTTL).Err()
}

func (s *invitationStore) GetState(ctx context.Context, agentID string) (domain.InvitationState, error) {
	val, err := s.client.Get(ctx, inviteStatePrefix+agentID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInvitationNotFound
		}
		return "", err
	}
	return domain.InvitationState(val), nil
}

func unmarshalInvitation(payload []byte) (*domain.Invitation, error) {
	var invitation domain.Invitation
	if err := json.Unmarshal(payload, &invitation); err != nil {
		return nil, err
	}
	return &invitation, nil
}
