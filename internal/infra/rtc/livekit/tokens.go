// Package livekit issues room access tokens for the LiveKit SFU.
package livekit

import (
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/fanoo2/backend/internal/domain/integrations"
)

type Options struct {
	URL       string
	APIKey    string
	APISecret string
	TTL       time.Duration
}

type Issuer struct {
	opt Options
	now func() time.Time
}

func NewIssuer(opt Options) *Issuer {
	if opt.TTL <= 0 {
		opt.TTL = time.Hour
	}
	return &Issuer{opt: opt, now: time.Now}
}

// IssueToken signs a join-only grant for one room.
func (i *Issuer) IssueToken(req integrations.RoomTokenRequest) (integrations.RoomToken, error) {
	if i.opt.APIKey == "" || i.opt.APISecret == "" {
		return integrations.RoomToken{}, integrations.ErrDisabled
	}

	at := auth.NewAccessToken(i.opt.APIKey, i.opt.APISecret)
	at.AddGrant(&auth.VideoGrant{RoomJoin: true, Room: req.Room}).
		SetIdentity(req.Identity).
		SetValidFor(i.opt.TTL)

	jwt, err := at.ToJWT()
	if err != nil {
		return integrations.RoomToken{}, fmt.Errorf("sign livekit token: %w", err)
	}
	return integrations.RoomToken{
		Token:     jwt,
		URL:       i.opt.URL,
		ExpiresAt: i.now().Add(i.opt.TTL).UTC(),
	}, nil
}
