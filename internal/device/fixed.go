// Package device provides location sources for the search session.
package device

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okieraised/points-of-interests/internal/localsearch"
	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrNoFix = errors.New("device: no position configured")

// FixedProvider reports a configured position, as a stand-in for a GPS receiver.
type FixedProvider struct {
	mu       sync.Mutex
	position *models.Coordinate
	accuracy float64
	status   localsearch.AuthorizationStatus
	grant    localsearch.AuthorizationStatus
	enabled  bool
	now      func() time.Time
}

// Option configures a FixedProvider.
type Option func(*FixedProvider)

// WithAuthorization sets the initial permission status and the status granted on request.
func WithAuthorization(status, grant localsearch.AuthorizationStatus) Option {
	return func(p *FixedProvider) {
		p.status = status
		p.grant = grant
	}
}

// WithServicesEnabled toggles the device-wide location switch.
func WithServicesEnabled(enabled bool) Option {
	return func(p *FixedProvider) {
		p.enabled = enabled
	}
}

// WithAccuracy sets the reported horizontal accuracy in meters.
func WithAccuracy(meters float64) Option {
	return func(p *FixedProvider) {
		p.accuracy = meters
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *FixedProvider) {
		p.now = now
	}
}

// NewFixedProvider creates a provider at position. A nil position reports no fix.
func NewFixedProvider(position *models.Coordinate, opts ...Option) *FixedProvider {
	p := &FixedProvider{
		position: position,
		accuracy: 25,
		status:   localsearch.AuthorizationNotDetermined,
		grant:    localsearch.AuthorizationAuthorized,
		enabled:  true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *FixedProvider) AuthorizationStatus() localsearch.AuthorizationStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *FixedProvider) ServicesEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// RequestAuthorization moves a not-determined status to the configured grant.
func (p *FixedProvider) RequestAuthorization(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == localsearch.AuthorizationNotDetermined {
		p.status = p.grant
		log.Info().Str("status", p.status.String()).Msg("Location authorization decided")
	}
	return nil
}

func (p *FixedProvider) RequestLocation(ctx context.Context) (models.Location, error) {
	if err := ctx.Err(); err != nil {
		return models.Location{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case !p.enabled:
		return models.Location{}, localsearch.ErrServicesDisabled
	case p.status == localsearch.AuthorizationDenied:
		return models.Location{}, localsearch.ErrLocationDenied
	case p.status == localsearch.AuthorizationRestricted:
		return models.Location{}, localsearch.ErrLocationRestricted
	case p.position == nil:
		return models.Location{}, ErrNoFix
	}

	return models.Location{
		Coordinate:         *p.position,
		Timestamp:          p.now(),
		HorizontalAccuracy: p.accuracy,
	}, nil
}

// SetAuthorization changes the permission status, as the user would in system settings.
func (p *FixedProvider) SetAuthorization(status localsearch.AuthorizationStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

func (p *FixedProvider) SetServicesEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// MoveTo changes the reported position.
func (p *FixedProvider) MoveTo(c models.Coordinate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = &c
}
