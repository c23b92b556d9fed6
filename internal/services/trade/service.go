package trade

//go:generate mockgen -destination=mock/mock_service.go -package=mocktrade -source=service.go

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/tag"
)

// DefaultReplyTimeout bounds how long an open offer waits for the
// receiver's answer.
const DefaultReplyTimeout = 5 * time.Minute

// Offer is one open trade proposal.
type Offer struct {
	ID         string
	SenderID   string
	ReceiverID string
	Creature   *entities.Creature
}

// Result is the outcome of a resolved trade.
type Result struct {
	Offer    *Offer
	Received *entities.Creature
}

// Service defines the trade service interface
type Service interface {
	// Open validates and registers a trade offer keyed by the offer
	// message id
	Open(ctx context.Context, offerID, senderID, receiverID, creatureTag string) (*Offer, error)

	// Await blocks until the offer resolves or the reply window closes;
	// a timeout discards the offer with no side effects
	Await(ctx context.Context, offerID string) (*Result, error)

	// Reply answers an open offer with the receiver's counterpart tag;
	// replies from anyone but the named receiver are ignored
	Reply(ctx context.Context, offerID, fromID, text string) error
}

// service implements the Service interface
type service struct {
	creatureRepo creatures.Repository
	replyTimeout time.Duration
	logger       zerolog.Logger

	mu      sync.Mutex
	pending map[string]*pendingOffer
}

type pendingOffer struct {
	offer *Offer
	done  chan *Result
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	CreatureRepo creatures.Repository // Required
	ReplyTimeout time.Duration        // Optional, defaults to 5m
	Logger       *zerolog.Logger      // Optional, discards when nil
}

// NewService creates a new trade service
func NewService(cfg *ServiceConfig) Service {
	if cfg.CreatureRepo == nil {
		panic("creature repository is required")
	}

	timeout := cfg.ReplyTimeout
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &service{
		creatureRepo: cfg.CreatureRepo,
		replyTimeout: timeout,
		logger:       logger,
		pending:      make(map[string]*pendingOffer),
	}
}

// Open validates and registers a trade offer
func (s *service) Open(ctx context.Context, offerID, senderID, receiverID, creatureTag string) (*Offer, error) {
	if offerID == "" {
		return nil, apperr.InvalidArgument("offer ID is required")
	}
	if senderID == "" || receiverID == "" {
		return nil, apperr.InvalidArgument("sender and receiver are required")
	}
	if senderID == receiverID {
		return nil, apperr.InvalidArgument("you cannot trade with yourself")
	}

	creature, err := s.creatureRepo.GetByTag(ctx, senderID, creatureTag)
	if err != nil {
		return nil, err
	}

	offer := &Offer{
		ID:         offerID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Creature:   creature,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[offerID]; exists {
		return nil, apperr.Conflictf("offer '%s' is already open", offerID)
	}
	s.pending[offerID] = &pendingOffer{
		offer: offer,
		done:  make(chan *Result, 1),
	}

	return offer, nil
}

// Await blocks until the offer resolves or the reply window closes
func (s *service) Await(ctx context.Context, offerID string) (*Result, error) {
	s.mu.Lock()
	p, exists := s.pending[offerID]
	s.mu.Unlock()
	if !exists {
		return nil, apperr.NotFoundf("no open offer '%s'", offerID)
	}

	timer := time.NewTimer(s.replyTimeout)
	defer timer.Stop()

	select {
	case result := <-p.done:
		return settle(result)
	case <-timer.C:
		// A reply may have resolved the offer between the timer firing
		// and this discard; the channel read settles the race.
		if s.discard(offerID) {
			return nil, apperr.Timeout("the trade offer expired with no reply")
		}
		return settle(<-p.done)
	case <-ctx.Done():
		if s.discard(offerID) {
			return nil, ctx.Err()
		}
		return settle(<-p.done)
	}
}

// settle maps an aborted resolution (nil on the channel) to an error.
func settle(result *Result) (*Result, error) {
	if result == nil {
		return nil, apperr.Conflict("the trade was called off")
	}
	return result, nil
}

// Reply answers an open offer with the receiver's counterpart tag
func (s *service) Reply(ctx context.Context, offerID, fromID, text string) error {
	s.mu.Lock()
	p, exists := s.pending[offerID]
	s.mu.Unlock()
	if !exists {
		return apperr.NotFoundf("no open offer '%s'", offerID)
	}
	if fromID != p.offer.ReceiverID {
		// Not the receiver; leave the offer open
		return nil
	}

	counterTag := tag.Normalize(strings.TrimSpace(text))
	received, err := s.creatureRepo.GetByTag(ctx, p.offer.ReceiverID, counterTag)
	if err != nil {
		// A bad answer burns the offer rather than leaving the sender
		// hanging for the full window.
		if s.discard(offerID) {
			p.done <- nil
		}
		return err
	}

	// Claim the offer before touching storage so concurrent replies
	// resolve it exactly once.
	if !s.discard(offerID) {
		return apperr.Conflictf("offer '%s' was already resolved", offerID)
	}

	err = s.creatureRepo.SwapOwners(ctx,
		creatures.Ref{OwnerID: p.offer.SenderID, Tag: p.offer.Creature.Tag},
		creatures.Ref{OwnerID: p.offer.ReceiverID, Tag: received.Tag},
	)
	if err != nil {
		s.logger.Error().Str("offer_id", offerID).Err(err).Msg("trade swap failed")
		p.done <- nil
		return fmt.Errorf("failed to swap creatures: %w", err)
	}

	p.done <- &Result{Offer: p.offer, Received: received}
	return nil
}

// discard removes the offer from the registry, reporting whether this
// caller owned the removal.
func (s *service) discard(offerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[offerID]; !exists {
		return false
	}
	delete(s.pending, offerID)
	return true
}
