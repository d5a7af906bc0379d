package app

import (
	"context"
	"sync"

	"github.com/fd1az/quote-engine/business/pricing/domain"
)

// PricingService coordinates ladder fetching for the two legs of a token.
type PricingService struct {
	books OrderbookProvider
}

// NewPricingService creates a new PricingService with the given provider.
func NewPricingService(books OrderbookProvider) *PricingService {
	return &PricingService{books: books}
}

// Legs holds the token and pair ladders of one venue. Either may be nil.
type Legs struct {
	Token *domain.Ladder
	Pair  *domain.Ladder
}

// GetLegs fetches the token and pair ladders concurrently.
func (s *PricingService) GetLegs(ctx context.Context, venue, token, pair string) Legs {
	var (
		legs Legs
		wg   sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		legs.Token = s.books.GetOrderbook(ctx, venue, token)
	}()
	go func() {
		defer wg.Done()
		legs.Pair = s.books.GetOrderbook(ctx, venue, pair)
	}()
	wg.Wait()
	return legs
}

// BestBid returns the best bid of symbol on venue, or false if unavailable.
func (s *PricingService) BestBid(ctx context.Context, venue, symbol string) (float64, bool) {
	l := s.books.GetOrderbook(ctx, venue, symbol)
	if l == nil || l.BestBid <= 0 {
		return 0, false
	}
	return l.BestBid, true
}
