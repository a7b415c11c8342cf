package booking

import (
	"context"

	"unilink/models"

	"go.uber.org/zap"
)

// Capacity reports how many seats are sold. A store failure reports an
// empty, not-sold-out route so browsing and checkout keep working.
func (s *DefaultBookingService) Capacity(ctx context.Context) models.Capacity {
	c, err := s.capacity(ctx)
	if err != nil {
		s.logger().Warn("Capacity check failed, reporting open", zap.Error(err))
		return models.Capacity{Count: 0, SoldOut: false, Limit: s.TicketLimit}
	}
	return c
}

func (s *DefaultBookingService) capacity(ctx context.Context) (models.Capacity, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	count, err := s.Repo.Count(ctx)
	if err != nil {
		return models.Capacity{}, err
	}
	return models.Capacity{
		Count:   count,
		SoldOut: count >= s.TicketLimit,
		Limit:   s.TicketLimit,
	}, nil
}

// Quote prices a ticket booked right now with the same window the
// checkout charges with.
func (s *DefaultBookingService) Quote(tripType models.TripType, addLuggage bool) models.Quote {
	return s.Pricer.Quote(tripType, addLuggage, s.now())
}
