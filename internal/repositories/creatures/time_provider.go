package creatures

import "time"

//go:generate mockgen -destination=mock/mock_time_provider.go -package=mockcreatures github.com/treacherygg/pokebot/internal/repositories/creatures TimeProvider

type TimeProvider interface {
	Now() time.Time
}

type RealTimeProvider struct{}

func (r *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
