package clickhouse

import (
	"sync"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
)

func (s *RepositorySuite) TestInsertSpotPricesIsIdempotent() {
	s.metrics.EXPECT().Observe(gomock.Any(), gomock.Nil(), gomock.Any()).AnyTimes()

	now := time.Now().UTC().Truncate(time.Second)
	prices := []model.SpotPrice{
		{Symbol: "ETHUSDT", Timestamp: now, Price: 2000},
		{Symbol: "ETHUSDT", Timestamp: now.Add(time.Second), Price: 2001},
	}

	inserted, err := s.repo.InsertSpotPrices(s.testCtx, prices)
	s.Require().NoError(err)
	s.Len(inserted, 2)

	inserted, err = s.repo.InsertSpotPrices(s.testCtx, append(prices, model.SpotPrice{
		Symbol: "ETHUSDT", Timestamp: now.Add(2 * time.Second), Price: 2002,
	}))
	s.Require().NoError(err)
	s.Require().Len(inserted, 1)
	s.True(inserted[0].Timestamp.Equal(now.Add(2 * time.Second)))

	s.Equal(uint64(3), s.countRows("spot_prices"))
}

func (s *RepositorySuite) TestSpotPriceLookups() {
	s.metrics.EXPECT().Observe(gomock.Any(), gomock.Nil(), gomock.Any()).AnyTimes()

	now := time.Now().UTC().Truncate(time.Second)
	_, err := s.repo.InsertSpotPrices(s.testCtx, []model.SpotPrice{
		{Symbol: "ETHUSDT", Timestamp: now.Add(-time.Second), Price: 1999},
		{Symbol: "ETHUSDT", Timestamp: now, Price: 2000},
	})
	s.Require().NoError(err)

	prices, err := s.repo.SpotPricesByTimestamps(s.testCtx, "ETHUSDT", []time.Time{now, now.Add(time.Hour)})
	s.Require().NoError(err)
	s.Len(prices, 1)
	price, ok := prices.At(now)
	s.True(ok)
	s.Equal(2000.0, price)

	latest, found, err := s.repo.LatestSpotPrice(s.testCtx, "ETHUSDT")
	s.Require().NoError(err)
	s.True(found)
	s.True(latest.Timestamp.Equal(now))

	at, found, err := s.repo.SpotPriceAt(s.testCtx, "ETHUSDT", now.Add(-time.Second))
	s.Require().NoError(err)
	s.True(found)
	s.Equal(1999.0, at.Price)

	_, found, err = s.repo.LatestSpotPrice(s.testCtx, "BTCUSDT")
	s.Require().NoError(err)
	s.False(found)
}

func (s *RepositorySuite) TestConcurrentSpotPriceWritersKeepOneLogicalRow() {
	s.metrics.EXPECT().Observe(gomock.Any(), gomock.Nil(), gomock.Any()).AnyTimes()

	now := time.Now().UTC().Truncate(time.Second)
	prices := []model.SpotPrice{{Symbol: "ETHUSDT", Timestamp: now, Price: 2000}}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.InsertSpotPrices(s.testCtx, prices)
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal(uint64(1), s.countRows("spot_prices"))
}
