package clickhouse

import (
	"time"

	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
)

func (s *RepositorySuite) TestWatermarkUpsert() {
	s.metrics.EXPECT().Observe(gomock.Any(), gomock.Nil(), gomock.Any()).AnyTimes()

	_, found, err := s.repo.Watermark(s.testCtx, model.StreamPrices)
	s.Require().NoError(err)
	s.False(found)

	first := time.Now().UTC().Truncate(time.Second).Add(-time.Minute)
	second := first.Add(30 * time.Second)

	s.Require().NoError(s.repo.AdvanceWatermark(s.testCtx, model.StreamPrices, first))
	s.Require().NoError(s.repo.AdvanceWatermark(s.testCtx, model.StreamPrices, second))

	got, found, err := s.repo.Watermark(s.testCtx, model.StreamPrices)
	s.Require().NoError(err)
	s.True(found)
	s.True(got.Equal(second), "watermark = %v, want %v", got, second)

	_, found, err = s.repo.Watermark(s.testCtx, model.StreamTransactions)
	s.Require().NoError(err)
	s.False(found)

	s.Equal(uint64(1), s.countRows("sync_watermarks"))
}
