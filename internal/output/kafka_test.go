package output_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/chrisdamba/expcheck/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var run models.ValidationRun
		if err := json.Unmarshal(val, &run); err != nil {
			return err
		}
		if run.ID != "ck1" || run.Status != models.RunStatusInvalid || run.ErrorCount != 2 {
			return fmt.Errorf("unexpected event: %+v", run)
		}
		return nil
	})

	p := output.NewKafkaPublisherWithProducer(producer, "validation_events", zap.NewNop())
	err := p.Publish(context.Background(), models.ValidationRun{
		ID:         "ck1",
		Status:     models.RunStatusInvalid,
		Errors:     []string{"a", "b"},
		ErrorCount: 2,
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestKafkaPublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := output.NewKafkaPublisherWithProducer(producer, "validation_events", zap.NewNop())
	err := p.Publish(context.Background(), models.ValidationRun{ID: "ck2"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.ErrorContains(t, err, "validation_events")
	require.NoError(t, p.Close())
}

func TestKafkaPublishAfterClose(t *testing.T) {
	p := output.NewKafkaPublisherWithProducer(mocks.NewSyncProducer(t, nil), "t", zap.NewNop())
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err := p.Publish(context.Background(), models.ValidationRun{ID: "ck3"})
	assert.EqualError(t, err, "kafka producer is closed")
}

func TestKafkaPublishCancelled(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	p := output.NewKafkaPublisherWithProducer(producer, "t", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, models.ValidationRun{ID: "ck4"})
	assert.True(t, errors.Is(err, context.Canceled))
	require.NoError(t, p.Close())
}
