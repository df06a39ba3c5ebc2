// Package gochannel wires the in-process watermill channel used when the
// dispatcher runs without a broker.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// CreateChannel returns the publisher and subscriber halves of one in-memory
// pub/sub. Trigger events published here never leave the process, which is
// the point: local development needs no Kafka.
func CreateChannel(logger watermill.LoggerAdapter) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            1000,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)

	// One GoChannel serves as both halves.
	return pubSub, pubSub, nil
}

// CreateTestChannel trades throughput for determinism: publishes block until
// the subscriber acks, so a test can publish and immediately assert on the
// handler's side effects.
func CreateTestChannel(logger watermill.LoggerAdapter) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            10,
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: true,
		},
		logger,
	)

	return pubSub, pubSub, nil
}
