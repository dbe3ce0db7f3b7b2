package main

import (
	"fmt"
	"os"
	"time"

	ticketsMessage "dynamictickets/message"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func newHandler(c *cli.Context) (*Handler, error) {
	var watermillLogger watermill.LoggerAdapter = watermill.NopLogger{}
	if c.Bool("verbose") {
		watermillLogger = log.NewWatermill(logrus.NewEntry(logrus.StandardLogger()))
	}

	rdb := ticketsMessage.NewRedisClient(c.String("redis-addr"))

	sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        rdb,
		ConsumerGroup: "poison-queue-cli",
	}, watermillLogger)
	if err != nil {
		return nil, err
	}

	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, watermillLogger)
	if err != nil {
		return nil, err
	}

	return NewHandler(c.String("topic"), sub, pub, c.Duration("idle-timeout")), nil
}

func main() {
	app := &cli.App{
		Name:  "poison-queue",
		Usage: "Manage the poison queue of the dynamictickets service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "address of the Redis broker",
				EnvVars: []string{"REDIS_ADDR"},
				Value:   "localhost:6379",
			},
			&cli.StringFlag{
				Name:  "topic",
				Usage: "poison queue topic",
				Value: ticketsMessage.PoisonQueueTopic,
			},
			&cli.DurationFlag{
				Name:  "idle-timeout",
				Usage: "stop when no message arrives for this long",
				Value: 2 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log broker activity",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "preview",
				Usage: "preview messages",
				Action: func(c *cli.Context) error {
					h, err := newHandler(c)
					if err != nil {
						return err
					}

					messages, err := h.Preview(c.Context)
					if err != nil {
						return err
					}

					for _, m := range messages {
						fmt.Printf("%v\t%v\t%v\n", m.ID, m.OriginalTopic, m.Reason)
					}

					return nil
				},
			},
			{
				Name:      "remove",
				ArgsUsage: "<message_id>",
				Usage:     "remove message",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("expected exactly one message id", 1)
					}

					h, err := newHandler(c)
					if err != nil {
						return err
					}

					return h.Remove(c.Context, c.Args().First())
				},
			},
			{
				Name:      "requeue",
				ArgsUsage: "<message_id>",
				Usage:     "send message back to its original topic",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("expected exactly one message id", 1)
					}

					h, err := newHandler(c)
					if err != nil {
						return err
					}

					return h.Requeue(c.Context, c.Args().First())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("Poison queue command failed")
	}
}
