// README: RabbitMQ publisher for booking lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"taxihub/internal/infra"
	"taxihub/internal/modules/booking"
	"taxihub/internal/types"
)

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

type bookingEvent struct {
	Kind       string    `json:"kind"`
	BookingID  types.ID  `json:"booking_id"`
	CustomerID types.ID  `json:"customer_id"`
	DriverID   *types.ID `json:"driver_id,omitempty"`
	CompanyID  *types.ID `json:"company_id,omitempty"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
}

// Publish sends the event to the booking topic exchange with a routing key of
// booking.<kind>.<id>, so consumers can bind per kind or per booking.
func (p *Publisher) Publish(ctx context.Context, e booking.Event) error {
	body, err := json.Marshal(bookingEvent{
		Kind:       e.Kind,
		BookingID:  e.BookingID,
		CustomerID: e.CustomerID,
		DriverID:   e.DriverID,
		CompanyID:  e.CompanyID,
		Status:     string(e.Status),
		At:         e.At,
	})
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx,
		infra.BookingExchange,
		"booking."+e.Kind+"."+string(e.BookingID),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   e.At,
			Body:        body,
		},
	)
}
