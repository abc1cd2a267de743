package main

import (
	"fmt"
	"os"

	"github.com/streadway/amqp"

	"github.com/omxtrade/omx/breaker"
	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/gateway"
	"github.com/omxtrade/omx/mq_client"
	"github.com/omxtrade/omx/workers/engines"
)

var Connection *amqp.Connection

func CreateWorker(id string, registry *breaker.Registry) engines.Worker {
	switch id {
	case "order_processor":
		return engines.NewOrderProcessorWorker(gateway.NewNatsGateway(), registry)
	case "execution_processor":
		return engines.NewExecutionProcessorWorker(registry)
	default:
		return nil
	}
}

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	mq_client.Connect()

	Connection = mq_client.Connection
	Channel := mq_client.GetChannel()

	registry := breaker.NewRegistry()

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start omx-engine: " + id)
		worker := CreateWorker(id, registry)

		prefetch := mq_client.GetPrefetchCount(id)

		if prefetch > 0 {
			mq_client.GetChannel().Qos(prefetch, 0, false)
		}

		binding_queue := mq_client.GetBindingQueue(id)
		binding_queue_id := mq_client.GetBindingExchangeId(id)
		exchange_name, exchange_kind := mq_client.GetExchange(binding_queue_id)
		routing_key := mq_client.GetRoutingKey(id)

		if err := Channel.ExchangeDeclare(exchange_name, exchange_kind, binding_queue.Durable, false, false, false, nil); err != nil {
			config.Logger.Errorf("Exchange Declare: %v\n", err)
			return
		}
		if _, err := Channel.QueueDeclare(binding_queue.Name, binding_queue.Durable, false, false, false, nil); err != nil {
			config.Logger.Errorf("Queue Declare: %v\n", err)
			return
		}
		Channel.QueueBind(binding_queue.Name, routing_key, exchange_name, false, nil)

		deliveries, err := Channel.Consume(binding_queue.Name, binding_queue.Name, false, false, false, false, nil)
		if err != nil {
			config.Logger.Errorf("Queue Consume: %v\n", err)
			return
		}

		go func(worker engines.Worker, deliveries <-chan amqp.Delivery) {
			for m := range deliveries {
				if err := worker.Process(m.Body); err == nil {
					m.Ack(false)
				} else {
					config.Logger.Errorf("Worker error: %v", err.Error())
					m.Nack(false, true)
				}
			}
		}(worker, deliveries)
	}

	select {}
}
