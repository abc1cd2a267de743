package mq_client

import (
	"io/ioutil"
	"os"

	"github.com/streadway/amqp"
	yaml "gopkg.in/yaml.v2"
)

var AMQPCfg *MQClientConfig

func CreateAMQP() (*amqp.Connection, error) {
	if err := LoadConfig(); err != nil {
		return nil, err
	}

	rabbitmq_username := os.Getenv("RABBITMQ_USERNAME")
	rabbitmq_password := os.Getenv("RABBITMQ_PASSWORD")
	rabbitmq_host := os.Getenv("RABBITMQ_HOST")
	rabbitmq_port := os.Getenv("RABBITMQ_PORT")

	connection, err := amqp.Dial("amqp://" + rabbitmq_username + ":" + rabbitmq_password + "@" + rabbitmq_host + ":" + rabbitmq_port)
	if err != nil {
		return nil, err
	}

	return connection, nil
}

func LoadConfig() error {
	buf, err := ioutil.ReadFile("config/amqp.yml")
	if err != nil {
		return err
	}

	c := &MQClientConfig{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return err
	}

	AMQPCfg = c

	return nil
}

// The topology is small and fixed, so the lookups below are plain switches
// over the worker and exchange ids.

func GetPrefetchCount(id string) int {
	switch id {
	case "order_processor":
		return AMQPCfg.Channel.OrderProcessor.Prefetch
	case "execution_processor":
		return AMQPCfg.Channel.ExecutionProcessor.Prefetch
	default:
		return 0
	}
}

func findBinding(id string) Binding {
	switch id {
	case "order_processor":
		return AMQPCfg.Binding.OrderProcessor
	case "execution_processor":
		return AMQPCfg.Binding.ExecutionProcessor
	case "events_processor":
		return AMQPCfg.Binding.EventsProcessor
	default:
		return Binding{}
	}
}

func findQueue(id string) Queue {
	switch id {
	case "order_processor":
		return AMQPCfg.Queue.OrderProcessor
	case "execution_processor":
		return AMQPCfg.Queue.ExecutionProcessor
	case "events_processor":
		return AMQPCfg.Queue.EventsProcessor
	default:
		return Queue{}
	}
}

func GetBindingExchangeId(id string) string {
	return findBinding(id).Exchange
}

func GetBindingQueue(id string) Queue {
	return findQueue(findBinding(id).Queue)
}

func GetRoutingKey(id string) string {
	return GetBindingQueue(id).Name
}

func GetExchange(id string) (string, string) {
	switch id {
	case "routing":
		return AMQPCfg.Exchange.Routing.Name, AMQPCfg.Exchange.Routing.Type
	case "notification":
		return AMQPCfg.Exchange.Notification.Name, AMQPCfg.Exchange.Notification.Type
	case "events":
		return AMQPCfg.Exchange.Events.Name, AMQPCfg.Exchange.Events.Type
	default:
		return "", ""
	}
}
