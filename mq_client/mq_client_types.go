package mq_client

type Exchange struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Queue struct {
	Name    string `yaml:"name"`
	Durable bool   `yaml:"durable"`
}

type Binding struct {
	Queue      string `yaml:"queue"`
	CleanStart bool   `yaml:"clean_start"`
	Exchange   string `yaml:"exchange"`
}

type Channel struct {
	Prefetch int `yaml:"prefetch"`
}

type MQClientConfig struct {
	Exchange struct {
		Routing      Exchange `yaml:"routing"`
		Notification Exchange `yaml:"notification"`
		Events       Exchange `yaml:"events"`
	}
	Queue struct {
		OrderProcessor     Queue `yaml:"order_processor"`
		ExecutionProcessor Queue `yaml:"execution_processor"`
		EventsProcessor    Queue `yaml:"events_processor"`
	}
	Binding struct {
		OrderProcessor     Binding `yaml:"order_processor"`
		ExecutionProcessor Binding `yaml:"execution_processor"`
		EventsProcessor    Binding `yaml:"events_processor"`
	}
	Channel struct {
		OrderProcessor     Channel `yaml:"order_processor"`
		ExecutionProcessor Channel `yaml:"execution_processor"`
	}
}
