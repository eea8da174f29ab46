package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env       string `mapstructure:"env"`
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type MongoConfig struct {
	URI                     string `mapstructure:"uri"`
	Database                string `mapstructure:"database"`
	UsersCollection         string `mapstructure:"users_collection"`
	ConversationsCollection string `mapstructure:"conversations_collection"`
	MessagesCollection      string `mapstructure:"messages_collection"`
	MembersCollection       string `mapstructure:"members_collection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaConfig struct {
	Brokers                  []string `mapstructure:"brokers"`
	TopicMessageSent         string   `mapstructure:"topic_message_sent"`
	TopicConversationUpdated string   `mapstructure:"topic_conversation_updated"`
	TopicPresenceChanged     string   `mapstructure:"topic_presence_changed"`
}

type TypingConfig struct {
	TTLMillis int `mapstructure:"ttl_millis"`
}

type Config struct {
	App      AppConfig    `mapstructure:"app"`
	Mongo    MongoConfig  `mapstructure:"mongodb"`
	Redis    RedisConfig  `mapstructure:"redis"`
	Kafka    KafkaConfig  `mapstructure:"kafka"`
	Typing   TypingConfig `mapstructure:"typing"`
	LogLevel string       `mapstructure:"log.level"`

	// derived values
	RequestTimeout time.Duration
	TypingTTL      time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.App.Port == 0 {
		c.App.Port = 8084
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "dmdb"
	}
	if c.Mongo.UsersCollection == "" {
		c.Mongo.UsersCollection = "users"
	}
	if c.Mongo.ConversationsCollection == "" {
		c.Mongo.ConversationsCollection = "conversations"
	}
	if c.Mongo.MessagesCollection == "" {
		c.Mongo.MessagesCollection = "messages"
	}
	if c.Mongo.MembersCollection == "" {
		c.Mongo.MembersCollection = "conversation_members"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "dm"
	}
	if c.Kafka.TopicMessageSent == "" {
		c.Kafka.TopicMessageSent = "message.sent"
	}
	if c.Kafka.TopicConversationUpdated == "" {
		c.Kafka.TopicConversationUpdated = "conversation.updated"
	}
	if c.Kafka.TopicPresenceChanged == "" {
		c.Kafka.TopicPresenceChanged = "presence.changed"
	}
	if c.Typing.TTLMillis == 0 {
		c.Typing.TTLMillis = 3000
	}
	c.RequestTimeout = 10 * time.Second
	c.TypingTTL = time.Duration(c.Typing.TTLMillis) * time.Millisecond
}
