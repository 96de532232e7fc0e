package mqtt

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/cwire/core/station"
	"github.com/kilianp07/cwire/infra/logger"
	"github.com/kilianp07/cwire/pkg/export"
)

// Config defines the connection parameters for the station feed.
type Config struct {
	Broker     string      `json:"broker"`
	ClientID   string      `json:"client_id"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Topic      string      `json:"topic"`
	QoS        byte        `json:"qos"`
	Delimiter  string      `json:"delimiter"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	AuthMethod string      `json:"auth_method"`
	TLSConfig  *tls.Config `json:"-"`
}

// SetDefaults fills optional fields.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "cwire/stations"
	}
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
}

// Validate checks the fields a subscriber needs.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt qos %d out of range", c.QoS)
	}
	return nil
}

// Handler receives the stations decoded from feed messages. It is called
// from the MQTT client's goroutine.
type Handler interface {
	Apply(s station.Station) error
	// Reject is told about every line that could not be decoded.
	Reject(err error)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Subscriber feeds station lines published on an MQTT topic to a Handler.
// Each message holds one or more id;capacity;load lines without header.
type Subscriber struct {
	cli     pahoClient
	topic   string
	qos     byte
	delim   string
	handler Handler
	log     logger.Logger
}

// NewSubscriber connects to the broker and subscribes to cfg.Topic. The
// subscription is renewed on every reconnect.
func NewSubscriber(cfg Config, h Handler) (*Subscriber, error) {
	if h == nil {
		return nil, fmt.Errorf("mqtt subscriber needs a handler")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "cwire-" + uuid.NewString()
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_subscriber")
	s := &Subscriber{topic: cfg.Topic, qos: cfg.QoS, delim: cfg.Delimiter, handler: h, log: log}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected, subscribing to %s", s.topic)
		if token := c.Subscribe(s.topic, s.qos, s.onMessage); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	s.cli = c
	return s, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

func (s *Subscriber) onMessage(_ paho.Client, msg paho.Message) {
	dec := export.NewDecoder(bytes.NewReader(msg.Payload()), export.WithDelimiter(s.delim), export.WithoutHeader())
	for {
		st, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if errors.Is(err, export.ErrMalformedRecord) {
			s.log.Warnf("%s: %v", msg.Topic(), err)
			s.handler.Reject(err)
			continue
		}
		if err != nil {
			s.log.Errorf("%s: read message: %v", msg.Topic(), err)
			return
		}
		if err := s.handler.Apply(st); err != nil {
			s.log.Errorf("apply station %d: %v", st.ID, err)
		}
	}
}

// Close disconnects from the broker.
func (s *Subscriber) Close() {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
}
