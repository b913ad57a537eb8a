// client.go
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/soir-live/soir/internal/conf"
	"github.com/soir-live/soir/internal/logging"
)

var log = logging.ForService("mqtt")

// client implements the Client interface.
type client struct {
	config          Config
	recorder        ConnectionRecorder
	internalClient  mqtt.Client
	lastConnAttempt time.Time
	mu              sync.Mutex
	reconnectTimer  *time.Timer
	reconnectStop   chan struct{}
}

// NewClient creates a new MQTT client with the provided configuration.
// recorder may be nil, in which case connection observations are discarded.
func NewClient(settings *conf.Settings, recorder ConnectionRecorder) Client {
	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &client{
		config: Config{
			Broker:   settings.MQTT.Broker,
			ClientID: "soir-" + settings.Main.Name,
			Username: settings.MQTT.Username,
			Password: settings.MQTT.Password,
			Topic:    settings.MQTT.Topic,
			TLS: TLSConfig{
				Enabled:            settings.MQTT.TLS.Enabled || usesTLSScheme(settings.MQTT.Broker),
				CACert:             settings.MQTT.TLS.CACert,
				ClientCert:         settings.MQTT.TLS.ClientCert,
				ClientKey:          settings.MQTT.TLS.ClientKey,
				InsecureSkipVerify: settings.MQTT.TLS.InsecureSkipVerify,
			},
		},
		recorder:      recorder,
		reconnectStop: make(chan struct{}),
	}
}

// Connect attempts to establish a connection to the MQTT broker.
// It first resolves the broker's hostname and then attempts to connect.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastConnAttempt) < 1*time.Minute {
		return fmt.Errorf("connection attempt too recent")
	}
	c.lastConnAttempt = time.Now()

	if err := c.resolveBrokerHostname(); err != nil {
		return fmt.Errorf("failed to resolve broker hostname: %w", err)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetConnectRetry(true)

	if c.config.TLS.Enabled {
		tlsConfig, err := buildTLSConfig(&c.config.TLS)
		if err != nil {
			return fmt.Errorf("failed to build TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	c.internalClient = mqtt.NewClient(opts)

	token := c.internalClient.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	return nil
}

// resolveBrokerHostname attempts to resolve the hostname of the MQTT broker.
func (c *client) resolveBrokerHostname() error {
	u, err := url.Parse(c.config.Broker)
	if err != nil {
		return fmt.Errorf("invalid broker URL: %w", err)
	}

	host := u.Hostname()
	if _, err := net.LookupHost(host); err != nil {
		return fmt.Errorf("failed to resolve hostname %s: %w", host, err)
	}

	return nil
}

// buildTLSConfig loads CA/client certificate material for a secured broker.
// File-existence errors are checked up front so Connect fails fast with a
// message naming the missing file, rather than surfacing an opaque dial error.
func buildTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify} //nolint:gosec // operator opt-in via MQTTTLSConfig.InsecureSkipVerify

	if cfg.CACert != "" {
		if _, err := os.Stat(cfg.CACert); err != nil {
			return nil, fmt.Errorf("CA certificate file does not exist: %s", cfg.CACert)
		}
		pem, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse CA certificate: %s", cfg.CACert)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCert != "" || cfg.ClientKey != "" {
		if _, err := os.Stat(cfg.ClientCert); err != nil {
			return nil, fmt.Errorf("client certificate file does not exist: %s", cfg.ClientCert)
		}
		if _, err := os.Stat(cfg.ClientKey); err != nil {
			return nil, fmt.Errorf("client key file does not exist: %s", cfg.ClientKey)
		}
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client keypair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Publish sends a message to the specified topic on the MQTT broker.
func (c *client) Publish(ctx context.Context, topic string, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnectedLocked() {
		err := fmt.Errorf("not connected to MQTT broker")
		c.recorder.RecordMQTTPublish(topic, err)
		return err
	}

	token := c.internalClient.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		err := fmt.Errorf("publish timeout")
		c.recorder.RecordMQTTPublish(topic, err)
		return err
	}
	err := token.Error()
	c.recorder.RecordMQTTPublish(topic, err)
	return err
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnectedLocked()
}

func (c *client) isConnectedLocked() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient != nil && c.internalClient.IsConnected() {
		c.internalClient.Disconnect(250)
	}
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	select {
	case <-c.reconnectStop:
	default:
		close(c.reconnectStop)
	}
}

func (c *client) onConnect(_ mqtt.Client) {
	log.Info("connected to MQTT broker", "broker", c.config.Broker)
	c.recorder.RecordMQTTConnection(true)
}

func (c *client) onConnectionLost(_ mqtt.Client, err error) {
	log.Warn("connection to MQTT broker lost", "broker", c.config.Broker, "error", err)
	c.recorder.RecordMQTTConnection(false)
	c.startReconnectTimer()
}

func (c *client) startReconnectTimer() {
	c.reconnectTimer = time.AfterFunc(time.Minute, func() {
		select {
		case <-c.reconnectStop:
			return
		default:
			c.reconnectWithBackoff()
		}
	})
}

func (c *client) reconnectWithBackoff() {
	backoff := time.Second
	maxBackoff := 5 * time.Minute

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := c.Connect(ctx)
		cancel()

		if err == nil {
			log.Info("reconnected to MQTT broker", "broker", c.config.Broker)
			c.startReconnectTimer()
			return
		}

		log.Warn("failed to reconnect to MQTT broker", "broker", c.config.Broker, "error", err, "retry_in", backoff)

		select {
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		case <-c.reconnectStop:
			return
		}
	}
}
