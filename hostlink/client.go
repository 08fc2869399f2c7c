package hostlink

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"go-mackie/config"
	"go-mackie/debug"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 500 // milliseconds
	keepAlive         = 30 * time.Second
	updateBuffer      = 256
	publishBuffer     = 256
)

type publication struct {
	topic   string
	payload []byte
}

// Client is the MQTT transport to the host.
//
// Inbound messages are decoded on paho's goroutines and queued on Updates;
// the surface loop consumes them one at a time. Outbound sets are queued
// and published in order by a single publisher goroutine, so Set never
// waits on the broker.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	updates  chan Update
	outbound chan publication

	mu        sync.RWMutex
	connected bool
	closed    bool
}

// Connect opens the broker connection and subscribes to the host topics.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetOrderMatters(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second).
		SetMaxReconnectInterval(30 * time.Second).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive).
		SetOnConnectHandler(func(_ pahomqtt.Client) { c.handleConnect() }).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.handleDisconnect(err) })
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	c.init(pahomqtt.NewClient(opts), cfg)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		c.stop()
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		c.stop()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	if err := c.subscribe(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// init wires c to an MQTT client and starts the publisher.
func (c *Client) init(client pahomqtt.Client, cfg config.MQTTConfig) {
	c.client = client
	c.cfg = cfg
	c.topics = Topics{Prefix: cfg.TopicPrefix}
	c.updates = make(chan Update, updateBuffer)
	c.outbound = make(chan publication, publishBuffer)
	go c.publish(c.outbound)
}

// stop ends the publisher without touching the connection.
func (c *Client) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.outbound)
		close(c.updates)
	}
}

// publish sends queued sets until the queue is closed. Failures are logged.
func (c *Client) publish(queue <-chan publication) {
	for p := range queue {
		token := c.client.Publish(p.topic, byte(c.cfg.QoS), false, p.payload)
		if !token.WaitTimeout(publishTimeout) {
			debug.Log("host", "publish %s: timeout after %v", p.topic, publishTimeout)
			continue
		}
		if err := token.Error(); err != nil {
			debug.Log("host", "publish %s: %v", p.topic, err)
		}
	}
}

// handleConnect runs on every connect, including reconnects.
func (c *Client) handleConnect() {
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	debug.Logger().Info("host link connected", "broker", c.cfg.Broker)

	// Clean sessions lose their subscriptions on reconnect.
	if err := c.subscribe(); err != nil {
		debug.Logger().Error("host link resubscribe", "err", err)
	}
}

func (c *Client) handleDisconnect(err error) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	debug.Logger().Warn("host link lost", "err", err)
}

func (c *Client) subscribe() error {
	topic := c.topics.Subscription()
	token := c.client.Subscribe(topic, byte(c.cfg.QoS), c.onMessage)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrSubscribeFailed, topic, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err)
	}
	return nil
}

func (c *Client) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	u, err := c.topics.Decode(msg.Topic(), msg.Payload())
	if err != nil {
		debug.Log("host", "drop %s: %v", msg.Topic(), err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.updates <- u:
	default:
		debug.Log("host", "update queue full, dropped %s %s", u.Kind, u.Param)
	}
}

// Updates delivers decoded host notifications.
func (c *Client) Updates() <-chan Update { return c.updates }

// IsConnected reports the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// Set queues a surface-originated value for publishing. It does not wait
// for the broker; a full queue drops the value.
func (c *Client) Set(session, param string, value float64) error {
	if !c.IsConnected() {
		c.mu.RLock()
		closed := c.closed
		c.mu.RUnlock()
		if closed {
			return ErrClosed
		}
		return ErrNotConnected
	}

	p := publication{topic: c.topics.Set(session, param), payload: EncodeSet(value)}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.outbound <- p:
		return nil
	default:
		return fmt.Errorf("%w: queue full, dropped %s", ErrPublishFailed, p.topic)
	}
}

// Close disconnects and closes Updates.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	close(c.outbound)
	close(c.updates)
	c.mu.Unlock()

	c.client.Disconnect(disconnectQuiesce)
	return nil
}
