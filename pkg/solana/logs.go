package solana

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	maxReconnectAttempts = 10
	reconnectDelay       = 5 * time.Second
)

// LogsCallback is invoked for every logsNotification received on a
// program subscription.
type LogsCallback func(signature string, logs []string)

type subscriptionState string

const (
	StateConnecting   subscriptionState = "connecting"
	StateConnected    subscriptionState = "connected"
	StateDisconnected subscriptionState = "disconnected"
	StateStopped      subscriptionState = "stopped"
)

// programSubscription tracks one logsSubscribe stream for a program ID.
type programSubscription struct {
	ProgramID   string
	Conn        *websocket.Conn
	Status      subscriptionState
	StopCh      chan bool
	ReconnectCh chan bool
	Callback    LogsCallback
	mu          sync.RWMutex
}

// LogsSubscriber maintains logsSubscribe WebSocket streams keyed by
// program ID, reconnecting on read failures.
type LogsSubscriber struct {
	wsEndpoint    string
	subscriptions sync.Map // programID -> *programSubscription
}

func NewLogsSubscriber(wsEndpoint string) *LogsSubscriber {
	return &LogsSubscriber{wsEndpoint: wsEndpoint}
}

// Subscribe starts monitoring logs mentioning programID. It is a no-op
// if a subscription for the program already exists.
func (s *LogsSubscriber) Subscribe(programID string, callback LogsCallback) {
	if _, exists := s.subscriptions.Load(programID); exists {
		log.WithFields(log.Fields{
			"program_id": programID,
		}).Warn("Already subscribed to program logs")
		return
	}

	sub := &programSubscription{
		ProgramID:   programID,
		Status:      StateConnecting,
		StopCh:      make(chan bool, 1),
		ReconnectCh: make(chan bool, 1),
		Callback:    callback,
	}
	s.subscriptions.Store(programID, sub)

	go s.connectAndRead(sub)
}

// Unsubscribe stops the subscription for programID if one exists.
func (s *LogsSubscriber) Unsubscribe(programID string) {
	value, exists := s.subscriptions.Load(programID)
	if !exists {
		return
	}
	sub := value.(*programSubscription)

	sub.mu.Lock()
	sub.Status = StateStopped
	if sub.Conn != nil {
		sub.Conn.Close()
	}
	sub.mu.Unlock()

	select {
	case sub.StopCh <- true:
	default:
	}

	s.subscriptions.Delete(programID)
	log.WithFields(log.Fields{
		"program_id": programID,
	}).Info("Unsubscribed from program logs")
}

// Close stops every active subscription.
func (s *LogsSubscriber) Close() {
	s.subscriptions.Range(func(key, _ interface{}) bool {
		s.Unsubscribe(key.(string))
		return true
	})
}

func (s *LogsSubscriber) connectAndRead(sub *programSubscription) {
	reconnectAttempts := 0

	for {
		select {
		case <-sub.StopCh:
			return
		default:
			if reconnectAttempts >= maxReconnectAttempts {
				log.WithFields(log.Fields{
					"program_id": sub.ProgramID,
					"attempts":   reconnectAttempts,
				}).Error("Max reconnection attempts reached, giving up")
				sub.mu.Lock()
				sub.Status = StateStopped
				sub.mu.Unlock()
				s.subscriptions.Delete(sub.ProgramID)
				return
			}

			sub.mu.Lock()
			sub.Status = StateConnecting
			sub.mu.Unlock()

			c, _, err := websocket.DefaultDialer.Dial(s.wsEndpoint, nil)
			if err != nil {
				reconnectAttempts++
				log.WithFields(log.Fields{
					"program_id": sub.ProgramID,
					"attempt":    reconnectAttempts,
					"error":      err.Error(),
				}).Error("Failed to connect to Solana WebSocket")
				time.Sleep(reconnectDelay)
				continue
			}

			sub.mu.Lock()
			sub.Conn = c
			sub.Status = StateConnected
			sub.mu.Unlock()

			reconnectAttempts = 0
			log.WithFields(log.Fields{
				"program_id": sub.ProgramID,
			}).Info("Connected to Solana WebSocket")

			subscribeMsg := map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      1,
				"method":  "logsSubscribe",
				"params": []interface{}{
					map[string]interface{}{
						"mentions": []string{sub.ProgramID},
					},
					map[string]interface{}{
						"commitment": "confirmed",
					},
				},
			}

			if err := c.WriteJSON(subscribeMsg); err != nil {
				log.WithFields(log.Fields{
					"program_id": sub.ProgramID,
					"error":      err.Error(),
				}).Error("Failed to send subscription message")
				c.Close()
				reconnectAttempts++
				time.Sleep(reconnectDelay)
				continue
			}

			go s.readMessages(sub)

			select {
			case <-sub.ReconnectCh:
				log.WithFields(log.Fields{
					"program_id": sub.ProgramID,
				}).Info("Reconnect requested")
				c.Close()
				time.Sleep(reconnectDelay)
			case <-sub.StopCh:
				c.Close()
				return
			}
		}
	}
}

// logsNotification mirrors the logsSubscribe notification payload.
type logsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Signature string   `json:"signature"`
				Err       any      `json:"err"`
				Logs      []string `json:"logs"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

func (s *LogsSubscriber) readMessages(sub *programSubscription) {
	defer func() {
		sub.mu.Lock()
		if sub.Conn != nil {
			sub.Conn.Close()
		}
		if sub.Status != StateStopped {
			sub.Status = StateDisconnected
		}
		stopped := sub.Status == StateStopped
		sub.mu.Unlock()

		if stopped {
			return
		}
		select {
		case sub.ReconnectCh <- true:
		default:
		}
	}()

	for {
		sub.mu.RLock()
		c := sub.Conn
		sub.mu.RUnlock()

		if c == nil {
			return
		}

		_, message, err := c.ReadMessage()
		if err != nil {
			sub.mu.RLock()
			stopped := sub.Status == StateStopped
			sub.mu.RUnlock()
			if !stopped {
				log.WithFields(log.Fields{
					"program_id": sub.ProgramID,
					"error":      err.Error(),
				}).Error("Error reading message")
			}
			return
		}

		var notification logsNotification
		if err := json.Unmarshal(message, &notification); err != nil {
			continue
		}
		if notification.Method != "logsNotification" {
			continue
		}
		value := notification.Params.Result.Value
		if value.Err != nil {
			// Failed transactions carry no new launches worth parsing.
			continue
		}
		if sub.Callback != nil {
			sub.Callback(value.Signature, value.Logs)
		}
	}
}
