package server

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/classverse/classverse"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

type client struct {
	conn *websocket.Conn
	send chan classverse.FeedEvent
	hub  *chathub
	User classverse.User

	// channelID is the feed the client is currently subscribed to.
	// Owned by the hub goroutine.
	channelID string
}

// digest decides how to handle an incoming event based on its type.
func (c *client) digest(ev classverse.FeedEvent) {
	switch ev.Type {
	case classverse.EventSubscribe:
		ok, err := c.hub.member.IsParticipant(c.User.ID, ev.ChannelID)
		if err != nil {
			logrus.Errorf("error checking membership for subscribe %v", err)
			c.sendError("unable to subscribe")
			return
		}
		if !ok {
			c.sendError("not a participant of that channel")
			return
		}
		c.hub.subscribe <- subscription{client: c, channelID: ev.ChannelID}
	case classverse.EventUnsubscribe:
		c.hub.subscribe <- subscription{client: c}
	case classverse.EventSend:
		msg, err := c.hub.messenger.SendMessage(c.User.ID, ev.ChannelID, ev.Content)
		if err != nil {
			logrus.Errorf("error storing message %v", err)
			c.sendError("unable to send message")
			return
		}
		messagesSent.Inc()

		// The author gets the stored message back on their own
		// connection so the hub can skip them during fanout.
		c.hub.deliver(c, classverse.FeedEvent{
			Type:      classverse.EventMessageNew,
			ChannelID: msg.ChannelID,
			Message:   msg,
		})
		c.hub.BroadcastMessage(msg)
	default:
		c.sendError("unknown event type")
	}
}

func (c *client) sendError(text string) {
	c.hub.deliver(c, classverse.FeedEvent{
		Type:  classverse.EventError,
		Error: text,
	})
}

// readPump listens for events on the Websocket connection and
// digests them off the connection goroutine.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		if c.hub.presence != nil {
			if err := c.hub.presence.MarkOffline(context.Background(), c.User.ID); err != nil {
				logrus.Errorf("error marking user offline %v", err)
			}
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.hub.presence != nil {
			if err := c.hub.presence.MarkOnline(context.Background(), c.User.ID); err != nil {
				logrus.Errorf("error refreshing presence %v", err)
			}
		}
		return nil
	})
	for {
		var ev classverse.FeedEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived, websocket.CloseGoingAway) {
				logrus.Info("websocket closed by client")
			} else {
				logrus.Errorf("websocket error %v", err)
			}
			return
		}

		c.digest(ev)
	}
}

// writePump listens for events from the chathub and sends them
// out on the Websocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(ev); err != nil {
				logrus.Errorf("Error writing to websocket %v", err)
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.Errorf("Error writing ping message. %v", err)
				return
			}
		}
	}
}
