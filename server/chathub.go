package server

import (
	"github.com/sirupsen/logrus"

	"github.com/classverse/classverse"
)

// subscription moves a client onto a channel's live feed. An empty
// channelID drops whatever subscription the client currently holds.
type subscription struct {
	client    *client
	channelID string
}

// feedDelivery is a single event fanned out to a channel's
// subscribers. The author never receives their own events.
type feedDelivery struct {
	channelID string
	authorID  string
	event     classverse.FeedEvent
}

// directDelivery carries an event for one specific client. Reader
// goroutines hand these to the hub instead of touching the client's
// send channel, which only the hub goroutine writes and closes.
type directDelivery struct {
	client *client
	event  classverse.FeedEvent
}

type chathub struct {
	messenger classverse.Messenger
	member    classverse.Membership
	presence  classverse.Presence

	clients  map[*client]bool
	channels map[string]map[*client]bool

	broadcast  chan feedDelivery
	direct     chan directDelivery
	subscribe  chan subscription
	register   chan *client
	unregister chan *client
}

// newChathub creates a chathub to handle client Websocket
// connections and fan out channel feed events.
func newChathub(m classverse.Messenger, mem classverse.Membership, p classverse.Presence) *chathub {
	return &chathub{
		messenger:  m,
		member:     mem,
		presence:   p,
		clients:    make(map[*client]bool),
		channels:   make(map[string]map[*client]bool),
		broadcast:  make(chan feedDelivery),
		direct:     make(chan directDelivery),
		subscribe:  make(chan subscription),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (h *chathub) run() {
	for {
		select {
		case client := <-h.register:
			logrus.WithField("user", client.User.ID).Info("registering client")
			h.clients[client] = true
			wsConnections.Inc()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case sub := <-h.subscribe:
			h.moveSubscription(sub.client, sub.channelID)
		case d := <-h.direct:
			if _, ok := h.clients[d.client]; !ok {
				continue
			}
			select {
			case d.client.send <- d.event:
			default:
				h.drop(d.client)
			}
		case d := <-h.broadcast:
			for client := range h.channels[d.channelID] {
				if client.User.ID == d.authorID {
					continue
				}
				select {
				case client.send <- d.event:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// moveSubscription keeps each client on at most one channel feed.
func (h *chathub) moveSubscription(c *client, channelID string) {
	if c.channelID != "" {
		if subs, ok := h.channels[c.channelID]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.channels, c.channelID)
			}
		}
	}

	c.channelID = channelID
	if channelID == "" {
		return
	}
	if h.channels[channelID] == nil {
		h.channels[channelID] = make(map[*client]bool)
	}
	h.channels[channelID][c] = true
}

// drop takes a client out of the hub. Closing the send channel lets
// writePump finish the close handshake, and closing the connection
// terminates readPump so a dropped peer does not linger until the
// next failed ping.
func (h *chathub) drop(c *client) {
	h.moveSubscription(c, "")
	delete(h.clients, c)
	wsConnections.Dec()
	close(c.send)
	if c.conn != nil {
		c.conn.Close()
	}
}

// deliver sends an event to a single client. Routed through the run
// loop so nothing races a drop on the send channel.
func (h *chathub) deliver(c *client, ev classverse.FeedEvent) {
	h.direct <- directDelivery{client: c, event: ev}
}

// BroadcastMessage fans a freshly stored message out to the channel's
// subscribers, skipping its author.
func (h *chathub) BroadcastMessage(msg *classverse.Message) {
	h.broadcast <- feedDelivery{
		channelID: msg.ChannelID,
		authorID:  msg.UserID,
		event: classverse.FeedEvent{
			Type:      classverse.EventMessageNew,
			ChannelID: msg.ChannelID,
			Message:   msg,
		},
	}
}

// BroadcastDeletion tells the channel's subscribers to remove a
// message, skipping the author who deleted it.
func (h *chathub) BroadcastDeletion(msg *classverse.Message) {
	h.broadcast <- feedDelivery{
		channelID: msg.ChannelID,
		authorID:  msg.UserID,
		event: classverse.FeedEvent{
			Type:      classverse.EventMessageDeleted,
			ChannelID: msg.ChannelID,
			MessageID: msg.ID,
		},
	}
}
