// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/walejandromt/KicksEmu/internal/auth"
	"github.com/walejandromt/KicksEmu/internal/middleware"
	"github.com/walejandromt/KicksEmu/internal/protocol"
	"github.com/walejandromt/KicksEmu/internal/session"
)

// RoomWSHandler upgrades an authenticated player to the room websocket. The token is read
// from the auth_token cookie or the token query parameter.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, authErr := auth.AuthenticateJWT(requestToken(r))

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the kicks subprotocol")
			return
		}
		if authErr != nil {
			logger.WithError(authErr).WithField("remote", r.RemoteAddr).Warn("rejected websocket token")
			c.Close(InvalidAuthTokenError, "invalid auth token")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		s := session.New(playerID, session.DefaultBuffer, logger)
		log := logger.WithFields(logrus.Fields{"player": playerID, "session": s.ID().String()})
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		rs.Service.Connect(ctx, s)

		go writePump(ctx, c, s, log)
		err = readPump(ctx, c, rs, s, log)

		rs.Service.Disconnect(context.Background(), s)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// readPump decodes inbound frames and dispatches them until the connection closes.
func readPump(ctx context.Context, c *websocket.Conn, rs *RoomServer, s *session.Session, log logrus.FieldLogger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			log.Warnf("ignoring non-text message type %d", typ)
			continue
		}

		env, err := protocol.Decode(msg)
		if err != nil {
			log.WithError(err).Warn("invalid frame")
			s.SendAndFlush(protocol.Error("invalid message format"))
			continue
		}
		if err := rs.handleMessage(ctx, s, env); err != nil {
			log.WithError(err).WithField("type", env.Type).Warn("invalid request")
			s.SendAndFlush(protocol.Error(err.Error()))
		}
	}
}

// writePump forwards the session's flushed messages to the socket and keeps the
// connection alive with pings. It returns when the session is closed.
func writePump(ctx context.Context, c *websocket.Conn, s *session.Session, log logrus.FieldLogger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.Out():
			if !ok {
				c.Close(SessionReplacedError, "session closed")
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				log.WithError(err).WithField("type", msg.Type()).Warn("failed to marshal outgoing message")
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				if !strings.Contains(err.Error(), "context canceled") {
					log.WithError(err).Warn("failed to write to websocket")
				}
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				log.WithError(err).Warn("ping failed, assuming disconnect")
				return
			}
		}
	}
}
