package ws

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"messagely/internal/security"
)

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		if token := strings.TrimSpace(authHeader[len("Bearer "):]); token != "" {
			return token
		}
	}

	// Browsers cannot set Authorization on WebSocket upgrades; accept the
	// token via the "bearer, <token>" subprotocol instead.
	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return ""
}

// MakeHandler returns the /ws endpoint handler. The connection authenticates
// with a bearer token and then only receives events; inbound frames besides
// close/ping are discarded.
func MakeHandler(hub *Hub, tokens *security.TokenService, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin:  makeCheckOrigin(allowedOrigins),
		Subprotocols: []string{"bearer"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractToken(r)
		if tokenStr == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		username, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws upgrade for %q: %v", username, err)
			return
		}

		hub.Register(username, conn)
		defer func() {
			hub.Unregister(username, conn)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
