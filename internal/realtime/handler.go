package realtime

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v3"

	"github.com/pairline/backend/internal/matchmaking"
	"github.com/pairline/backend/pkg/response"
)

// StatsSource returns a consistent lobby snapshot.
type StatsSource interface {
	Stats(ctx context.Context) (matchmaking.Snapshot, error)
}

// BuildICEServers turns configured URLs into ICE servers. TURN credentials are attached to turn: and turns: URLs only.
func BuildICEServers(urls []string, username, credential string) []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		s := webrtc.ICEServer{URLs: []string{u}}
		if isTURN(u) && username != "" {
			s.Username = username
			s.Credential = credential
			s.CredentialType = webrtc.ICECredentialTypePassword
		}
		servers = append(servers, s)
	}
	return servers
}

func isTURN(url string) bool {
	return strings.HasPrefix(url, "turn:") || strings.HasPrefix(url, "turns:")
}

// ICEServers serves the ICE servers clients should use for their peer connection.
func ICEServers(servers []webrtc.ICEServer) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.OK(c, gin.H{"iceServers": servers})
	}
}

// Stats serves the current lobby snapshot plus the open connection count.
func Stats(src StatsSource, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := src.Stats(c.Request.Context())
		if err != nil {
			response.ServiceUnavailable(c, err.Error())
			return
		}
		response.OK(c, gin.H{
			"lobby":       snap,
			"connections": hub.Count(),
		})
	}
}
