package agent

import (
	"io"

	"github.com/AliGym19/voiceverse-sub001/notify"
	"github.com/AliGym19/voiceverse-sub001/relay"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Control message types accepted on POST /__agent/message.
const (
	MessageForceActivate = "FORCE_ACTIVATE"
	MessagePreloadMedia  = "PRELOAD_MEDIA"
	MessagePurgeAll      = "PURGE_ALL"
)

type controlMessage struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type connectivityReport struct {
	Online *bool `json:"online"`
}

func (s *Server) handleMessage(c *gin.Context) {
	var msg controlMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		HandleError(c, ErrBadMessage.Wrap(err))
		return
	}

	ctx := c.Request.Context()
	switch msg.Type {
	case MessageForceActivate:
		if err := s.deps.Lifecycle.ForceActivate(ctx); err != nil {
			HandleError(c, err)
			return
		}
		OkJSON(c, gin.H{"state": s.deps.Lifecycle.State().String()})

	case MessagePreloadMedia:
		if msg.URL == "" {
			HandleError(c, ErrBadMessage.WithMsg("PRELOAD_MEDIA requires a url"))
			return
		}
		if err := s.deps.Policy.Preload(ctx, msg.URL); err != nil {
			HandleError(c, err)
			return
		}
		OkJSON(c, gin.H{"preloaded": msg.URL})

	case MessagePurgeAll:
		// Clear offline data: every store and the queue. Idempotent.
		if err := s.deps.Stores.PurgeAll(ctx); err != nil {
			HandleError(c, err)
			return
		}
		if err := s.deps.Queue.Clear(ctx); err != nil {
			HandleError(c, err)
			return
		}
		OkJSON(c, gin.H{"purged": true})

	default:
		HandleError(c, ErrUnknownMessage.WithMsgf("type %q", msg.Type))
	}
}

func (s *Server) handlePush(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		HandleError(c, ErrBadPayload.Wrap(err))
		return
	}

	ctx := c.Request.Context()
	msg := relay.ParsePushPayload(payload)
	s.deps.Dispatcher.DispatchAsync(ctx, relay.NewPushEvent(msg))
	if s.deps.Notifier != nil {
		_ = s.deps.Notifier.Notify(ctx, notify.Notification{
			Title:  msg.Title,
			Body:   msg.Body,
			Target: msg.Target,
		})
	}
	OkJSON(c, gin.H{"delivered": true})
}

func (s *Server) handleConnectivity(c *gin.Context) {
	var report connectivityReport
	if err := c.ShouldBindJSON(&report); err != nil || report.Online == nil {
		HandleError(c, ErrBadPayload.WithMsg("body must be {\"online\": true|false}"))
		return
	}

	ctx := c.Request.Context()
	s.deps.Monitor.SetOnline(ctx, *report.Online)
	s.log.InfoCtx(ctx, "connectivity reported", zap.Bool("online", *report.Online))
	OkJSON(c, gin.H{"online": s.deps.Monitor.Online()})
}

func (s *Server) handleQueueList(c *gin.Context) {
	mutations, err := s.deps.Queue.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	OkJSON(c, gin.H{
		"size":      len(mutations),
		"mutations": mutations,
	})
}

func (s *Server) handleQueueRetry(c *gin.Context) {
	id := c.Param("id")
	if err := s.deps.Coordinator.RetryFailed(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	OkJSON(c, gin.H{"id": id, "status": "pending"})
}
