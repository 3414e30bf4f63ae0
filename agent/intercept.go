package agent

import (
	"io"
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/AliGym19/voiceverse-sub001/queue"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleIntercept is the catch-all data path: classify the request,
// run the matching caching policy, and write the resulting entry back.
// Mutating requests bypass the cache entirely and go through the
// offline queue path.
func (s *Server) handleIntercept(c *gin.Context) {
	if isMutating(c.Request.Method) {
		s.handleMutation(c)
		return
	}

	ctx := c.Request.Context()
	url := c.Request.URL.RequestURI()
	class := s.deps.Classifier.Classify(url)

	entry, err := s.deps.Policy.Serve(ctx, c.Request.Method, url, class)
	if err != nil {
		HandleError(c, err)
		return
	}

	for key, values := range entry.Header {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Writer.WriteHeader(entry.StatusCode)
	_, _ = c.Writer.Write(entry.Body)
}

// handleMutation forwards a state-changing request, queueing it when
// the origin is unreachable. A 4xx/5xx from a reachable server passes
// through untouched and is never queued.
func (s *Server) handleMutation(c *gin.Context) {
	ctx := c.Request.Context()
	url := c.Request.URL.RequestURI()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		HandleError(c, ErrBadPayload.Wrap(err))
		return
	}

	if !s.deps.Monitor.Online() {
		s.enqueue(c, url, body)
		return
	}

	resp, err := s.deps.Fetcher.Do(ctx, c.Request.Method, url, body, c.Request.Header)
	if err != nil {
		if fetch.IsTransportError(err) {
			// The call itself hit a dead network: flip state and queue.
			s.deps.Monitor.SetOnline(ctx, false)
			s.enqueue(c, url, body)
			return
		}
		HandleError(c, err)
		return
	}

	for key, values := range resp.Header {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Writer.WriteHeader(resp.StatusCode)
	_, _ = c.Writer.Write(resp.Body)
}

func (s *Server) enqueue(c *gin.Context, url string, body []byte) {
	ctx := c.Request.Context()
	m, err := s.deps.Queue.Enqueue(ctx, c.Request.Method, url, body)
	if err != nil {
		HandleError(c, err)
		return
	}
	s.log.InfoCtx(ctx, "mutation deferred",
		zap.String("id", m.ID),
		zap.String("url", url))
	AcceptedJSON(c, gin.H{
		"queued": true,
		"id":     m.ID,
		"status": string(queue.StatusPending),
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
