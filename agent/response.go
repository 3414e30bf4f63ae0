package agent

import (
	"errors"
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/errcode"
	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope for every /__agent endpoint.
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// OkJSON writes a success envelope.
func OkJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// AcceptedJSON writes a 202 envelope, used when a mutation was queued
// rather than executed.
func AcceptedJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, Response{
		Code: 0,
		Msg:  "accepted",
		Data: data,
	})
}

// HandleError maps an error to its HTTP shape. LayeredErrors carry
// their own status and code; anything else is a 500 without internal
// detail leakage.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	ctx := c.Request.Context()
	log := logger.GetLogger("agent")

	var layered *errcode.LayeredError
	if errors.As(err, &layered) {
		log.WarnCtx(ctx, "request failed",
			zap.Int("error_code", layered.Code()),
			zap.String("error_msg", layered.Message()))
		c.JSON(layered.HTTPStatus(), Response{
			Code: layered.Code(),
			Msg:  layered.Message(),
			Data: layered.Data(),
		})
		return
	}

	log.ErrorCtx(ctx, "unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{
		Code: http.StatusInternalServerError,
		Msg:  "internal error",
	})
}
