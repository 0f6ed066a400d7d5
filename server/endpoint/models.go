package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ModelsInfo describes the model stack currently loaded by the service.
type ModelsInfo struct {
	ASRModel  string `json:"asr_model"`
	VADModel  string `json:"vad_model"`
	PuncModel string `json:"punc_model,omitempty"`
	SpkModel  string `json:"spk_model,omitempty"`
	Device    string `json:"device"`
	EnableSpk bool   `json:"enable_spk"`
}

// Models returns a handler that reports the loaded model inventory.
func Models(info ModelsInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	}
}
