package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"styleapi/internal/styler"
)

// processImage 转发一次图像风格化请求，出入参均为 base64 data URI。
func processImage(sty *styler.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Image string `json:"image"`
			Style string `json:"style"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "invalid request body",
			})
			return
		}

		result, err := sty.Process(c.Request.Context(), req.Image, req.Style)
		if err != nil {
			_, msg := errorStatus(err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": msg,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"image":  result,
		})
	}
}

// listStyles 返回风格目录，顺序固定。
func listStyles(sty *styler.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sty.Styles())
	}
}
