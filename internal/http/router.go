// README: HTTP router: webhook verification and event intake.
package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"kirana/internal/bot"
	"kirana/internal/http/middleware"
)

type RouterConfig struct {
	VerifyToken string
}

func NewRouter(engine *bot.Engine, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/webhook", func(c *gin.Context) {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		challenge := c.Query("hub.challenge")
		if mode == "subscribe" && token == cfg.VerifyToken {
			c.String(http.StatusOK, challenge)
			return
		}
		c.String(http.StatusForbidden, "Verification failed")
	})

	// The provider retries deliveries it sees fail, so the intake
	// always acknowledges: processing errors are an operations
	// concern, never a transport one.
	r.POST("/webhook", func(c *gin.Context) {
		var event webhookEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			log.Printf("webhook: malformed event: %v", err)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		if event.statusOnly() {
			c.JSON(http.StatusOK, gin.H{"status": "status ignored"})
			return
		}

		name := event.contactName()
		for _, in := range event.messages() {
			if err := engine.Handle(c.Request.Context(), in, name); err != nil {
				log.Printf("webhook: processing failed for %s: %v", in.From, err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
