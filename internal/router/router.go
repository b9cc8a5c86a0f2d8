package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bukka/internal/contact"
	"bukka/internal/handler"
	"bukka/internal/middleware"
	"bukka/internal/session"
)

// Sessions is what the router needs from the session registry.
type Sessions interface {
	handler.SessionCreator
	handler.TableRememberer
	middleware.SessionStore
	Len() int
}

type Tokens interface {
	handler.TokenIssuer
	middleware.TokenValidator
}

type Deps struct {
	Sessions    Sessions
	Tokens      Tokens
	Interpreter handler.Interpreter
	Colors      handler.ColorResolver
	Contact     *contact.Handler
	CORSOrigins []string
	Logger      *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": d.Sessions.Len()})
	})

	r.POST("/sessions", handler.NewSessionHandler(d.Sessions, d.Tokens, log).Create)
	if d.Contact != nil {
		r.POST("/contact", d.Contact.Submit)
	}
	r.GET("/menu/images/*key", handler.NewPaletteHandler(d.Colors, log).Color)

	api := r.Group("/")
	api.Use(middleware.AuthMiddleware(d.Tokens, d.Sessions))

	carts := handler.NewCartHandler()
	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", carts.Get)
		cartGroup.DELETE("", carts.Clear)
		cartGroup.POST("/items", carts.AddItem)
		cartGroup.PATCH("/items/:name", carts.UpdateItem)
		cartGroup.DELETE("/items/:name", carts.RemoveItem)
	}

	co := handler.NewCheckoutHandler(d.Sessions)
	checkoutGroup := api.Group("/checkout")
	{
		checkoutGroup.GET("", co.Get)
		checkoutGroup.POST("/start", co.Start)
		checkoutGroup.POST("/preference", co.Preference)
		checkoutGroup.POST("/address", co.Address)
		checkoutGroup.POST("/table", co.Table)
		checkoutGroup.POST("/contact", co.Contact)
		checkoutGroup.POST("/back", co.Back)
		checkoutGroup.POST("/payment-method", co.PaymentMethod)
		checkoutGroup.POST("/acknowledge", co.Acknowledge)
		checkoutGroup.POST("/account", co.Account)
		checkoutGroup.POST("/account/retry", co.RetryAccount)
		checkoutGroup.POST("/verify", co.Verify)
		checkoutGroup.POST("/proceed", co.Proceed)
		checkoutGroup.POST("/order", co.Order)
		checkoutGroup.POST("/dismiss", co.Dismiss)
		checkoutGroup.POST("/cancel", co.Cancel)
	}

	if d.Interpreter != nil {
		assistantGroup := api.Group("/assistant")
		assistantGroup.Use(middleware.RequireMode(session.ModeChat))
		assistantGroup.POST("/interpret", handler.NewAssistantHandler(d.Interpreter, log).Interpret)
	}

	return r
}
