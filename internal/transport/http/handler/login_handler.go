package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"appusers/internal/service"
	mdw "appusers/internal/transport/http/middleware"
	resp "appusers/internal/transport/http/response"
)

type LoginHandler struct {
	auth *service.AuthService
	log  *zap.Logger
	json gin.HandlerFunc
	rl   gin.HandlerFunc
}

func NewLoginHandler(auth *service.AuthService, log *zap.Logger) *LoginHandler {
	return &LoginHandler{
		auth: auth,
		log:  log,
		json: mdw.RequireJSON(),
		// tight per-IP budget on login to slow down guessing
		rl: mdw.RateLimitPerIP(rate.Limit(1), 5),
	}
}

func (h *LoginHandler) MountAPI(g *gin.RouterGroup) {
	g.POST("/login", h.rl, h.json, h.login)
}

func (h *LoginHandler) login(c *gin.Context) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if in.Username == "" || in.Password == "" {
		resp.Abort(c, http.StatusBadRequest, "username and password are required")
		return
	}
	res, err := h.auth.Login(in.Username, in.Password)
	if err != nil {
		h.log.Info("login failed", zap.String("username", in.Username))
		resp.Error(c, err)
		return
	}
	h.log.Info("login", zap.Int64("userid", res.UserID))
	resp.OK(c, gin.H{
		"jwtToken": res.Token,
		"userHref": userHref(res.UserID),
	})
}
