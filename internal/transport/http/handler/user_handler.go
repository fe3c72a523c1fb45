package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"appusers/internal/domain"
	"appusers/internal/service"
	mdw "appusers/internal/transport/http/middleware"
	resp "appusers/internal/transport/http/response"
)

type UserHandler struct {
	users *service.UserService
	log   *zap.Logger

	apiKey gin.HandlerFunc // pre-shared key gate for reads
	bearer gin.HandlerFunc // token identity gate
	admin  gin.HandlerFunc // token identity + admin flag gate
	json   gin.HandlerFunc // 415 on non-JSON bodies
}

func NewUserHandler(users *service.UserService, log *zap.Logger, apiKey, bearer, admin gin.HandlerFunc) *UserHandler {
	return &UserHandler{
		users:  users,
		log:    log,
		apiKey: apiKey,
		bearer: bearer,
		admin:  admin,
		json:   mdw.RequireJSON(),
	}
}

func (h *UserHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/users", h.apiKey, h.list)
	g.POST("/users", h.admin, h.json, h.create)
	g.GET("/users/:userid", h.apiKey, h.retrieve)
	g.PUT("/users/:userid", h.bearer, h.json, h.replace)
	g.PATCH("/users/:userid", h.bearer, h.json, h.update)
	g.DELETE("/users/:userid", h.admin, h.delete)
	g.POST("/users/:userid/set-password", h.bearer, h.json, h.setPassword)
	g.GET("/users/:userid/lock", h.apiKey, h.lockStatus)
	g.POST("/users/:userid/lock/set", h.admin, h.setLock)
	g.POST("/users/:userid/lock/unset", h.admin, h.unsetLock)
	g.GET("/users/:userid/admin", h.apiKey, h.adminStatus)
	g.POST("/users/:userid/admin/grant", h.admin, h.grantAdmin)
	g.POST("/users/:userid/admin/revoke", h.admin, h.revokeAdmin)
}

// pathID parses the numeric id path parameter; a non-numeric id can
// never name a resource, so it reports not found.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		resp.Abort(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

// selfOrAdmin allows the owner of the resource and any admin.
func selfOrAdmin(c *gin.Context, id int64) bool {
	u := mdw.CurrentUser(c)
	if u == nil || (u.UserID != id && !u.Admin) {
		resp.Abort(c, http.StatusUnauthorized, "not allowed")
		return false
	}
	return true
}

func (h *UserHandler) list(c *gin.Context) {
	var f domain.UserFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		resp.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := f.Validate(); err != nil {
		resp.Error(c, err)
		return
	}
	users, err := h.users.List(&f)
	if err != nil {
		resp.Error(c, err)
		return
	}
	fields := f.ReturnFields()
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userWire(&users[i], true, fields))
	}
	resp.OK(c, out)
}

func (h *UserHandler) create(c *gin.Context) {
	var in userIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, "malformed JSON body")
		return
	}
	u, err := in.toNew()
	if err != nil {
		resp.Error(c, err)
		return
	}
	if err := h.users.Create(u); err != nil {
		resp.Error(c, err)
		return
	}
	h.log.Info("user created", zap.Int64("userid", u.UserID), zap.String("username", u.Username))
	resp.Created(c, userHref(u.UserID), userWire(u, false, nil))
}

func (h *UserHandler) retrieve(c *gin.Context) {
	id, ok := pathID(c, "userid")
	if !ok {
		return
	}
	u, err := h.users.Retrieve(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, userWire(u, false, nil))
}

func (h *UserHandler) replace(c *gin.Context) {
	h.applyUpdate(c, true)
}

func (h *UserHandler) update(c *gin.Context) {
	h.applyUpdate(c, false)
}

// applyUpdate serves both PUT (full representation required) and PATCH
// (partial). Owners may update their own record without admin rights.
func (h *UserHandler) applyUpdate(c *gin.Context, full bool) {
	id, ok := pathID(c, "userid")
	if !ok {
		return
	}
	if !selfOrAdmin(c, id) {
		return
	}
	var in userIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, "malformed JSON body")
		return
	}
	var upd domain.UserUpdate
	if full {
		u, err := in.toNew()
		if err != nil {
			resp.Error(c, err)
			return
		}
		upd = domain.UserUpdate{
			Username:  &u.Username,
			Firstname: &u.Firstname,
			Lastname:  &u.Lastname,
			Email:     &u.Email,
			Phone:     &u.Phone,
		}
	} else {
		var err error
		upd, err = in.toUpdate()
		if err != nil {
			resp.Error(c, err)
			return
		}
	}
	u, err := h.users.Update(c.Request.Context(), id, upd)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, userWire(u, false, nil))
}

func (h *UserHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "userid")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), mdw.CurrentUser(c), id); err != nil {
		resp.Error(c, err)
		return
	}
	h.log.Info("user deleted", zap.Int64("userid", id))
	resp.OK(c, gin.H{"message": "OK"})
}

func (h *UserHandler) setPassword(c *gin.Context) {
	id, ok := pathID(c, "userid")
	if !ok {
		return
	}
	if !selfOrAdmin(c, id) {
		return
	}
	var in struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if in.Password == "" {
		resp.Abort(c, http.StatusBadRequest, "password is required")
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), id, in.Password); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"message": "OK"})
}

func (h *UserHandler) lockStatus(c *gin.Context) {
	id, ok := pathID(c, "userid")
	if !ok {
		return
	}
	u, err := h.users.Retrieve(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"locked": u.Locked})
}

func (h *UserHandler) setLock(c *gin.Context) {
	h.lockOp(c, true)
}

func (h *UserHandler) unsetLock(c *gin.Context) {
	h.lockOp(c, false)
}

func (h *UserHandler) lockOp(c *gin.Context, lock bool) {
	id, ok := pathID(c, "userid")
	if !ok {
		return
	}
	var err error
	if lock {
		err = h.users.SetLock(c.Request.Context(), id)
	} else {
		err = h.users.Unlock(c.Request.Context(), id)
	}
	if err != nil {
		resp.Error(c, err)
		return
	}
	h.log.Info("lock changed", zap.Int64("userid", id), zap.Bool("locked", lock))
	resp.OK(c, gin.H{"message": "OK"})
}

func (h *UserHandler) adminStatus(c *gin.Context) {
	id, ok := pathID(c, "userid")
	if !ok {
		return
	}
	u, err := h.users.Retrieve(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"admin": u.Admin})
}

func (h *UserHandler) grantAdmin(c *gin.Context) {
	h.adminOp(c, true)
}

func (h *UserHandler) revokeAdmin(c *gin.Context) {
	h.adminOp(c, false)
}

func (h *UserHandler) adminOp(c *gin.Context, admin bool) {
	id, ok := pathID(c, "userid")
	if !ok {
		return
	}
	if err := h.users.SetAdmin(c.Request.Context(), id, admin); err != nil {
		resp.Error(c, err)
		return
	}
	h.log.Info("admin changed", zap.Int64("userid", id), zap.Bool("admin", admin))
	resp.OK(c, gin.H{"message": "OK"})
}
